package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	ListenAddr string // HTTP listen address
	LogLevel   string // zap level name: debug, info, warn, error

	DuolingoURL      string        // Duolingo web API base URL
	DuolingoUsername string        // account login
	DuolingoPassword string        // account password
	ProgressLanguage string        // language abbreviation for the progress lookup
	UpstreamTimeout  time.Duration // budget for one round of collaborator calls

	StreakDays          int    // streak reported in every response
	FallbackUsername    string // username when the collaborator omits it
	FallbackDisplayName string // display name when the collaborator omits it
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() *Config {
	return &Config{
		ListenAddr: envOrDefault("LISTEN_ADDR", "localhost:8080"),
		LogLevel:   envOrDefault("LOG_LEVEL", "info"),

		DuolingoURL:      envOrDefault("DUOLINGO_URL", "https://www.duolingo.com"),
		DuolingoUsername: os.Getenv("DUOLINGO_USERNAME"),
		DuolingoPassword: os.Getenv("DUOLINGO_PASSWORD"),
		ProgressLanguage: envOrDefault("DUOLINGO_PROGRESS_LANGUAGE", "es"),
		UpstreamTimeout:  envOrDefaultDuration("UPSTREAM_TIMEOUT", 15*time.Second),

		StreakDays:          envOrDefaultInt("STREAK_DAYS", 111),
		FallbackUsername:    envOrDefault("FALLBACK_USERNAME", "srivallabh"),
		FallbackDisplayName: envOrDefault("FALLBACK_DISPLAY_NAME", "Sreevallabh"),
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
