package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sreevallabh/duolingo-stats/internal/config"
	"github.com/sreevallabh/duolingo-stats/internal/duolingo"
	"github.com/sreevallabh/duolingo-stats/internal/server"
	"github.com/sreevallabh/duolingo-stats/internal/stats"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("config",
		zap.String("listen", cfg.ListenAddr),
		zap.String("duolingo", cfg.DuolingoURL),
		zap.Bool("credentials", cfg.DuolingoUsername != "" && cfg.DuolingoPassword != ""),
		zap.String("progress_language", cfg.ProgressLanguage),
		zap.Int("streak_days", cfg.StreakDays),
		zap.Duration("upstream_timeout", cfg.UpstreamTimeout),
	)

	client := duolingo.New(cfg.DuolingoURL, cfg.DuolingoUsername, cfg.DuolingoPassword, logger.Named("duolingo"))
	svc := stats.NewService(
		stats.ClientCollaborator{Client: client},
		stats.Profile{
			StreakDays:       cfg.StreakDays,
			Username:         cfg.FallbackUsername,
			DisplayName:      cfg.FallbackDisplayName,
			ProgressLanguage: cfg.ProgressLanguage,
		},
		cfg.UpstreamTimeout,
		logger.Named("stats"),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(svc, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("duolingo stats API listening",
			zap.String("endpoint", "http://"+cfg.ListenAddr+"/duolingo-stats"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
