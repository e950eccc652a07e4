package duolingo

// UserInfo is the account summary read from the user document. Pointer
// fields are optional: Duolingo omits them for some accounts and callers
// decide their own defaults.
type UserInfo struct {
	Username    *string
	DisplayName *string
	TotalXP     *int
	Lingots     *int
	Gems        *int
}

// StreakInfo mirrors the streak block of the user document.
type StreakInfo struct {
	SiteStreak          int  `json:"site_streak"`
	DailyGoal           int  `json:"daily_goal"`
	StreakExtendedToday bool `json:"streak_extended_today"`
}

// LanguageProgress is the per-language progress entry from language_data.
type LanguageProgress struct {
	Streak           int     `json:"streak"`
	LanguageString   string  `json:"language_string"`
	LevelProgress    int     `json:"level_progress"`
	NumSkillsLearned int     `json:"num_skills_learned"`
	LevelPercent     int     `json:"level_percent"`
	LevelPoints      int     `json:"level_points"`
	PointsRank       int     `json:"points_rank"`
	NextLevel        int     `json:"next_level"`
	LevelLeft        int     `json:"level_left"`
	Language         string  `json:"language"`
	Points           int     `json:"points"`
	FluencyScore     float64 `json:"fluency_score"`
	Level            int     `json:"level"`
}

// userDocument is the subset of the legacy user document the client reads.
type userDocument struct {
	ID          *int64  `json:"id"`
	Username    *string `json:"username"`
	DisplayName *string `json:"display_name"`
	TotalXP     *int    `json:"total_xp"`
	Lingots     *int    `json:"lingots"`
	Gems        *int    `json:"gems"`

	SiteStreak          *int `json:"site_streak"`
	DailyGoal           int  `json:"daily_goal"`
	StreakExtendedToday bool `json:"streak_extended_today"`

	Languages    []languageEntry             `json:"languages"`
	LanguageData map[string]LanguageProgress `json:"language_data"`
}

type languageEntry struct {
	Language       string `json:"language"`
	LanguageString string `json:"language_string"`
	Learning       bool   `json:"learning"`
	Points         int    `json:"points"`
}
