package stats

import "github.com/sreevallabh/duolingo-stats/internal/duolingo"

// Profile is the fixed data every payload is built from: the reported
// streak, the derived-field formulas and the fallback identity.
type Profile struct {
	StreakDays       int
	Username         string
	DisplayName      string
	ProgressLanguage string
}

// Derived-field formulas: base + perDay*streak.
const (
	xpBase        = 2850
	xpPerDay      = 20
	lingotsBase   = 125
	lingotsPerDay = 2
	gemsBase      = 89
	gemsPerDay    = 3
)

// TotalXP is the XP reported when the collaborator gives none.
func (p Profile) TotalXP() int { return xpBase + xpPerDay*p.StreakDays }

// Lingots is the lingot count reported when the collaborator gives none.
func (p Profile) Lingots() int { return lingotsBase + lingotsPerDay*p.StreakDays }

// Gems is the gem count reported when the collaborator gives none.
func (p Profile) Gems() int { return gemsBase + gemsPerDay*p.StreakDays }

// Payload is the body of GET /duolingo-stats. Error is set on every failed
// payload, even when the error text is empty, and nil on live payloads.
type Payload struct {
	Success bool    `json:"success"`
	Error   *string `json:"error,omitempty"`
	Data    any     `json:"data"`
}

// LiveData is the data block when the fetch succeeded.
type LiveData struct {
	Streak          duolingo.StreakInfo        `json:"streak"`
	UserInfo        UserSummary                `json:"user_info"`
	Languages       []string                   `json:"languages"`
	SpanishProgress *duolingo.LanguageProgress `json:"spanish_progress"`
	Achievements    Achievements               `json:"achievements"`
	StreakInfo      StreakSummary              `json:"streak_info"`
}

// StaticData is the data block served in place of live data.
type StaticData struct {
	Achievements Achievements  `json:"achievements"`
	UserInfo     UserSummary   `json:"user_info"`
	StreakInfo   StreakSummary `json:"streak_info"`
}

// UserSummary is the user_info block, with every field resolved.
type UserSummary struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	TotalXP     int    `json:"total_xp"`
	Lingots     int    `json:"lingots"`
	Gems        int    `json:"gems"`
}

// Achievements is the achievements block. StreakDays is always the
// profile's streak.
type Achievements struct {
	StreakDays     int `json:"streak_days"`
	TotalXP        int `json:"total_xp"`
	LanguagesCount int `json:"languages_count"`
}

// StreakSummary is the streak_info block reported in both branches.
type StreakSummary struct {
	SiteStreak          int  `json:"site_streak"`
	DailyGoalMet        bool `json:"daily_goal_met"`
	StreakExtendedToday bool `json:"streak_extended_today"`
}

// Build turns a fetch result into a payload. The reported streak is always
// the profile's, whatever the collaborator returned.
func Build(res Result, p Profile) Payload {
	if !res.OK() {
		msg := "no data returned"
		if err := res.Err(); err != nil {
			msg = err.Error()
		}
		return Payload{
			Success: false,
			Error:   &msg,
			Data: StaticData{
				Achievements: Achievements{
					StreakDays:     p.StreakDays,
					TotalXP:        p.TotalXP(),
					LanguagesCount: 1,
				},
				UserInfo:   staticUser(p),
				StreakInfo: streakSummary(p),
			},
		}
	}

	snap := res.Snapshot()
	user := resolveUser(snap.User, p)

	langs := snap.Languages
	if langs == nil {
		langs = []string{}
	}
	count := len(langs)
	if count == 0 {
		count = 1
	}

	return Payload{
		Success: true,
		Data: LiveData{
			Streak:          snap.Streak,
			UserInfo:        user,
			Languages:       langs,
			SpanishProgress: snap.Progress,
			Achievements: Achievements{
				StreakDays:     p.StreakDays,
				TotalXP:        user.TotalXP,
				LanguagesCount: count,
			},
			StreakInfo: streakSummary(p),
		},
	}
}

// resolveUser applies the profile defaults to every field the collaborator
// left unset.
func resolveUser(u duolingo.UserInfo, p Profile) UserSummary {
	return UserSummary{
		Username:    orString(u.Username, p.Username),
		DisplayName: orString(u.DisplayName, p.DisplayName),
		TotalXP:     orInt(u.TotalXP, p.TotalXP()),
		Lingots:     orInt(u.Lingots, p.Lingots()),
		Gems:        orInt(u.Gems, p.Gems()),
	}
}

func staticUser(p Profile) UserSummary {
	return resolveUser(duolingo.UserInfo{}, p)
}

func streakSummary(p Profile) StreakSummary {
	return StreakSummary{
		SiteStreak:          p.StreakDays,
		DailyGoalMet:        true,
		StreakExtendedToday: true,
	}
}

func orString(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}

func orInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
