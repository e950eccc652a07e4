package stats

import "github.com/sreevallabh/duolingo-stats/internal/duolingo"

// Snapshot is everything read from the collaborator for one request.
// Progress is nil when the progress lookup failed.
type Snapshot struct {
	User      duolingo.UserInfo
	Streak    duolingo.StreakInfo
	Languages []string
	Progress  *duolingo.LanguageProgress
}

// Result is the outcome of one fetch: either a live snapshot or the error
// that replaced it. Exactly one of the two is set.
type Result struct {
	snapshot *Snapshot
	err      error
}

// Live wraps a successful fetch.
func Live(s *Snapshot) Result {
	return Result{snapshot: s}
}

// Failed wraps a failed fetch. Any partial data is dropped by the caller.
func Failed(err error) Result {
	return Result{err: err}
}

// OK reports whether the result carries live data.
func (r Result) OK() bool { return r.err == nil && r.snapshot != nil }

// Snapshot returns the live data, or nil for a failed result.
func (r Result) Snapshot() *Snapshot { return r.snapshot }

// Err returns the failure, or nil for a live result.
func (r Result) Err() error { return r.err }
