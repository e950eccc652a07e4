// Package stats turns the account data read from Duolingo into the public
// statistics payload, substituting static data when the fetch fails.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sreevallabh/duolingo-stats/internal/duolingo"
	"go.uber.org/zap"
)

// Account is the read side of a logged-in Duolingo session.
type Account interface {
	UserInfo() (duolingo.UserInfo, error)
	StreakInfo() (duolingo.StreakInfo, error)
	Languages() ([]string, error)
	LanguageProgress(abbr string) (*duolingo.LanguageProgress, error)
}

// Collaborator opens a fresh Duolingo session.
type Collaborator interface {
	Login(ctx context.Context) (Account, error)
}

// ClientCollaborator adapts *duolingo.Client to Collaborator.
type ClientCollaborator struct {
	Client *duolingo.Client
}

// Login opens a session through the wrapped client.
func (c ClientCollaborator) Login(ctx context.Context) (Account, error) {
	acct, err := c.Client.Login(ctx)
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// Service fetches live data for one request at a time and builds payloads.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	collab  Collaborator
	profile Profile
	timeout time.Duration
	log     *zap.Logger
}

// NewService creates a Service. A zero timeout means the request context
// alone bounds collaborator calls.
func NewService(collab Collaborator, profile Profile, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		collab:  collab,
		profile: profile,
		timeout: timeout,
		log:     log,
	}
}

// Fetch logs in and reads the account. Progress for the profile's language
// is best-effort; every other failure makes the whole result Failed.
func (s *Service) Fetch(ctx context.Context) Result {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	snap, err := s.fetch(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("duolingo did not respond within %s: %w", s.timeout, err)
		}
		return Failed(err)
	}
	return Live(snap)
}

func (s *Service) fetch(ctx context.Context) (*Snapshot, error) {
	acct, err := s.collab.Login(ctx)
	if err != nil {
		return nil, err
	}

	user, err := acct.UserInfo()
	if err != nil {
		return nil, err
	}
	streak, err := acct.StreakInfo()
	if err != nil {
		return nil, err
	}
	langs, err := acct.Languages()
	if err != nil {
		return nil, err
	}
	if langs == nil {
		langs = []string{}
	}

	progress, err := acct.LanguageProgress(s.profile.ProgressLanguage)
	if err != nil {
		s.log.Debug("language progress unavailable",
			zap.String("language", s.profile.ProgressLanguage),
			zap.Error(err))
		progress = nil
	}

	return &Snapshot{
		User:      user,
		Streak:    streak,
		Languages: langs,
		Progress:  progress,
	}, nil
}

// Stats runs a fetch and builds the payload for it.
func (s *Service) Stats(ctx context.Context) Payload {
	res := s.Fetch(ctx)
	if !res.OK() {
		s.log.Warn("serving static stats", zap.Error(res.Err()))
	}
	return Build(res, s.profile)
}
