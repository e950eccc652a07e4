// Package duolingo is a thin client for the Duolingo web API: it logs in
// with an account credential pair and reads the account's user document.
package duolingo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrNoCredentials = errors.New("duolingo: credentials not configured")
	ErrLoginFailed   = errors.New("duolingo: login failed")
	ErrNotLearning   = errors.New("duolingo: language not being learned")
)

// Client talks to the Duolingo web API on behalf of a single account.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	log      *zap.Logger
}

// New creates a Client for the given base URL and account. The login may be
// a username or an email address.
func New(baseURL, username, password string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		log:      log,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			Timeout: 60 * time.Second,
		},
	}
}

// Account is one logged-in session with the user document loaded. UserID
// is the session token's subject, the ID the document was loaded by.
type Account struct {
	UserID string
	doc    userDocument
}

// Login authenticates and loads the user document. Every call performs a
// fresh login; nothing is cached between calls.
func (c *Client) Login(ctx context.Context) (*Account, error) {
	if c.username == "" || c.password == "" {
		return nil, ErrNoCredentials
	}

	token, err := c.login(ctx)
	if err != nil {
		return nil, err
	}

	userID, err := subjectFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	doc, err := c.fetchUser(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	return &Account{UserID: userID, doc: *doc}, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"login":    c.username,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal login: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/login", bytes.NewReader(body), "")
	if err != nil {
		return "", fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrLoginFailed, resp.StatusCode)
	}

	var attempt map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&attempt); err != nil {
		return "", fmt.Errorf("decode login: %w", err)
	}
	if _, failed := attempt["failure"]; failed {
		return "", ErrLoginFailed
	}

	token := resp.Header.Get("jwt")
	if token == "" {
		return "", fmt.Errorf("%w: no session token", ErrLoginFailed)
	}
	return token, nil
}

// fetchUser loads the legacy user document by numeric ID, so logins by
// email address resolve to the right account.
func (c *Client) fetchUser(ctx context.Context, userID, token string) (*userDocument, error) {
	path := "/api/1/users/show?id=" + url.QueryEscape(userID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, token)
	if err != nil {
		return nil, fmt.Errorf("user request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("duolingo user request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("user_id", userID),
			zap.String("body", strings.TrimSpace(string(respBody))))
		return nil, fmt.Errorf("user request: status %d", resp.StatusCode)
	}

	var doc userDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &doc, nil
}

// doRequest sends an HTTP request to the Duolingo API, attaching the
// session token when one is given.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.client.Do(req)
}

// subjectFromToken reads the user ID from the session token. The token is
// not verified here; Duolingo verifies it on every authenticated call.
func subjectFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}

	switch sub := claims["sub"].(type) {
	case string:
		if sub == "" {
			return "", errors.New("session token has empty subject")
		}
		return sub, nil
	case float64:
		return strconv.FormatInt(int64(sub), 10), nil
	case json.Number:
		return sub.String(), nil
	case nil:
		return "", errors.New("session token has no subject")
	default:
		return "", fmt.Errorf("session token subject has type %T", sub)
	}
}

// UserInfo returns the account summary.
func (a *Account) UserInfo() (UserInfo, error) {
	d := a.doc
	if d.ID == nil && d.Username == nil {
		return UserInfo{}, errors.New("duolingo: user document has no identity")
	}

	return UserInfo{
		Username:    d.Username,
		DisplayName: d.DisplayName,
		TotalXP:     d.TotalXP,
		Lingots:     d.Lingots,
		Gems:        d.Gems,
	}, nil
}

// StreakInfo returns the streak block of the user document.
func (a *Account) StreakInfo() (StreakInfo, error) {
	if a.doc.SiteStreak == nil {
		return StreakInfo{}, errors.New("duolingo: user document has no site_streak")
	}
	return StreakInfo{
		SiteStreak:          *a.doc.SiteStreak,
		DailyGoal:           a.doc.DailyGoal,
		StreakExtendedToday: a.doc.StreakExtendedToday,
	}, nil
}

// Languages returns the abbreviations of the languages the user is learning.
func (a *Account) Languages() ([]string, error) {
	out := make([]string, 0, len(a.doc.Languages))
	for _, l := range a.doc.Languages {
		if l.Learning {
			out = append(out, l.Language)
		}
	}
	return out, nil
}

// LanguageProgress returns progress for the language with the given
// abbreviation.
func (a *Account) LanguageProgress(abbr string) (*LanguageProgress, error) {
	learning, err := a.Languages()
	if err != nil {
		return nil, err
	}
	found := false
	for _, l := range learning {
		if l == abbr {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotLearning, abbr)
	}

	p, ok := a.doc.LanguageData[abbr]
	if !ok {
		return nil, fmt.Errorf("duolingo: no progress data for %s", abbr)
	}
	return &p, nil
}
