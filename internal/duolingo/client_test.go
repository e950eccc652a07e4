package duolingo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const userDocJSON = `{
	"id": 123456,
	"username": "owl",
	"fullname": "Duo Owl",
	"rupees": 40,
	"site_streak": 87,
	"daily_goal": 20,
	"streak_extended_today": true,
	"languages": [
		{"language": "es", "language_string": "Spanish", "learning": true, "points": 4100},
		{"language": "fr", "language_string": "French", "learning": false, "points": 0},
		{"language": "de", "language_string": "German", "learning": true, "points": 120}
	],
	"language_data": {
		"es": {
			"streak": 87, "language_string": "Spanish", "level_progress": 150,
			"num_skills_learned": 31, "level_percent": 42, "level_points": 350,
			"points_rank": 2, "next_level": 13, "level_left": 200, "language": "es",
			"points": 4100, "fluency_score": 0.38, "level": 12
		}
	}
}`

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return tok
}

// fakeUpstream serves /login and the legacy user lookup the way Duolingo
// does. The user document is only served for userID.
func fakeUpstream(t *testing.T, login, token, userID, userDoc string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var body struct {
			Login    string `json:"login"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if body.Login != login || body.Password != "hunter2" {
			w.Write([]byte(`{"failure": "invalid_password"}`))
			return
		}
		if token != "" {
			w.Header().Set("jwt", token)
		}
		w.Write([]byte(`{"response": "OK", "username": "owl", "user_id": "123456"}`))
	})
	mux.HandleFunc("/api/1/users/show", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("id") != userID {
			http.Error(w, "no such user", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userDoc))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin_LoadsAccount(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": 123456, "iat": time.Now().Unix()})
	srv := fakeUpstream(t, "owl", token, "123456", userDocJSON)

	acct, err := New(srv.URL, "owl", "hunter2", nil).Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123456", acct.UserID)

	info, err := acct.UserInfo()
	require.NoError(t, err)
	require.NotNil(t, info.Username)
	assert.Equal(t, "owl", *info.Username)
	assert.Nil(t, info.DisplayName, "fullname is not a display name")
	assert.Nil(t, info.Lingots, "rupees are not lingots")
	assert.Nil(t, info.TotalXP)
	assert.Nil(t, info.Gems)

	streak, err := acct.StreakInfo()
	require.NoError(t, err)
	assert.Equal(t, StreakInfo{SiteStreak: 87, DailyGoal: 20, StreakExtendedToday: true}, streak)

	langs, err := acct.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"es", "de"}, langs)

	progress, err := acct.LanguageProgress("es")
	require.NoError(t, err)
	assert.Equal(t, 12, progress.Level)
	assert.Equal(t, 4100, progress.Points)
	assert.InDelta(t, 0.38, progress.FluencyScore, 1e-9)
}

func TestLogin_EmailAddress(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": 123456})
	srv := fakeUpstream(t, "owl@example.com", token, "123456", userDocJSON)

	acct, err := New(srv.URL, "owl@example.com", "hunter2", nil).Login(context.Background())
	require.NoError(t, err)

	info, err := acct.UserInfo()
	require.NoError(t, err)
	assert.Equal(t, "owl", *info.Username)
}

func TestLogin_StringSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "abc-1"})
	srv := fakeUpstream(t, "owl", token, "abc-1", userDocJSON)

	acct, err := New(srv.URL+"/", "owl", "hunter2", nil).Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc-1", acct.UserID)
}

func TestLogin_NoCredentials(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	_, err := New(srv.URL, "", "", nil).Login(context.Background())
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.False(t, called, "no request should reach the upstream")
}

func TestLogin_Failure(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": 1})
	srv := fakeUpstream(t, "owl", token, "1", userDocJSON)

	_, err := New(srv.URL, "owl", "wrong", nil).Login(context.Background())
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestLogin_MissingToken(t *testing.T) {
	srv := fakeUpstream(t, "owl", "", "1", userDocJSON)

	_, err := New(srv.URL, "owl", "hunter2", nil).Login(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Contains(t, err.Error(), "no session token")
}

func TestLogin_MalformedToken(t *testing.T) {
	srv := fakeUpstream(t, "owl", "not-a-jwt", "1", userDocJSON)

	_, err := New(srv.URL, "owl", "hunter2", nil).Login(context.Background())
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestLogin_TokenWithoutSubject(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"iat": time.Now().Unix()})
	srv := fakeUpstream(t, "owl", token, "1", userDocJSON)

	_, err := New(srv.URL, "owl", "hunter2", nil).Login(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoginFailed)
	assert.Contains(t, err.Error(), "no subject")
}

func TestLogin_UserRequestStatusKeepsBodyOutOfError(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": 7})
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("jwt", token)
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/api/1/users/show", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "stack trace at db-7.internal", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	_, err := New(srv.URL, "owl", "hunter2", zap.New(core)).Login(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.NotContains(t, err.Error(), "db-7.internal")

	entries := logs.FilterMessage("duolingo user request rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "stack trace at db-7.internal", entries[0].ContextMap()["body"])
	assert.Equal(t, "7", entries[0].ContextMap()["user_id"])
}

func TestLogin_ContextCancelled(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": 1})
	srv := fakeUpstream(t, "owl", token, "1", userDocJSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, "owl", "hunter2", nil).Login(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAccount_LanguageProgressNotLearning(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": 1})
	srv := fakeUpstream(t, "owl", token, "1", userDocJSON)

	acct, err := New(srv.URL, "owl", "hunter2", nil).Login(context.Background())
	require.NoError(t, err)

	_, err = acct.LanguageProgress("fr")
	assert.ErrorIs(t, err, ErrNotLearning)

	_, err = acct.LanguageProgress("de")
	require.Error(t, err, "learning German but no language_data entry")
	assert.NotErrorIs(t, err, ErrNotLearning)
}

func TestAccount_MissingFields(t *testing.T) {
	acct := &Account{}

	_, err := acct.UserInfo()
	assert.Error(t, err)

	_, err = acct.StreakInfo()
	assert.Error(t, err)

	langs, err := acct.Languages()
	require.NoError(t, err)
	assert.NotNil(t, langs)
	assert.Empty(t, langs)
}

func TestAccount_ExplicitFields(t *testing.T) {
	var doc userDocument
	require.NoError(t, json.Unmarshal([]byte(`{
		"username": "owl", "display_name": "Duo",
		"total_xp": 9000, "lingots": 5, "gems": 12
	}`), &doc))

	info, err := (&Account{doc: doc}).UserInfo()
	require.NoError(t, err)
	assert.Equal(t, "Duo", *info.DisplayName)
	assert.Equal(t, 9000, *info.TotalXP)
	assert.Equal(t, 5, *info.Lingots)
	assert.Equal(t, 12, *info.Gems)
}
