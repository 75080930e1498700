package authgoogle_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/features/authgoogle"
	"github.com/dalemusser/hotspot/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/hotspot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type env struct {
	h      *authgoogle.Handler
	users  *userstore.Store
	states *oauthstate.Store
}

func newEnv(t *testing.T, clientID string) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	users := userstore.New(db)
	states := oauthstate.New(db)
	h := authgoogle.NewHandler(users, sm, states, clientID, "secret", "http://localhost:8080", zap.NewNop())
	return env{h: h, users: users, states: states}
}

// fakeGoogle serves the token and userinfo endpoints.
func fakeGoogle(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "g-123",
			"email":          "lin@campus.edu",
			"verified_email": verified,
			"given_name":     "Lin",
			"family_name":    "Chen",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestServeLogin_NotConfigured(t *testing.T) {
	e := newEnv(t, "")
	rec := httptest.NewRecorder()
	authgoogle.Routes(e.h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServeLogin_RedirectsWithState(t *testing.T) {
	e := newEnv(t, "client")
	rec := httptest.NewRecorder()
	authgoogle.Routes(e.h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?return=/groups", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", loc.Host)

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	ret, valid, err := e.states.Validate(ctx, state)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.Equal(t, "/groups", ret)
}

func TestServeCallback_InvalidState(t *testing.T) {
	e := newEnv(t, "client")
	rec := httptest.NewRecorder()
	authgoogle.Routes(e.h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=nope&code=x", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?auth_error=invalid_state", rec.Header().Get("Location"))
}

func TestServeCallback_CreatesUserAndSession(t *testing.T) {
	e := newEnv(t, "client")
	srv := fakeGoogle(t, true)
	e.h.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	e.h.UserInfoURL = srv.URL + "/userinfo"

	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, e.states.Save(ctx, "s1", "/forums", time.Now().Add(time.Minute)))

	rec := httptest.NewRecorder()
	authgoogle.Routes(e.h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s1&code=abc", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, "/forums", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Result().Cookies())

	u, err := e.users.GetByEmail(ctx, "lin@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, models.AuthGoogle, u.AuthMethod)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.Empty(t, u.PasswordHash)
}

func TestServeCallback_UnverifiedEmail(t *testing.T) {
	e := newEnv(t, "client")
	srv := fakeGoogle(t, false)
	e.h.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	e.h.UserInfoURL = srv.URL + "/userinfo"

	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, e.states.Save(ctx, "s2", "", time.Now().Add(time.Minute)))

	rec := httptest.NewRecorder()
	authgoogle.Routes(e.h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s2&code=abc", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "unverified_email"))
	_, err := e.users.GetByEmail(ctx, "lin@campus.edu")
	assert.ErrorIs(t, err, userstore.ErrNotFound)
}
