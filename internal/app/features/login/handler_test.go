package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/features/login"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/app/system/ratelimit"
	"github.com/dalemusser/hotspot/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, limiter *ratelimit.LoginLimiter) (*login.Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	users := userstore.New(db)
	return login.NewHandler(users, sm, limiter, zap.NewNop()), users
}

func serve(h *login.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	login.Routes(h).ServeHTTP(rec, r)
	return rec
}

func TestRegisterThenLogin(t *testing.T) {
	h, _ := newHandler(t, nil)

	rec := serve(h, testutil.NewJSONRequest(http.MethodPost, "/register", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@campus.edu",
		"password":   "difference-engine",
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("register should set a session cookie")
	}
	var u map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, leaked := u["password_hash"]; leaked {
		t.Error("password hash must not be serialized")
	}
	if u["role"] != "student" {
		t.Errorf("role: got %v", u["role"])
	}

	rec = serve(h, testutil.NewJSONRequest(http.MethodPost, "/login", map[string]string{
		"email":    "ADA@campus.edu",
		"password": "difference-engine",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("login should set a session cookie")
	}
}

func TestRegister_Validation(t *testing.T) {
	h, _ := newHandler(t, nil)

	cases := []map[string]string{
		{"first_name": "A", "email": "not-an-email", "password": "longenough"},
		{"first_name": "", "email": "a@campus.edu", "password": "longenough"},
		{"first_name": "A", "email": "a@campus.edu", "password": "short"},
	}
	for _, body := range cases {
		rec := serve(h, testutil.NewJSONRequest(http.MethodPost, "/register", body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%v: got %d, want 400", body, rec.Code)
		}
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _ := newHandler(t, nil)
	body := map[string]string{"first_name": "A", "email": "dup@campus.edu", "password": "longenough"}

	if rec := serve(h, testutil.NewJSONRequest(http.MethodPost, "/register", body)); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	if rec := serve(h, testutil.NewJSONRequest(http.MethodPost, "/register", body)); rec.Code != http.StatusConflict {
		t.Errorf("second register: got %d, want 409", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h, users := newHandler(t, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := users.Create(ctx, userstore.NewUser{FirstName: "B", Email: "b@campus.edu", Password: "correct-horse"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rec := serve(h, testutil.NewJSONRequest(http.MethodPost, "/login", map[string]string{
		"email": "b@campus.edu", "password": "battery-staple",
	}))
	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d, want 403", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestLogin_RateLimited(t *testing.T) {
	h, _ := newHandler(t, ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute))
	body := map[string]string{"email": "c@campus.edu", "password": "whatever1"}

	for i := 0; i < 2; i++ {
		serve(h, testutil.NewJSONRequest(http.MethodPost, "/login", body))
	}
	rec := serve(h, testutil.NewJSONRequest(http.MethodPost, "/login", body))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429", rec.Code)
	}
}

func TestRegister_RateLimitedPerIP(t *testing.T) {
	h, _ := newHandler(t, ratelimit.NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute))

	first := serve(h, testutil.NewJSONRequest(http.MethodPost, "/register", map[string]string{
		"first_name": "Ada", "email": "ada@campus.edu", "password": "longenough",
	}))
	if first.Code != http.StatusCreated {
		t.Fatalf("first register: got %d", first.Code)
	}
	rec := serve(h, testutil.NewJSONRequest(http.MethodPost, "/register", map[string]string{
		"first_name": "Bob", "email": "bob@campus.edu", "password": "longenough",
	}))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("got %d, want 429", rec.Code)
	}
}
