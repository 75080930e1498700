package userinfo_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/features/userinfo"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/testutil"
	"go.uber.org/zap"
)

func TestServeMe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Grace Hopper", "grace@campus.edu")

	sm, _ := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	router := userinfo.Routes(userinfo.NewHandler(userstore.New(db), zap.NewNop()), sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), testutil.UserFor(u.ID, "student")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != u.ID.Hex() || got.Email != "grace@campus.edu" {
		t.Errorf("got %+v", got)
	}
}

func TestServeMe_Visitor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	sm, _ := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	router := userinfo.Routes(userinfo.NewHandler(userstore.New(db), zap.NewNop()), sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}
