package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testUserID returns a valid ObjectID hex string for tests.
func testUserID() string {
	return primitive.NewObjectID().Hex()
}

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, name, id, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false with no user")
	}
	if role != "visitor" || name != "" || id != primitive.NilObjectID {
		t.Errorf("unexpected visitor values: %q %q %v", role, name, id)
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.SessionUser{
		ID:   "not-an-object-id",
		Role: "admin",
	})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected ok=false for malformed id")
	}
	if authz.IsAdmin(req) {
		t.Error("malformed session must not be treated as admin")
	}
}

func TestUserCtx_LowercasesRole(t *testing.T) {
	hex := testUserID()
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.SessionUser{
		ID:   hex,
		Name: "Grace",
		Role: "Admin",
	})

	role, name, id, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "admin" {
		t.Errorf("role = %q, want admin", role)
	}
	if name != "Grace" || id.Hex() != hex {
		t.Errorf("unexpected name/id: %q %s", name, id.Hex())
	}
	if !authz.IsAdmin(req) {
		t.Error("expected IsAdmin true")
	}
}

func TestHasAnyRole(t *testing.T) {
	req := auth.WithTestUser(httptest.NewRequest("GET", "/test", nil), &auth.SessionUser{
		ID:   testUserID(),
		Role: "student",
	})

	if !authz.HasAnyRole(req, "admin", " Student ") {
		t.Error("expected student to match")
	}
	if authz.HasAnyRole(req, "admin") {
		t.Error("student should not match admin")
	}
}
