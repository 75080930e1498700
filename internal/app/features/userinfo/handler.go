// internal/app/features/userinfo/handler.go
package userinfo

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// ServeMe handles GET /auth/me and returns the signed-in user's profile.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized", "sign in first")
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "me: load user", err)
		return
	}
	respond.OK(w, u)
}
