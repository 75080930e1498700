// internal/app/features/users/handler.go
package users

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.uber.org/zap"
)

const maxBioLen = 500

type Handler struct {
	Users *userstore.Store
	Files storage.Store
	Log   *zap.Logger
}

func NewHandler(users *userstore.Store, files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Files: files, Log: logger}
}

// ServeUser handles GET /users/{id}.
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "user: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "user: get", err)
		return
	}
	respond.OK(w, u)
}

type profileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
	Major     string `json:"major"`
	Year      string `json:"year"`
}

func (in profileRequest) validate() (models.ProfileFields, error) {
	var (
		out models.ProfileFields
		err error
	)
	if out.FirstName, err = inputval.OptionalText("first_name", in.FirstName, inputval.MaxNameLen); err != nil {
		return out, err
	}
	if out.LastName, err = inputval.OptionalText("last_name", in.LastName, inputval.MaxNameLen); err != nil {
		return out, err
	}
	if out.Bio, err = inputval.OptionalText("bio", in.Bio, maxBioLen); err != nil {
		return out, err
	}
	if out.Major, err = inputval.OptionalText("major", in.Major, inputval.MaxNameLen); err != nil {
		return out, err
	}
	if out.Year, err = inputval.OptionalText("year", in.Year, 20); err != nil {
		return out, err
	}
	if out.Avatar, err = inputval.ImageURL("avatar", in.Avatar); err != nil {
		return out, err
	}
	return out, nil
}

// HandleUpdateMe handles PATCH /users/me. Empty fields are left unchanged.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in profileRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "profile: decode", err)
		return
	}
	patch, err := in.validate()
	if err != nil {
		httperrors.Write(w, r, h.Log, "profile: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()
	u, err := h.Users.UpdateProfile(ctx, uid, patch)
	if err != nil {
		httperrors.Write(w, r, h.Log, "profile: update", err)
		return
	}
	respond.OK(w, u)
}

// HandleAvatar handles POST /users/me/avatar (multipart field "image").
// The previous avatar is removed when it was one of ours.
func (h *Handler) HandleAvatar(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	before, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "avatar: load user", err)
		return
	}

	name, err := storage.SaveImage(ctx, h.Files, w, r, "image", "avatars")
	if err != nil {
		httperrors.Write(w, r, h.Log, "avatar: save", err)
		return
	}
	u, err := h.Users.SetAvatar(ctx, uid, storage.URL(name))
	if err != nil {
		_ = h.Files.Delete(ctx, name)
		httperrors.Write(w, r, h.Log, "avatar: set", err)
		return
	}

	if old, own := storage.NameFromURL(before.Avatar); own && old != name {
		if err := h.Files.Delete(ctx, old); err != nil {
			h.Log.Warn("avatar: delete previous", zap.String("name", old), zap.Error(err))
		}
	}
	respond.OK(w, u)
}

type roleRequest struct {
	Role string `json:"role"`
}

// HandleSetRole handles PUT /users/{id}/role (admins only).
func (h *Handler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "role: id", err)
		return
	}
	var in roleRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "role: decode", err)
		return
	}
	role, err := inputval.OneOf("role", in.Role, models.RoleStudent, models.RoleAdmin)
	if err != nil {
		httperrors.Write(w, r, h.Log, "role: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()
	if err := h.Users.SetRole(ctx, id, role); err != nil {
		httperrors.Write(w, r, h.Log, "role: set", err)
		return
	}
	actor, _ := authz.UserID(r)
	h.Log.Info("user role changed",
		zap.String("user_id", id.Hex()),
		zap.String("role", role),
		zap.String("by", actor.Hex()))
	respond.NoContent(w)
}
