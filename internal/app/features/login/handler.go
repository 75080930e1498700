// internal/app/features/login/handler.go
package login

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/ratelimit"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves password sign-in and registration.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Handler{Users: users, SessionMgr: sm, Limiter: limiter, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "login: decode", err)
		return
	}

	if ok, reason := h.Limiter.Check(r, in.Email); !ok {
		h.Log.Warn("login rate limited",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("email", in.Email))
		respond.Error(w, http.StatusTooManyRequests, "rate_limited", reason)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		httperrors.Write(w, r, h.Log, "login: authenticate", err)
		return
	}
	h.Limiter.ResetEmail(in.Email)

	if err := h.startSession(w, r, u); err != nil {
		httperrors.Write(w, r, h.Log, "login: session", err)
		return
	}
	h.Log.Info("user signed in", zap.String("user_id", u.ID.Hex()), zap.String("method", models.AuthPassword))
	respond.OK(w, u)
}

// HandleRegister handles POST /auth/register. New accounts are students and
// are signed in straight away. Registrations count against the per-IP limit.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "register: decode", err)
		return
	}
	if ok, reason := h.Limiter.Check(r, ""); !ok {
		h.Log.Warn("registration rate limited", zap.String("ip", ratelimit.ClientIP(r)))
		respond.Error(w, http.StatusTooManyRequests, "rate_limited", reason)
		return
	}
	email, err := inputval.Email(in.Email)
	if err != nil {
		httperrors.Write(w, r, h.Log, "register: validate", err)
		return
	}
	first, err := inputval.Text("first_name", in.FirstName, inputval.MaxNameLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "register: validate", err)
		return
	}
	last, err := inputval.OptionalText("last_name", in.LastName, inputval.MaxNameLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "register: validate", err)
		return
	}
	if err := inputval.Password(in.Password); err != nil {
		httperrors.Write(w, r, h.Log, "register: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.NewUser{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  in.Password,
	})
	if err != nil {
		httperrors.Write(w, r, h.Log, "register: create", err)
		return
	}
	if err := h.startSession(w, r, u); err != nil {
		httperrors.Write(w, r, h.Log, "register: session", err)
		return
	}
	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	respond.Created(w, u)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, u models.User) error {
	return h.SessionMgr.Login(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.DisplayName(),
		Email: u.Email,
		Role:  u.Role,
	})
}
