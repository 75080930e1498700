// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Patch("/me", h.HandleUpdateMe)
		pr.Post("/me/avatar", h.HandleAvatar)
		pr.Get("/{id}", h.ServeUser)
	})
	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(models.RoleAdmin))
		ar.Put("/{id}/role", h.HandleSetRole)
	})
	return r
}
