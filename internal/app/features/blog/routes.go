// internal/app/features/blog/routes.go
package blog

import (
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public reads; visitors may also like.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServePost)
	r.Get("/{id}/comments", h.ServeComments)
	r.Post("/{id}/like", h.HandleLike)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Delete("/{id}/like", h.HandleUnlike)
		pr.Post("/{id}/comments", h.HandleAddComment)
		pr.Delete("/{id}/comments/{commentID}", h.HandleDeleteComment)
	})

	r.Group(func(ar chi.Router) {
		ar.Use(sm.RequireRole(models.RoleAdmin))
		ar.Post("/", h.HandleCreate)
		ar.Put("/{id}", h.HandleUpdate)
		ar.Delete("/{id}", h.HandleDelete)
	})

	return r
}
