// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/hotspot/internal/app/features/feed"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/", h.ServeGroupsList)
		pr.Post("/", h.HandleCreateGroup)

		pr.Get("/{id}", h.ServeGroup)
		pr.Patch("/{id}", h.HandleEditGroup)
		pr.Delete("/{id}", h.HandleDeleteGroup)

		// MEMBERSHIP
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/leave", h.HandleLeave)
		pr.Post("/{id}/requests", h.HandleRequestJoin)
		pr.Post("/{id}/requests/{userID}/accept", h.HandleAcceptRequest)
		pr.Post("/{id}/requests/{userID}/reject", h.HandleRejectRequest)

		// ROLES (owner only)
		pr.Put("/{id}/admins/{userID}", h.HandlePromote)
		pr.Delete("/{id}/admins/{userID}", h.HandleDemote)
	})

	r.Mount("/{id}/feed", feed.Routes(h.Feed, sm))
	return r
}
