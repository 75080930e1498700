// internal/app/features/feed/routes.go
package feed

import (
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves a feed. Every route requires a signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/comments/{commentID}", func(cr chi.Router) {
		cr.Patch("/", h.HandleEditComment)
		cr.Delete("/", h.HandleDeleteComment)
		cr.Post("/like", h.HandleLikeComment)
	})

	r.Route("/{postID}", func(pr chi.Router) {
		pr.Get("/", h.ServePost)
		pr.Delete("/", h.HandleDelete)
		pr.Post("/like", h.HandleLike)
		pr.Get("/comments", h.ServeComments)
		pr.Post("/comments", h.HandleComment)
		pr.Post("/comments/{commentID}/replies", h.HandleReply)
	})
	return r
}
