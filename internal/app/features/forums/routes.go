// internal/app/features/forums/routes.go
package forums

import (
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Get("/threads/{threadID}", h.ServeThread)
	r.Delete("/threads/{threadID}", h.HandleDeleteThread)
	r.Post("/threads/{threadID}/replies", h.HandleReply)

	r.Get("/{id}", h.ServeForum)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/join", h.HandleJoin)
	r.Post("/{id}/leave", h.HandleLeave)
	r.Get("/{id}/members", h.ServeMembers)
	r.Get("/{id}/threads", h.ServeThreads)
	r.Post("/{id}/threads", h.HandleCreateThread)

	return r
}
