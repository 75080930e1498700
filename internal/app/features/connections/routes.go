// internal/app/features/connections/routes.go
package connections

import (
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeConnections)
	r.Get("/pending", h.ServePending)
	r.Get("/status/{userID}", h.ServeStatus)
	r.Post("/requests", h.HandleSendRequest)
	r.Post("/requests/{id}/accept", h.HandleAccept)
	r.Post("/requests/{id}/reject", h.HandleReject)
	r.Delete("/{userID}", h.HandleRemove)
	return r
}
