// internal/app/features/media/routes.go
package media

import (
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/*", h.Serve)
	r.With(sm.RequireSignedIn).Post("/", h.HandleUpload)
	return r
}
