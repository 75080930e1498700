// internal/app/features/media/handler.go
package media

import (
	"io"
	"mime"
	"net/http"
	"path"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler streams uploaded files back to clients.
type Handler struct {
	Files storage.Store
	Log   *zap.Logger
}

func NewHandler(files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Files: files, Log: logger}
}

// Serve handles GET /media/*.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	rc, err := h.Files.Open(ctx, name)
	if err != nil {
		httperrors.Write(w, r, h.Log, "media: open", err)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		h.Log.Debug("media: copy", zap.String("name", name), zap.Error(err))
	}
}

type uploadResponse struct {
	URL string `json:"url"`
}

// HandleUpload handles POST /media (multipart field "image") and returns the
// URL to reference from a post, product or profile.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	name, err := storage.SaveImage(ctx, h.Files, w, r, "image", "images")
	if err != nil {
		httperrors.Write(w, r, h.Log, "media: upload", err)
		return
	}
	respond.Created(w, uploadResponse{URL: storage.URL(name)})
}
