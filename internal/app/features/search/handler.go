// internal/app/features/search/handler.go
package search

import (
	"net/http"
	"strconv"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/search"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Handler serves GET /search.
type Handler struct {
	Searcher *search.Searcher
	Cap      int // per-kind cap when the request gives none
	Log      *zap.Logger
}

func NewHandler(s *search.Searcher, capPerKind int, logger *zap.Logger) *Handler {
	return &Handler{Searcher: s, Cap: capPerKind, Log: logger}
}

type response struct {
	Query  string        `json:"query"`
	Status search.Status `json:"status"`
	Hits   []search.Hit  `json:"hits"`
	Failed []search.Kind `json:"failed,omitempty"`
}

// ServeSearch handles GET /search?q=&cap=. Hits come back grouped by kind
// in a fixed order. A kind that fails is listed under "failed" and the
// status is "partial"; when every kind fails the request fails.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	capPerKind := h.Cap
	if s := query.Get(r, "cap"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			capPerKind = n
		}
	}

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	res := h.Searcher.Search(ctx, query.Get(r, "q"), capPerKind)
	if err := res.Err(); err != nil {
		httperrors.Write(w, r, h.Log, "search", err)
		return
	}
	respond.OK(w, response{
		Query:  res.Query,
		Status: res.Status,
		Hits:   res.Hits,
		Failed: res.Failed(),
	})
}
