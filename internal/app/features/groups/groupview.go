// internal/app/features/groups/groupview.go
package groups

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
)

// ServeGroup handles GET /groups/{id}.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "group: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group: get", err)
		return
	}
	uid, _ := authz.UserID(r)
	respond.OK(w, redact(g, uid, authz.IsAdmin(r)))
}
