// internal/app/features/groups/groupdelete.go
package groups

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDeleteGroup handles DELETE /groups/{id}. The group's feed goes with it.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "group delete: id", err)
		return
	}

	ctx, cancel := timeouts.WithLong(r.Context())
	defer cancel()

	if err := h.Groups.Delete(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, "group delete", err)
		return
	}
	h.Log.Info("group deleted", zap.String("group_id", id.Hex()), zap.String("by", uid.Hex()))
	respond.NoContent(w)
}
