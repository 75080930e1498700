// internal/app/features/groups/groupedit.go
package groups

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
)

// HandleEditGroup handles PATCH /groups/{id}. Group admins only; an empty
// name or privacy keeps the current value.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "group edit: id", err)
		return
	}
	var in groupRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "group edit: decode", err)
		return
	}
	in, err = in.validate(false)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group edit: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Groups.UpdateInfo(ctx, id, uid, in.Name, in.Description, in.Privacy)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group edit: update", err)
		return
	}
	respond.OK(w, g)
}
