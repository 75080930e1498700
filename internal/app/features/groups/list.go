// internal/app/features/groups/list.go
package groups

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
)

type listResponse struct {
	Items []models.Group `json:"items"`
}

// ServeGroupsList handles GET /groups. ?mine=1 lists only the caller's
// groups. Groups are ordered by most recent activity.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	limit := int64(paging.Parse(r).Limit)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	var (
		list []models.Group
		err  error
	)
	if query.Get(r, "mine") != "" {
		list, err = h.Groups.ListForMember(ctx, uid, limit)
	} else {
		list, err = h.Groups.List(ctx, limit)
	}
	if err != nil {
		httperrors.Write(w, r, h.Log, "groups: list", err)
		return
	}

	admin := authz.IsAdmin(r)
	for i := range list {
		list[i] = redact(list[i], uid, admin)
	}
	respond.OK(w, listResponse{Items: list})
}
