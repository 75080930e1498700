// internal/app/features/groups/managemembers.go
package groups

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleJoin handles POST /groups/{id}/join (public groups).
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "group join: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Groups.Join(ctx, id, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group join", err)
		return
	}
	respond.OK(w, g)
}

// HandleLeave handles POST /groups/{id}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "group leave: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	g, err := h.Groups.Leave(ctx, id, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group leave", err)
		return
	}
	respond.OK(w, redact(g, uid, authz.IsAdmin(r)))
}

// HandleRequestJoin handles POST /groups/{id}/requests (private groups).
func (h *Handler) HandleRequestJoin(w http.ResponseWriter, r *http.Request) {
	actor, _ := authz.Actor(r)
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "group request: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Groups.RequestJoin(ctx, id, actor); err != nil {
		httperrors.Write(w, r, h.Log, "group request", err)
		return
	}
	respond.JSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
}

type resolveResponse struct {
	Changed bool `json:"changed"`
}

// HandleAcceptRequest handles POST /groups/{id}/requests/{userID}/accept.
// Accepting a request that is no longer pending answers changed=false.
func (h *Handler) HandleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// HandleRejectRequest handles POST /groups/{id}/requests/{userID}/reject.
func (h *Handler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, accept bool) {
	actor, _ := authz.Actor(r)
	id, uid, err := groupAndUser(r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group resolve: ids", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	var changed bool
	if accept {
		changed, err = h.Groups.AcceptRequest(ctx, id, actor, uid)
	} else {
		changed, err = h.Groups.RejectRequest(ctx, id, actor, uid)
	}
	if err != nil {
		httperrors.Write(w, r, h.Log, "group resolve", err)
		return
	}
	respond.OK(w, resolveResponse{Changed: changed})
}

// HandlePromote handles PUT /groups/{id}/admins/{userID}.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, true)
}

// HandleDemote handles DELETE /groups/{id}/admins/{userID}.
func (h *Handler) HandleDemote(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, false)
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request, admin bool) {
	actor, _ := authz.Actor(r)
	id, uid, err := groupAndUser(r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "group role: ids", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Groups.UpdateRole(ctx, id, actor, uid, admin); err != nil {
		httperrors.Write(w, r, h.Log, "group role", err)
		return
	}
	respond.NoContent(w)
}

func groupAndUser(r *http.Request) (primitive.ObjectID, primitive.ObjectID, error) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		return id, primitive.NilObjectID, err
	}
	uid, err := inputval.PathID(r, "userID")
	return id, uid, err
}
