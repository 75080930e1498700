// internal/app/features/connections/handler.go
package connections

import (
	"context"
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	connectionstore "github.com/dalemusser/hotspot/internal/app/store/connections"
	userstore "github.com/dalemusser/hotspot/internal/app/store/users"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Connections *connectionstore.Store
	Users       *userstore.Store
	Log         *zap.Logger
}

func NewHandler(conns *connectionstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Connections: conns, Users: users, Log: logger}
}

type connectionsResponse struct {
	Items []models.Connection `json:"items"`
}

type requestsResponse struct {
	Items []models.ConnectionRequest `json:"items"`
}

// ServeConnections handles GET /connections.
func (h *Handler) ServeConnections(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	list, err := h.Connections.ListConnections(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "connections: list", err)
		return
	}
	respond.OK(w, connectionsResponse{Items: list})
}

// ServePending handles GET /connections/pending: requests awaiting the
// caller's answer.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	list, err := h.Connections.ListPending(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "connections: pending", err)
		return
	}
	respond.OK(w, requestsResponse{Items: list})
}

type sendRequest struct {
	To string `json:"to"`
}

// HandleSendRequest handles POST /connections/requests.
func (h *Handler) HandleSendRequest(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in sendRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "connection request: decode", err)
		return
	}
	to, err := inputval.ObjectID("to", in.To)
	if err != nil {
		httperrors.Write(w, r, h.Log, "connection request: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if _, err := h.Users.GetByID(ctx, to); err != nil {
		httperrors.Write(w, r, h.Log, "connection request: recipient", err)
		return
	}
	req, err := h.Connections.SendRequest(ctx, uid, to)
	if err != nil {
		httperrors.Write(w, r, h.Log, "connection request: send", err)
		return
	}
	respond.Created(w, req)
}

// HandleAccept handles POST /connections/requests/{id}/accept. Only the
// recipient of a pending request may answer it.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "connection request: accept", h.Connections.Accept)
}

// HandleReject handles POST /connections/requests/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, "connection request: reject", h.Connections.Reject)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, id primitive.ObjectID, by models.Actor) (models.ConnectionRequest, error)) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, op, err)
		return
	}
	actor, _ := authz.Actor(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	req, err := fn(ctx, id, actor)
	if err != nil {
		httperrors.Write(w, r, h.Log, op, err)
		return
	}
	respond.OK(w, req)
}

type statusResponse struct {
	Status string `json:"status"`
}

// ServeStatus handles GET /connections/status/{userID}: none, pending,
// accepted or rejected as seen from the caller.
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	other, err := inputval.PathID(r, "userID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "connection status: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	st, err := h.Connections.Status(ctx, uid, other)
	if err != nil {
		httperrors.Write(w, r, h.Log, "connection status", err)
		return
	}
	respond.OK(w, statusResponse{Status: st})
}

// HandleRemove handles DELETE /connections/{userID}; both halves go.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	other, err := inputval.PathID(r, "userID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "connection remove: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Connections.Remove(ctx, uid, other); err != nil {
		httperrors.Write(w, r, h.Log, "connection remove", err)
		return
	}
	respond.NoContent(w)
}
