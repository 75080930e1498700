// internal/app/features/forums/handler.go
package forums

import (
	"context"
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	forumstore "github.com/dalemusser/hotspot/internal/app/store/forums"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxDescriptionLen = 2000

type Handler struct {
	Forums *forumstore.Store
	Log    *zap.Logger
}

func NewHandler(forums *forumstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Forums: forums, Log: logger}
}

type listResponse struct {
	Items []models.Forum `json:"items"`
}

// ServeList handles GET /forums, ordered by name.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	list, err := h.Forums.List(ctx, int64(paging.Parse(r).Limit))
	if err != nil {
		httperrors.Write(w, r, h.Log, "forums: list", err)
		return
	}
	respond.OK(w, listResponse{Items: list})
}

type forumRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate handles POST /forums. The caller becomes the owner member.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in forumRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "forum: decode", err)
		return
	}
	name, err := inputval.Text("name", in.Name, inputval.MaxNameLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: validate", err)
		return
	}
	desc, err := inputval.OptionalText("description", in.Description, maxDescriptionLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	f, err := h.Forums.Create(ctx, uid, name, desc)
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: create", err)
		return
	}
	h.Log.Info("forum created", zap.String("forum_id", f.ID.Hex()), zap.String("owner", uid.Hex()))
	respond.Created(w, f)
}

// ServeForum handles GET /forums/{id}.
func (h *Handler) ServeForum(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	f, err := h.Forums.GetByID(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: get", err)
		return
	}
	respond.OK(w, f)
}

// HandleDelete handles DELETE /forums/{id}. Owner only; threads and
// memberships go with it.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	if err := h.Forums.Delete(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, "forum: delete", err)
		return
	}
	h.Log.Info("forum deleted", zap.String("forum_id", id.Hex()), zap.String("by", uid.Hex()))
	respond.NoContent(w)
}

// HandleJoin handles POST /forums/{id}/join and answers with the updated forum.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "forum: join", h.Forums.Join)
}

// HandleLeave handles POST /forums/{id}/leave.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.membership(w, r, "forum: leave", h.Forums.Leave)
}

func (h *Handler) membership(w http.ResponseWriter, r *http.Request, op string, change func(context.Context, primitive.ObjectID, primitive.ObjectID) error) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, op, err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := change(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, op, err)
		return
	}
	f, err := h.Forums.GetByID(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, op, err)
		return
	}
	respond.OK(w, f)
}

type membersResponse struct {
	Items []models.ForumMember `json:"items"`
}

// ServeMembers handles GET /forums/{id}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if _, err := h.Forums.GetByID(ctx, id); err != nil {
		httperrors.Write(w, r, h.Log, "forum: get", err)
		return
	}
	list, err := h.Forums.Members(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: members", err)
		return
	}
	respond.OK(w, membersResponse{Items: list})
}
