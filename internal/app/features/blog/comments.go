// internal/app/features/blog/comments.go
package blog

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
)

type commentsResponse struct {
	Items []models.BlogComment `json:"items"`
}

type commentRequest struct {
	Content string `json:"content"`
}

// ServeComments handles GET /blog/{id}/comments, oldest first.
func (h *Handler) ServeComments(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if _, err := h.Blog.GetPost(ctx, id); err != nil {
		httperrors.Write(w, r, h.Log, "blog: get", err)
		return
	}
	list, err := h.Blog.ListComments(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: comments", err)
		return
	}
	respond.OK(w, commentsResponse{Items: list})
}

// HandleAddComment handles POST /blog/{id}/comments. Comments are stored as
// plain text.
func (h *Handler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	var in commentRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "blog comment: decode", err)
		return
	}
	content, err := inputval.Text("content", in.Content, inputval.MaxCommentLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog comment: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	c, err := h.Blog.AddComment(ctx, id, uid, content)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog comment: add", err)
		return
	}
	respond.Created(w, c)
}

// HandleDeleteComment handles DELETE /blog/{id}/comments/{commentID}.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "commentID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog comment: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Blog.DeleteComment(ctx, id, uid, authz.IsAdmin(r)); err != nil {
		httperrors.Write(w, r, h.Log, "blog comment: delete", err)
		return
	}
	respond.NoContent(w)
}
