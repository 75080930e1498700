// internal/app/features/blog/likes.go
package blog

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
)

type likeResponse struct {
	Likes int  `json:"likes"`
	Liked bool `json:"liked"`
}

// HandleLike handles POST /blog/{id}/like. A signed-in reader's like is
// recorded once; a visitor's like only bumps the counter.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	uid, signedIn := authz.UserID(r)
	if !signedIn {
		n, err := h.Blog.IncrementLikes(ctx, id)
		if err != nil {
			httperrors.Write(w, r, h.Log, "blog: like", err)
			return
		}
		respond.OK(w, likeResponse{Likes: n})
		return
	}

	if err := h.Blog.Like(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, "blog: like", err)
		return
	}
	p, err := h.Blog.GetPost(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: get", err)
		return
	}
	respond.OK(w, likeResponse{Likes: p.Likes, Liked: true})
}

// HandleUnlike handles DELETE /blog/{id}/like.
func (h *Handler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Blog.Unlike(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, "blog: unlike", err)
		return
	}
	p, err := h.Blog.GetPost(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: get", err)
		return
	}
	respond.OK(w, likeResponse{Likes: p.Likes})
}
