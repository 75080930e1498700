// internal/app/features/blog/handler.go
package blog

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	blogstore "github.com/dalemusser/hotspot/internal/app/store/blog"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Blog *blogstore.Store
	Log  *zap.Logger
}

func NewHandler(blog *blogstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Blog: blog, Log: logger}
}

type postRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CoverImage string `json:"cover_image"`
}

func (in postRequest) validate() (blogstore.PostInput, error) {
	var (
		out blogstore.PostInput
		err error
	)
	if out.Title, err = inputval.Text("title", in.Title, inputval.MaxNameLen); err != nil {
		return out, err
	}
	if out.Content, err = inputval.Text("content", in.Content, inputval.MaxBlogLen); err != nil {
		return out, err
	}
	if out.CoverImage, err = inputval.ImageURL("cover_image", in.CoverImage); err != nil {
		return out, err
	}
	return out, nil
}

func postID(p models.BlogPost) string { return p.ID.Hex() }

// ServeList handles GET /blog. Listing is public and newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	posts, more, err := h.Blog.ListPosts(ctx, paging.Parse(r))
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: list", err)
		return
	}
	respond.OK(w, respond.NewPage(posts, more, postID))
}

type postView struct {
	models.BlogPost
	Liked bool `json:"liked"`
}

// ServePost handles GET /blog/{id}. Signed-in readers also learn whether
// they have liked it.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.Blog.GetPost(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: get", err)
		return
	}
	view := postView{BlogPost: p}
	if uid, ok := authz.UserID(r); ok {
		if view.Liked, err = h.Blog.HasLiked(ctx, id, uid); err != nil {
			httperrors.Write(w, r, h.Log, "blog: has liked", err)
			return
		}
	}
	respond.OK(w, view)
}

// HandleCreate handles POST /blog (admin).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in postRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "blog: decode", err)
		return
	}
	input, err := in.validate()
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.Blog.CreatePost(ctx, uid, authz.IsAdmin(r), input)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: create", err)
		return
	}
	h.Log.Info("blog post published", zap.String("post_id", p.ID.Hex()), zap.String("author", uid.Hex()))
	respond.Created(w, p)
}

// HandleUpdate handles PUT /blog/{id} (admin).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: id", err)
		return
	}
	var in postRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "blog: decode", err)
		return
	}
	input, err := in.validate()
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.Blog.UpdatePost(ctx, id, authz.IsAdmin(r), input)
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: update", err)
		return
	}
	respond.OK(w, p)
}

// HandleDelete handles DELETE /blog/{id} (admin).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "blog: id", err)
		return
	}
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	if err := h.Blog.DeletePost(ctx, id, authz.IsAdmin(r)); err != nil {
		httperrors.Write(w, r, h.Log, "blog: delete", err)
		return
	}
	uid, _ := authz.UserID(r)
	h.Log.Info("blog post deleted", zap.String("post_id", id.Hex()), zap.String("by", uid.Hex()))
	respond.NoContent(w)
}
