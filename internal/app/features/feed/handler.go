// internal/app/features/feed/handler.go
package feed

import (
	"context"
	"net/http"

	"github.com/256dpi/lungo"
	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	feedstore "github.com/dalemusser/hotspot/internal/app/store/feed"
	groupstore "github.com/dalemusser/hotspot/internal/app/store/groups"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves one feed: the home feed under /posts, or a group feed under
// /groups/{id}/feed. Group feeds of private groups are readable by members
// only.
type Handler struct {
	Feed   *feedstore.Store
	Groups *groupstore.Store // nil on the home feed
	Log    *zap.Logger
}

// NewHomeHandler serves the home feed.
func NewHomeHandler(db lungo.IDatabase, logger *zap.Logger) *Handler {
	return &Handler{Feed: feedstore.NewHome(db), Log: logger}
}

// NewGroupHandler serves group feeds. Mount it below a route that defines
// the {id} parameter.
func NewGroupHandler(db lungo.IDatabase, logger *zap.Logger) *Handler {
	return &Handler{Feed: feedstore.NewGroup(db), Groups: groupstore.New(db), Log: logger}
}

// scope resolves the group of the request (NilObjectID on the home feed) and
// checks the caller may read it.
func (h *Handler) scope(ctx context.Context, r *http.Request) (primitive.ObjectID, error) {
	if h.Groups == nil {
		return primitive.NilObjectID, nil
	}
	gid, err := inputval.PathID(r, "id")
	if err != nil {
		return primitive.NilObjectID, err
	}
	g, err := h.Groups.GetByID(ctx, gid)
	if err != nil {
		return primitive.NilObjectID, err
	}
	uid, _ := authz.UserID(r)
	if g.Privacy == models.PrivacyPrivate && !g.IsMember(uid) && !authz.IsAdmin(r) {
		return primitive.NilObjectID, groupstore.ErrPrivateGroup
	}
	return gid, nil
}

// post loads the {postID} post and checks it belongs to the request's feed.
func (h *Handler) post(ctx context.Context, r *http.Request) (models.Post, error) {
	gid, err := h.scope(ctx, r)
	if err != nil {
		return models.Post{}, err
	}
	pid, err := inputval.PathID(r, "postID")
	if err != nil {
		return models.Post{}, err
	}
	p, err := h.Feed.GetPost(ctx, pid)
	if err != nil {
		return models.Post{}, err
	}
	if p.GroupID != gid {
		return models.Post{}, feedstore.ErrPostNotFound
	}
	return p, nil
}

// comment loads the {commentID} comment and checks it belongs to the
// request's feed.
func (h *Handler) comment(ctx context.Context, r *http.Request) (models.Comment, error) {
	gid, err := h.scope(ctx, r)
	if err != nil {
		return models.Comment{}, err
	}
	cid, err := inputval.PathID(r, "commentID")
	if err != nil {
		return models.Comment{}, err
	}
	c, err := h.Feed.GetComment(ctx, cid)
	if err != nil {
		return models.Comment{}, err
	}
	if c.GroupID != gid {
		return models.Comment{}, feedstore.ErrCommentNotFound
	}
	return c, nil
}

func postID(p models.Post) string       { return p.ID.Hex() }
func commentID(c models.Comment) string { return c.ID.Hex() }

// ServeList handles GET / with ?limit= and ?before=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	gid, err := h.scope(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: scope", err)
		return
	}
	posts, more, err := h.Feed.ListPosts(ctx, gid, paging.Parse(r))
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: list", err)
		return
	}
	respond.OK(w, respond.NewPage(posts, more, postID))
}

type postRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

// HandleCreate handles POST /.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in postRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "feed: decode", err)
		return
	}
	content, err := inputval.OptionalText("content", in.Content, inputval.MaxPostLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: validate", err)
		return
	}
	image, err := inputval.ImageURL("image", in.Image)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	gid, err := h.scope(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: scope", err)
		return
	}
	p, err := h.Feed.CreatePost(ctx, gid, uid, content, image)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: create post", err)
		return
	}
	respond.Created(w, p)
}

// ServePost handles GET /{postID}.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.post(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: get post", err)
		return
	}
	respond.OK(w, p)
}

// HandleDelete handles DELETE /{postID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	p, err := h.post(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: delete post", err)
		return
	}
	if err := h.Feed.DeletePost(ctx, p.ID, uid); err != nil {
		httperrors.Write(w, r, h.Log, "feed: delete post", err)
		return
	}
	respond.NoContent(w)
}

// HandleLike handles POST /{postID}/like and toggles the caller's like.
func (h *Handler) HandleLike(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.post(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: like", err)
		return
	}
	st, err := h.Feed.ToggleLike(ctx, p.ID, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: like", err)
		return
	}
	respond.OK(w, st)
}

// ServeComments handles GET /{postID}/comments, oldest first.
func (h *Handler) ServeComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.post(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: comments", err)
		return
	}
	list, err := h.Feed.ListComments(ctx, p.ID)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: comments", err)
		return
	}
	respond.OK(w, respond.NewPage(list, false, commentID))
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) decodeComment(w http.ResponseWriter, r *http.Request) (string, error) {
	var in commentRequest
	if err := respond.Decode(w, r, &in); err != nil {
		return "", err
	}
	return inputval.Text("content", in.Content, inputval.MaxCommentLen)
}

// HandleComment handles POST /{postID}/comments.
func (h *Handler) HandleComment(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	content, err := h.decodeComment(w, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: comment", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.post(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: comment", err)
		return
	}
	c, err := h.Feed.AddComment(ctx, p.ID, uid, content)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: comment", err)
		return
	}
	respond.Created(w, c)
}

// HandleReply handles POST /{postID}/comments/{commentID}/replies.
func (h *Handler) HandleReply(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	content, err := h.decodeComment(w, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: reply", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.post(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: reply", err)
		return
	}
	parent, err := inputval.PathID(r, "commentID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: reply", err)
		return
	}
	c, err := h.Feed.AddReply(ctx, p.ID, parent, uid, content)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: reply", err)
		return
	}
	respond.Created(w, c)
}

// HandleEditComment handles PATCH /comments/{commentID}.
func (h *Handler) HandleEditComment(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	content, err := h.decodeComment(w, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: edit comment", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	c, err := h.comment(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: edit comment", err)
		return
	}
	c, err = h.Feed.EditComment(ctx, c.ID, uid, content)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: edit comment", err)
		return
	}
	respond.OK(w, c)
}

// HandleDeleteComment handles DELETE /comments/{commentID}.
func (h *Handler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	c, err := h.comment(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: delete comment", err)
		return
	}
	if err := h.Feed.DeleteComment(ctx, c.ID, uid); err != nil {
		httperrors.Write(w, r, h.Log, "feed: delete comment", err)
		return
	}
	respond.NoContent(w)
}

// HandleLikeComment handles POST /comments/{commentID}/like.
func (h *Handler) HandleLikeComment(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	c, err := h.comment(ctx, r)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: like comment", err)
		return
	}
	st, err := h.Feed.ToggleCommentLike(ctx, c.ID, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "feed: like comment", err)
		return
	}
	respond.OK(w, st)
}
