// internal/app/features/forums/threads.go
package forums

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.uber.org/zap"
)

type threadRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type replyRequest struct {
	Content string `json:"content"`
}

func threadID(t models.ForumThread) string { return t.ID.Hex() }

// ServeThreads handles GET /forums/{id}/threads. Replies are left out of
// the listing; fetch a thread to read them.
func (h *Handler) ServeThreads(w http.ResponseWriter, r *http.Request) {
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
	list, more, err := h.Forums.ListThreads(ctx, id, paging.Parse(r))
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: threads", err)
		return
	}
	respond.OK(w, respond.NewPage(list, more, threadID))
}

// HandleCreateThread handles POST /forums/{id}/threads. Members only.
func (h *Handler) HandleCreateThread(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "forum: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	var in threadRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "thread: decode", err)
		return
	}
	title, err := inputval.Text("title", in.Title, inputval.MaxNameLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "thread: validate", err)
		return
	}
	content, err := inputval.Text("content", in.Content, inputval.MaxPostLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "thread: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	t, err := h.Forums.CreateThread(ctx, id, uid, title, content)
	if err != nil {
		httperrors.Write(w, r, h.Log, "thread: create", err)
		return
	}
	h.Log.Info("thread created", zap.String("forum_id", id.Hex()), zap.String("thread_id", t.ID.Hex()))
	respond.Created(w, t)
}

// ServeThread handles GET /forums/threads/{threadID}, replies included.
func (h *Handler) ServeThread(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "threadID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "thread: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	t, err := h.Forums.GetThread(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "thread: get", err)
		return
	}
	respond.OK(w, t)
}

// HandleReply handles POST /forums/threads/{threadID}/replies.
func (h *Handler) HandleReply(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "threadID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "thread: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	var in replyRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "reply: decode", err)
		return
	}
	content, err := inputval.Text("content", in.Content, inputval.MaxCommentLen)
	if err != nil {
		httperrors.Write(w, r, h.Log, "reply: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	reply, err := h.Forums.ReplyToThread(ctx, id, uid, content)
	if err != nil {
		httperrors.Write(w, r, h.Log, "reply: create", err)
		return
	}
	respond.Created(w, reply)
}

// HandleDeleteThread handles DELETE /forums/threads/{threadID}. The author
// or the forum owner may delete.
func (h *Handler) HandleDeleteThread(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "threadID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "thread: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Forums.DeleteThread(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, "thread: delete", err)
		return
	}
	respond.NoContent(w)
}
