// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	notificationstore "github.com/dalemusser/hotspot/internal/app/store/notifications"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(store *notificationstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Notifications: store, Log: logger}
}

func notificationID(n models.Notification) string { return n.ID.Hex() }

// ServeList handles GET /notifications, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	list, more, err := h.Notifications.ListForUser(ctx, uid, paging.Parse(r))
	if err != nil {
		httperrors.Write(w, r, h.Log, "notifications: list", err)
		return
	}
	respond.OK(w, respond.NewPage(list, more, notificationID))
}

type countResponse struct {
	Count int64 `json:"count"`
}

// ServeUnreadCount handles GET /notifications/unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	n, err := h.Notifications.UnreadCount(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "notifications: unread count", err)
		return
	}
	respond.OK(w, countResponse{Count: n})
}

// HandleMarkRead handles POST /notifications/{id}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "notification: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, "notification: mark read", err)
		return
	}
	respond.NoContent(w)
}

// HandleMarkAllRead handles POST /notifications/read-all and reports how
// many notifications changed.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "notifications: mark all read", err)
		return
	}
	respond.OK(w, countResponse{Count: n})
}

// HandleDelete handles DELETE /notifications/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "notification: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	if err := h.Notifications.Delete(ctx, id, uid); err != nil {
		httperrors.Write(w, r, h.Log, "notification: delete", err)
		return
	}
	respond.NoContent(w)
}
