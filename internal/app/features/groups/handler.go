// internal/app/features/groups/handler.go
package groups

import (
	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/features/feed"
	groupstore "github.com/dalemusser/hotspot/internal/app/store/groups"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxDescriptionLen = 2000

// Handler serves /groups and mounts each group's feed under /groups/{id}/feed.
type Handler struct {
	Groups *groupstore.Store
	Feed   *feed.Handler
	Log    *zap.Logger
}

func NewHandler(db lungo.IDatabase, logger *zap.Logger) *Handler {
	return &Handler{
		Groups: groupstore.New(db),
		Feed:   feed.NewGroupHandler(db, logger),
		Log:    logger,
	}
}

// redact hides what the viewer may not see: the pending list from
// non-admins and the member list of a private group from outsiders.
func redact(g models.Group, uid primitive.ObjectID, siteAdmin bool) models.Group {
	if siteAdmin || g.IsAdmin(uid) {
		return g
	}
	g.Pending = nil
	if g.Privacy == models.PrivacyPrivate && !g.IsMember(uid) {
		g.Members = []primitive.ObjectID{}
		g.Admins = []primitive.ObjectID{}
	}
	return g
}
