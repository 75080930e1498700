// internal/app/features/realtime/topics.go
package realtime

import (
	"context"

	groupstore "github.com/dalemusser/hotspot/internal/app/store/groups"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/realtime"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnknownCollection = apperr.New(apperr.Invalid, "collection cannot be subscribed to")
	ErrTopicForbidden    = apperr.New(apperr.Forbidden, "not allowed to subscribe to that topic")
)

// public collections may be watched by any signed-in user in any shape.
var public = map[string]bool{
	collections.Users:            true,
	collections.Groups:           true,
	collections.Forums:           true,
	collections.ForumMembers:     true,
	collections.ForumThreads:     true,
	collections.Posts:            true,
	collections.Comments:         true,
	collections.BlogPosts:        true,
	collections.BlogPostComments: true,
	collections.Products:         true,
}

// owned collections hold per-user documents; the topic must pin the owner
// field to the subscriber.
var owned = map[string]string{
	collections.Notifications:  "recipient_id",
	collections.Carts:          "_id",
	collections.ConnectionReqs: "owner_id",
	collections.Connections:    "owner_id",
}

// groupScoped collections are readable per group.
var groupScoped = map[string]bool{
	collections.GroupPosts:        true,
	collections.GroupPostComments: true,
}

// authorize decides whether uid may subscribe to t. Admins may watch
// anything except owned collections of other users.
func (h *Handler) authorize(ctx context.Context, t realtime.Topic, uid primitive.ObjectID, admin bool) error {
	switch {
	case public[t.Collection]:
		return nil
	case owned[t.Collection] != "":
		if t.Field == owned[t.Collection] && t.Value == uid.Hex() {
			return nil
		}
		return ErrTopicForbidden
	case groupScoped[t.Collection]:
		if admin {
			return nil
		}
		if t.Field != "group_id" {
			return ErrTopicForbidden
		}
		gid, err := primitive.ObjectIDFromHex(t.Value)
		if err != nil {
			return ErrTopicForbidden
		}
		g, err := h.Groups.GetByID(ctx, gid)
		if err != nil {
			return err
		}
		if g.Privacy == models.PrivacyPrivate && !g.IsMember(uid) {
			return groupstore.ErrPrivateGroup
		}
		return nil
	}
	return ErrUnknownCollection
}

// redact strips what the subscriber may not see from a group document:
// the pending list from non-admins and the member lists of a private group
// from outsiders. The hub shares documents between subscribers, so a
// changed document is copied.
func redact(e realtime.Event, uid primitive.ObjectID, admin bool) realtime.Event {
	if admin || e.Collection != collections.Groups || e.Doc == nil {
		return e
	}
	if contains(e.Doc["admins"], uid) {
		return e
	}
	doc := make(bson.M, len(e.Doc))
	for k, v := range e.Doc {
		doc[k] = v
	}
	delete(doc, "pending")
	if doc["privacy"] == models.PrivacyPrivate && !contains(doc["members"], uid) {
		doc["members"] = bson.A{}
		doc["admins"] = bson.A{}
	}
	e.Doc = doc
	return e
}

func contains(list interface{}, id primitive.ObjectID) bool {
	arr, ok := list.(bson.A)
	if !ok {
		if s, ok := list.([]interface{}); ok {
			arr = s
		}
	}
	for _, v := range arr {
		if oid, ok := v.(primitive.ObjectID); ok && oid == id {
			return true
		}
	}
	return false
}
