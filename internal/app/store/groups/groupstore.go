// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	notificationstore "github.com/dalemusser/hotspot/internal/app/store/notifications"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/txn"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrNotFound         = apperr.New(apperr.NotFound, "group not found")
	ErrForbidden        = apperr.New(apperr.Forbidden, "only a group admin may do this")
	ErrNotOwner         = apperr.New(apperr.Forbidden, "only the group owner may do this")
	ErrAlreadyMember    = apperr.New(apperr.Duplicate, "already a member of this group")
	ErrDuplicateRequest = apperr.New(apperr.Duplicate, "a join request is already pending")
	ErrNotMember        = apperr.New(apperr.Invalid, "not a member of this group")
	ErrOwnerCannotLeave = apperr.New(apperr.Forbidden, "the owner cannot leave the group")
	ErrPrivateGroup     = apperr.New(apperr.Forbidden, "this group is private; send a join request")
	ErrPublicGroup      = apperr.New(apperr.Invalid, "this group is public; join it directly")
	ErrBadPrivacy       = apperr.New(apperr.Invalid, `privacy must be "public"|"private"`)
	ErrOwnerRoleIsFixed = apperr.New(apperr.Invalid, "the owner is always an admin")
)

type Store struct {
	db     lungo.IDatabase
	c      lungo.ICollection
	notify *notificationstore.Store
}

func New(db lungo.IDatabase) *Store {
	return &Store{
		db:     db,
		c:      db.Collection(collections.Groups),
		notify: notificationstore.New(db),
	}
}

// Create makes a group whose creator is its owner, first admin and only member.
func (s *Store) Create(ctx context.Context, owner primitive.ObjectID, name, desc, privacy string) (models.Group, error) {
	if privacy == "" {
		privacy = models.PrivacyPublic
	}
	if privacy != models.PrivacyPublic && privacy != models.PrivacyPrivate {
		return models.Group{}, ErrBadPrivacy
	}

	now := time.Now().UTC()
	g := models.Group{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(name),
		Description:  strings.TrimSpace(desc),
		Privacy:      privacy,
		OwnerID:      owner,
		Admins:       []primitive.ObjectID{owner},
		Members:      []primitive.ObjectID{owner},
		MemberCount:  1,
		Pending:      []primitive.ObjectID{},
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	g.NameCI = text.Fold(g.Name)

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// List returns groups with the most recent activity first.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Group, error) {
	return s.find(ctx, bson.M{}, limit)
}

// ListForMember returns the groups uid belongs to, most recent activity first.
func (s *Store) ListForMember(ctx context.Context, uid primitive.ObjectID, limit int64) ([]models.Group, error) {
	return s.find(ctx, bson.M{"members": uid}, limit)
}

func (s *Store) find(ctx context.Context, filter bson.M, limit int64) ([]models.Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_activity", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateInfo changes name, description and privacy. Empty name or privacy
// keeps the current value; the description may be cleared.
func (s *Store) UpdateInfo(ctx context.Context, id, actor primitive.ObjectID, name, desc, privacy string) (models.Group, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, err
	}
	if !g.IsAdmin(actor) {
		return models.Group{}, ErrForbidden
	}

	now := time.Now().UTC()
	set := bson.M{"description": strings.TrimSpace(desc), "updated_at": now}
	g.Description = strings.TrimSpace(desc)
	if n := strings.TrimSpace(name); n != "" {
		set["name"] = n
		set["name_ci"] = text.Fold(n)
		g.Name, g.NameCI = n, text.Fold(n)
	}
	if privacy != "" {
		if privacy != models.PrivacyPublic && privacy != models.PrivacyPrivate {
			return models.Group{}, ErrBadPrivacy
		}
		set["privacy"] = privacy
		g.Privacy = privacy
	}
	g.UpdatedAt = now

	if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set}); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

// Delete removes the group with its feed posts and comments in one transaction.
func (s *Store) Delete(ctx context.Context, id, actor primitive.ObjectID) error {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !g.IsAdmin(actor) {
		return ErrForbidden
	}

	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.db.Collection(collections.GroupPostComments).DeleteMany(ctx, bson.M{"group_id": id}); err != nil {
			return fmt.Errorf("delete group comments: %w", err)
		}
		if _, err := s.db.Collection(collections.GroupPosts).DeleteMany(ctx, bson.M{"group_id": id}); err != nil {
			return fmt.Errorf("delete group posts: %w", err)
		}
		if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
}

// Join adds uid to a public group. The member list and member_count change in
// one update.
func (s *Store) Join(ctx context.Context, id, uid primitive.ObjectID) (models.Group, error) {
	now := time.Now().UTC()
	var g models.Group
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "privacy": models.PrivacyPublic, "members": bson.M{"$ne": uid}},
		bson.M{
			"$addToSet": bson.M{"members": uid},
			"$inc":      bson.M{"member_count": 1},
			"$set":      bson.M{"last_activity": now, "updated_at": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Group{}, err
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, err
	}
	if cur.IsMember(uid) {
		return models.Group{}, ErrAlreadyMember
	}
	return models.Group{}, ErrPrivateGroup
}

// Leave removes uid from the group (and its admins). The owner cannot leave.
func (s *Store) Leave(ctx context.Context, id, uid primitive.ObjectID) (models.Group, error) {
	now := time.Now().UTC()
	var g models.Group
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": bson.M{"$ne": uid}, "members": uid},
		bson.M{
			"$pullAll": bson.M{"members": bson.A{uid}, "admins": bson.A{uid}},
			"$inc":     bson.M{"member_count": -1},
			"$set":     bson.M{"updated_at": now},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Group{}, err
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, err
	}
	if cur.OwnerID == uid {
		return models.Group{}, ErrOwnerCannotLeave
	}
	return models.Group{}, ErrNotMember
}

// RequestJoin files a join request on a private group and notifies every
// admin with a join_request notification.
func (s *Store) RequestJoin(ctx context.Context, id primitive.ObjectID, by models.Actor) error {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case g.Privacy != models.PrivacyPrivate:
		return ErrPublicGroup
	case g.IsMember(by.ID):
		return ErrAlreadyMember
	case g.IsPending(by.ID):
		return ErrDuplicateRequest
	}

	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": id, "members": bson.M{"$ne": by.ID}, "pending": bson.M{"$ne": by.ID}},
			bson.M{"$addToSet": bson.M{"pending": by.ID}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrDuplicateRequest
		}
		msg := fmt.Sprintf("%s asked to join %s", by.Name, g.Name)
		return s.notify.Notify(ctx, adminsOf(g), by.ID, models.NotifyJoinRequest, msg, &g.ID)
	})
}

// AcceptRequest moves uid from pending to members. Accepting a request that
// is no longer pending is a no-op and reports false.
func (s *Store) AcceptRequest(ctx context.Context, id primitive.ObjectID, by models.Actor, uid primitive.ObjectID) (bool, error) {
	return s.resolveRequest(ctx, id, by, uid, true)
}

// RejectRequest drops uid's pending request. Rejecting a request that is no
// longer pending is a no-op and reports false.
func (s *Store) RejectRequest(ctx context.Context, id primitive.ObjectID, by models.Actor, uid primitive.ObjectID) (bool, error) {
	return s.resolveRequest(ctx, id, by, uid, false)
}

func (s *Store) resolveRequest(ctx context.Context, id primitive.ObjectID, by models.Actor, uid primitive.ObjectID, accept bool) (bool, error) {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if !g.IsAdmin(by.ID) {
		return false, ErrForbidden
	}

	now := time.Now().UTC()
	update := bson.M{"$pullAll": bson.M{"pending": bson.A{uid}}, "$set": bson.M{"updated_at": now}}
	filter := bson.M{"_id": id, "pending": uid}
	typ, msg := models.NotifyRejected, fmt.Sprintf("Your request to join %s was declined", g.Name)
	if accept {
		filter["members"] = bson.M{"$ne": uid}
		update["$addToSet"] = bson.M{"members": uid}
		update["$inc"] = bson.M{"member_count": 1}
		update["$set"] = bson.M{"updated_at": now, "last_activity": now}
		typ, msg = models.NotifyAccepted, fmt.Sprintf("%s accepted your request to join %s", by.Name, g.Name)
	}

	changed := false
	err = txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		changed = false
		res, err := s.c.UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return nil
		}
		changed = true
		_, err = s.notify.Create(ctx, models.Notification{
			RecipientID: uid,
			SenderID:    by.ID,
			Type:        typ,
			Message:     msg,
			GroupID:     &g.ID,
		})
		return err
	})
	return changed, err
}

// UpdateRole promotes a member to admin or demotes an admin. Only the owner
// may change roles, and the owner's own role is fixed.
func (s *Store) UpdateRole(ctx context.Context, id primitive.ObjectID, by models.Actor, uid primitive.ObjectID, admin bool) error {
	g, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if g.OwnerID != by.ID {
		return ErrNotOwner
	}
	if uid == g.OwnerID {
		return ErrOwnerRoleIsFixed
	}
	if !g.IsMember(uid) {
		return ErrNotMember
	}

	update := bson.M{"$pullAll": bson.M{"admins": bson.A{uid}}}
	role := "member"
	if admin {
		update = bson.M{"$addToSet": bson.M{"admins": uid}}
		role = "admin"
	}
	update["$set"] = bson.M{"updated_at": time.Now().UTC()}

	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "members": uid}, update); err != nil {
			return err
		}
		_, err := s.notify.Create(ctx, models.Notification{
			RecipientID: uid,
			SenderID:    by.ID,
			Type:        models.NotifyRoleUpdated,
			Message:     fmt.Sprintf("%s made you %s of %s", by.Name, article(role), g.Name),
			GroupID:     &g.ID,
		})
		return err
	})
}

// TouchActivity stamps last_activity.
func (s *Store) TouchActivity(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_activity": time.Now().UTC()}})
	return err
}

func adminsOf(g models.Group) []primitive.ObjectID {
	out := []primitive.ObjectID{g.OwnerID}
	for _, a := range g.Admins {
		if a != g.OwnerID {
			out = append(out, a)
		}
	}
	return out
}

func article(role string) string {
	if role == "admin" {
		return "an admin"
	}
	return "a member"
}
