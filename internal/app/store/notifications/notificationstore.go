package notificationstore

import (
	"context"
	"time"

	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotFound = apperr.New(apperr.NotFound, "notification not found")

type Store struct {
	c lungo.ICollection
}

func New(db lungo.IDatabase) *Store {
	return &Store{c: db.Collection(collections.Notifications)}
}

// Create writes one notification. Read is always false on creation.
func (s *Store) Create(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = primitive.NewObjectID()
	n.Read = false
	n.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// Notify sends the same message from sender to every recipient.
func (s *Store) Notify(ctx context.Context, recipients []primitive.ObjectID, sender primitive.ObjectID, typ, msg string, groupID *primitive.ObjectID) error {
	if len(recipients) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(recipients))
	for _, r := range recipients {
		docs = append(docs, models.Notification{
			ID:          primitive.NewObjectID(),
			RecipientID: r,
			SenderID:    sender,
			Type:        typ,
			Message:     msg,
			GroupID:     groupID,
			CreatedAt:   now,
		})
	}
	_, err := s.c.InsertMany(ctx, docs)
	return err
}

// ListForUser returns the recipient's notifications, newest first.
func (s *Store) ListForUser(ctx context.Context, uid primitive.ObjectID, page paging.Page) ([]models.Notification, bool, error) {
	filter, opts := page.Apply(bson.M{"recipient_id": uid})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	out := []models.Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, false, err
	}
	more := paging.TrimPage(&out, page.Normalize().Limit)
	return out, more, nil
}

// UnreadCount counts the recipient's unread notifications.
func (s *Store) UnreadCount(ctx context.Context, uid primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"recipient_id": uid, "read": false})
}

// MarkRead marks one notification read. Only the recipient may do so; for
// anyone else the notification does not exist.
func (s *Store) MarkRead(ctx context.Context, id, uid primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": uid},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of uid read and returns how many changed.
func (s *Store) MarkAllRead(ctx context.Context, uid primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"recipient_id": uid, "read": false},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Delete removes one of the recipient's notifications.
func (s *Store) Delete(ctx context.Context, id, uid primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "recipient_id": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PruneRead deletes read notifications created before cutoff. Unread ones
// are kept however old they are.
func (s *Store) PruneRead(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"read": true, "created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
