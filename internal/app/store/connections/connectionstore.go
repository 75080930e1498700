// Package connectionstore implements the connection request workflow:
// none → pending → {accepted, rejected}. Accepted and rejected are terminal.
// Requests are filed under their recipient; an accepted request produces a
// matched pair of Connection documents, one per participant.
package connectionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/256dpi/lungo"
	notificationstore "github.com/dalemusser/hotspot/internal/app/store/notifications"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/txn"
	"github.com/dalemusser/hotspot/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrSelf             = apperr.New(apperr.Invalid, "cannot connect to yourself")
	ErrDuplicate        = apperr.New(apperr.Duplicate, "a connection request is already pending")
	ErrAlreadyConnected = apperr.New(apperr.Duplicate, "already connected")
	ErrNotFound         = apperr.New(apperr.NotFound, "connection request not found")
	ErrNotPending       = apperr.New(apperr.Invalid, "connection request is no longer pending")
	ErrNotConnected     = apperr.New(apperr.NotFound, "not connected")
)

type Store struct {
	db       lungo.IDatabase
	requests lungo.ICollection
	conns    lungo.ICollection
	notify   *notificationstore.Store
}

func New(db lungo.IDatabase) *Store {
	return &Store{
		db:       db,
		requests: db.Collection(collections.ConnectionReqs),
		conns:    db.Collection(collections.Connections),
		notify:   notificationstore.New(db),
	}
}

// SendRequest files a pending request from the sender to the recipient.
//
// The duplicate check reads before it writes inside a transaction. On a
// server without transactions two simultaneous requests from the same
// sender can both pass the check; the later write wins.
func (s *Store) SendRequest(ctx context.Context, from, to primitive.ObjectID) (models.ConnectionRequest, error) {
	if from == to {
		return models.ConnectionRequest{}, ErrSelf
	}

	now := time.Now().UTC()
	req := models.ConnectionRequest{
		ID:        primitive.NewObjectID(),
		OwnerID:   to,
		FromID:    from,
		ToID:      to,
		Status:    models.ConnectionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		connected, err := s.isConnected(ctx, from, to)
		if err != nil {
			return err
		}
		if connected {
			return ErrAlreadyConnected
		}
		n, err := s.requests.CountDocuments(ctx, bson.M{
			"owner_id": to,
			"from_id":  from,
			"status":   models.ConnectionPending,
		})
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		if _, err := s.requests.InsertOne(ctx, req); err != nil {
			return fmt.Errorf("insert connection request: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.ConnectionRequest{}, err
	}
	return req, nil
}

// Accept flips a pending request to accepted, writes both connection
// records and notifies the sender, all in one transaction. Only the
// recipient can accept; for anyone else the request does not exist.
func (s *Store) Accept(ctx context.Context, requestID primitive.ObjectID, by models.Actor) (models.ConnectionRequest, error) {
	return s.resolve(ctx, requestID, by, models.ConnectionAccepted)
}

// Reject flips a pending request to rejected and notifies the sender.
func (s *Store) Reject(ctx context.Context, requestID primitive.ObjectID, by models.Actor) (models.ConnectionRequest, error) {
	return s.resolve(ctx, requestID, by, models.ConnectionRejected)
}

func (s *Store) resolve(ctx context.Context, requestID primitive.ObjectID, by models.Actor, status string) (models.ConnectionRequest, error) {
	var req models.ConnectionRequest
	err := txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		now := time.Now().UTC()
		err := s.requests.FindOneAndUpdate(ctx,
			bson.M{"_id": requestID, "owner_id": by.ID, "status": models.ConnectionPending},
			bson.M{"$set": bson.M{"status": status, "updated_at": now}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&req)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.whyUnresolvable(ctx, requestID, by.ID)
		}
		if err != nil {
			return err
		}

		if status == models.ConnectionAccepted {
			pair := []interface{}{
				models.Connection{ID: primitive.NewObjectID(), OwnerID: req.ToID, UserID: req.FromID, RequestID: req.ID, ConnectedAt: now},
				models.Connection{ID: primitive.NewObjectID(), OwnerID: req.FromID, UserID: req.ToID, RequestID: req.ID, ConnectedAt: now},
			}
			if _, err := s.conns.InsertMany(ctx, pair); err != nil {
				if wafflemongo.IsDup(err) {
					return ErrAlreadyConnected
				}
				return fmt.Errorf("insert connections: %w", err)
			}
		}

		typ, verb := models.NotifyAccepted, "accepted"
		if status == models.ConnectionRejected {
			typ, verb = models.NotifyRejected, "declined"
		}
		msg := fmt.Sprintf("%s %s your connection request", by.Name, verb)
		return s.notify.Notify(ctx, []primitive.ObjectID{req.FromID}, by.ID, typ, msg, nil)
	})
	if err != nil {
		return models.ConnectionRequest{}, err
	}
	return req, nil
}

func (s *Store) whyUnresolvable(ctx context.Context, requestID, owner primitive.ObjectID) error {
	var req models.ConnectionRequest
	err := s.requests.FindOne(ctx, bson.M{"_id": requestID, "owner_id": owner}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrNotPending
}

// Status reports the connection state between a and b as seen from a:
// accepted when connected, otherwise the state of the most recent request
// between them in either direction, or none. A removed connection reads as
// none.
func (s *Store) Status(ctx context.Context, a, b primitive.ObjectID) (string, error) {
	connected, err := s.isConnected(ctx, a, b)
	if err != nil {
		return "", err
	}
	if connected {
		return models.ConnectionAccepted, nil
	}

	var req models.ConnectionRequest
	err = s.requests.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"from_id": a, "to_id": b},
		bson.M{"from_id": b, "to_id": a},
	}}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ConnectionNone, nil
	}
	if err != nil {
		return "", err
	}
	if req.Status == models.ConnectionAccepted {
		// Accepted earlier, since removed.
		return models.ConnectionNone, nil
	}
	return req.Status, nil
}

// ListConnections returns uid's connections, most recent first.
func (s *Store) ListConnections(ctx context.Context, uid primitive.ObjectID) ([]models.Connection, error) {
	cur, err := s.conns.Find(ctx, bson.M{"owner_id": uid},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Connection{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPending returns the pending requests addressed to uid.
func (s *Store) ListPending(ctx context.Context, uid primitive.ObjectID) ([]models.ConnectionRequest, error) {
	cur, err := s.requests.Find(ctx,
		bson.M{"owner_id": uid, "status": models.ConnectionPending},
		options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.ConnectionRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes both halves of the a/b connection.
func (s *Store) Remove(ctx context.Context, a, b primitive.ObjectID) error {
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		res, err := s.conns.DeleteMany(ctx, bson.M{"$or": bson.A{
			bson.M{"owner_id": a, "user_id": b},
			bson.M{"owner_id": b, "user_id": a},
		}})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotConnected
		}
		return nil
	})
}

func (s *Store) isConnected(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	n, err := s.conns.CountDocuments(ctx, bson.M{"owner_id": a, "user_id": b})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
