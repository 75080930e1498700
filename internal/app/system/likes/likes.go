// Package likes flips a user's like on a document that keeps its likers in a
// "likes" array and the count in "like_count". Each flip is one conditional
// single-document update, so the array and the counter always move together.
package likes

import (
	"context"
	"errors"
	"fmt"

	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = apperr.New(apperr.NotFound, "likes: document not found")
	ErrConflict = apperr.New(apperr.Transient, "likes: document changed during toggle")
)

// maxFlips bounds how often Toggle re-reads the state when another writer
// flips the same like between its two conditional updates.
const maxFlips = 3

// State is the outcome of a toggle.
type State struct {
	Liked bool `json:"liked"`
	Count int  `json:"like_count"`
}

type counter struct {
	LikeCount int `bson:"like_count"`
}

// Toggle adds uid to the likes of document id if absent, otherwise removes it.
func Toggle(ctx context.Context, c lungo.ICollection, id, uid primitive.ObjectID) (State, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for i := 0; i < maxFlips; i++ {
		var out counter
		err := c.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "likes": bson.M{"$ne": uid}},
			bson.M{"$addToSet": bson.M{"likes": uid}, "$inc": bson.M{"like_count": 1}},
			after,
		).Decode(&out)
		if err == nil {
			return State{Liked: true, Count: out.LikeCount}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return State{}, fmt.Errorf("like: %w", err)
		}

		err = c.FindOneAndUpdate(ctx,
			bson.M{"_id": id, "likes": uid},
			bson.M{"$pullAll": bson.M{"likes": bson.A{uid}}, "$inc": bson.M{"like_count": -1}},
			after,
		).Decode(&out)
		if err == nil {
			return State{Liked: false, Count: out.LikeCount}, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return State{}, fmt.Errorf("unlike: %w", err)
		}

		n, err := c.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return State{}, fmt.Errorf("like lookup: %w", err)
		}
		if n == 0 {
			return State{}, ErrNotFound
		}
	}
	return State{}, ErrConflict
}
