// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group privacy settings.
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Group is a campus interest group with its own feed.
//
// NOTE:
//   - MemberCount is a denormalized len(Members). Every store write that
//     changes Members changes MemberCount in the same single-document update.
//   - Pending holds users waiting for an admin to accept their join request
//     (private groups only).
type Group struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	Privacy     string               `bson:"privacy" json:"privacy"`
	OwnerID     primitive.ObjectID   `bson:"owner_id" json:"owner_id"`
	Admins      []primitive.ObjectID `bson:"admins" json:"admins"`
	Members     []primitive.ObjectID `bson:"members" json:"members"`
	MemberCount int                  `bson:"member_count" json:"member_count"`
	Pending     []primitive.ObjectID `bson:"pending" json:"pending,omitempty"`

	LastActivity time.Time `bson:"last_activity" json:"last_activity"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether uid is in the member list.
func (g Group) IsMember(uid primitive.ObjectID) bool { return containsID(g.Members, uid) }

// IsAdmin reports whether uid administers the group. The owner is always an admin.
func (g Group) IsAdmin(uid primitive.ObjectID) bool {
	return g.OwnerID == uid || containsID(g.Admins, uid)
}

// IsPending reports whether uid has an outstanding join request.
func (g Group) IsPending(uid primitive.ObjectID) bool { return containsID(g.Pending, uid) }

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
