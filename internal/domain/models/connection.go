package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Connection request states. Accepted and rejected are terminal.
const (
	ConnectionNone     = "none"
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// ConnectionRequest is a directional request filed under its recipient
// (OwnerID == ToID).
type ConnectionRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	FromID    primitive.ObjectID `bson:"from_id" json:"from_id"`
	ToID      primitive.ObjectID `bson:"to_id" json:"to_id"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Connection is one half of an accepted pair: OwnerID is connected to UserID.
// Accepting a request always writes both halves together.
type Connection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	RequestID   primitive.ObjectID `bson:"request_id" json:"request_id"`
	ConnectedAt time.Time          `bson:"connected_at" json:"connected_at"`
}
