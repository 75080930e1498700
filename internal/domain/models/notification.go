package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types. Notifications are written as a side effect of another
// user's action; recipients never create their own.
const (
	NotifyJoinRequest = "join_request"
	NotifyAccepted    = "accepted"
	NotifyRejected    = "rejected"
	NotifyRoleUpdated = "role_updated"
)

// Notification is a message delivered to one recipient.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderID    primitive.ObjectID  `bson:"sender_id" json:"sender_id"`
	Type        string              `bson:"type" json:"type"`
	Message     string              `bson:"message" json:"message"`
	GroupID     *primitive.ObjectID `bson:"group_id,omitempty" json:"group_id,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
}
