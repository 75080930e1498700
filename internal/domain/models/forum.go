package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Forum member roles.
const (
	ForumRoleOwner  = "owner"
	ForumRoleMember = "member"
)

// Forum is a named discussion space. Membership lives in forumMembers.
type Forum struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	MemberCount int                `bson:"member_count" json:"member_count"`
	ThreadCount int                `bson:"thread_count" json:"thread_count"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// ForumMember joins a user to a forum. One document per (forum_id, user_id).
type ForumMember struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ForumID  primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role     string             `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}

// ForumThread is a topic inside a forum; replies are embedded.
type ForumThread struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ForumID    primitive.ObjectID `bson:"forum_id" json:"forum_id"`
	Title      string             `bson:"title" json:"title"`
	TitleCI    string             `bson:"title_ci" json:"-"`
	Content    string             `bson:"content" json:"content"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	Replies    []ThreadReply      `bson:"replies" json:"replies"`
	ReplyCount int                `bson:"reply_count" json:"reply_count"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// ThreadReply is a single reply inside a ForumThread.
type ThreadReply struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
