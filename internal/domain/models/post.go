// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is an entry in the home feed (posts) or, when GroupID is set, in a
// group feed (groupPosts).
//
// LikeCount is a denormalized len(Likes); likes are toggled with a single
// conditional update that moves both together.
type Post struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	GroupID      primitive.ObjectID   `bson:"group_id,omitempty" json:"group_id,omitempty"`
	AuthorID     primitive.ObjectID   `bson:"author_id" json:"author_id"`
	Content      string               `bson:"content" json:"content"`
	ContentCI    string               `bson:"content_ci" json:"-"`
	Image        string               `bson:"image,omitempty" json:"image,omitempty"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	LikeCount    int                  `bson:"like_count" json:"like_count"`
	CommentCount int                  `bson:"comment_count" json:"comment_count"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

// Comment belongs to a Post. ParentID is set for replies; replies are one
// level deep and only move their parent's ReplyCount.
type Comment struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	GroupID    primitive.ObjectID   `bson:"group_id,omitempty" json:"group_id,omitempty"`
	PostID     primitive.ObjectID   `bson:"post_id" json:"post_id"`
	ParentID   *primitive.ObjectID  `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	AuthorID   primitive.ObjectID   `bson:"author_id" json:"author_id"`
	Content    string               `bson:"content" json:"content"`
	Likes      []primitive.ObjectID `bson:"likes" json:"likes"`
	LikeCount  int                  `bson:"like_count" json:"like_count"`
	ReplyCount int                  `bson:"reply_count" json:"reply_count"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
	EditedAt   *time.Time           `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
}

// IsReply reports whether the comment answers another comment.
func (c Comment) IsReply() bool { return c.ParentID != nil }
