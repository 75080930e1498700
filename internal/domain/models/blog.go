package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlogPost is editorial content published by admins. Likes is a plain
// counter; per-user likes live in blogPostLikes.
type BlogPost struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	TitleCI      string             `bson:"title_ci" json:"-"`
	Content      string             `bson:"content" json:"content"`
	Excerpt      string             `bson:"excerpt" json:"excerpt"`
	CoverImage   string             `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	AuthorID     primitive.ObjectID `bson:"author_id" json:"author_id"`
	Likes        int                `bson:"likes" json:"likes"`
	CommentCount int                `bson:"comment_count" json:"comment_count"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// BlogLike records that a user liked a blog post.
type BlogLike struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"post_id" json:"post_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// BlogComment is a reader comment on a blog post.
type BlogComment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"post_id" json:"post_id"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
