// Package blogstore stores admin-authored blog posts with their per-user
// likes and reader comments.
package blogstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/txn"
	"github.com/dalemusser/hotspot/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const excerptLen = 200

var (
	ErrNotFound        = apperr.New(apperr.NotFound, "blog post not found")
	ErrCommentNotFound = apperr.New(apperr.NotFound, "blog comment not found")
	ErrForbidden       = apperr.New(apperr.Forbidden, "only admins can manage blog posts")
	ErrNotAuthor       = apperr.New(apperr.Forbidden, "not the author of this comment")
	ErrDuplicate       = apperr.New(apperr.Duplicate, "post already liked")
	ErrNotLiked        = apperr.New(apperr.NotFound, "post not liked")
	ErrEmpty           = apperr.New(apperr.Invalid, "title and content are required")
)

// PostInput carries the editable fields of a blog post. Content is HTML and
// is sanitized before it is stored.
type PostInput struct {
	Title      string
	Content    string
	CoverImage string
}

type Store struct {
	db       lungo.IDatabase
	posts    lungo.ICollection
	likes    lungo.ICollection
	comments lungo.ICollection
}

func New(db lungo.IDatabase) *Store {
	return &Store{
		db:       db,
		posts:    db.Collection(collections.BlogPosts),
		likes:    db.Collection(collections.BlogPostLikes),
		comments: db.Collection(collections.BlogPostComments),
	}
}

func (in PostInput) clean() (PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = htmlsanitize.PrepareForStorage(in.Content)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	if in.Title == "" || strings.TrimSpace(htmlsanitize.StripTags(in.Content)) == "" {
		return in, ErrEmpty
	}
	return in, nil
}

// CreatePost publishes a post. Only admins may publish.
func (s *Store) CreatePost(ctx context.Context, author primitive.ObjectID, admin bool, in PostInput) (models.BlogPost, error) {
	if !admin {
		return models.BlogPost{}, ErrForbidden
	}
	in, err := in.clean()
	if err != nil {
		return models.BlogPost{}, err
	}
	now := time.Now().UTC()
	p := models.BlogPost{
		ID:         primitive.NewObjectID(),
		Title:      in.Title,
		TitleCI:    text.Fold(in.Title),
		Content:    in.Content,
		Excerpt:    htmlsanitize.Excerpt(in.Content, excerptLen),
		CoverImage: in.CoverImage,
		AuthorID:   author,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.posts.InsertOne(ctx, p); err != nil {
		return models.BlogPost{}, fmt.Errorf("insert blog post: %w", err)
	}
	return p, nil
}

func (s *Store) GetPost(ctx context.Context, id primitive.ObjectID) (models.BlogPost, error) {
	var p models.BlogPost
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.BlogPost{}, ErrNotFound
		}
		return models.BlogPost{}, err
	}
	return p, nil
}

// ListPosts returns a page of posts, newest first.
func (s *Store) ListPosts(ctx context.Context, page paging.Page) ([]models.BlogPost, bool, error) {
	filter, opts := page.Apply(bson.M{})
	cur, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	out := []models.BlogPost{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, false, err
	}
	return out, paging.TrimPage(&out, page.Normalize().Limit), nil
}

// UpdatePost replaces title, content and cover image. Admin only.
func (s *Store) UpdatePost(ctx context.Context, id primitive.ObjectID, admin bool, in PostInput) (models.BlogPost, error) {
	if !admin {
		return models.BlogPost{}, ErrForbidden
	}
	in, err := in.clean()
	if err != nil {
		return models.BlogPost{}, err
	}
	var p models.BlogPost
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       in.Title,
		"title_ci":    text.Fold(in.Title),
		"content":     in.Content,
		"excerpt":     htmlsanitize.Excerpt(in.Content, excerptLen),
		"cover_image": in.CoverImage,
		"updated_at":  time.Now().UTC(),
	}}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.BlogPost{}, ErrNotFound
	}
	if err != nil {
		return models.BlogPost{}, err
	}
	return p, nil
}

// DeletePost removes a post with its likes and comments. Admin only.
func (s *Store) DeletePost(ctx context.Context, id primitive.ObjectID, admin bool) error {
	if !admin {
		return ErrForbidden
	}
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		res, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotFound
		}
		if _, err := s.likes.DeleteMany(ctx, bson.M{"post_id": id}); err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if _, err := s.comments.DeleteMany(ctx, bson.M{"post_id": id}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		return nil
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Likes                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// IncrementLikes bumps the anonymous like counter with a single $inc and
// returns the new value.
func (s *Store) IncrementLikes(ctx context.Context, id primitive.ObjectID) (int, error) {
	var p models.BlogPost
	err := s.posts.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"likes": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return p.Likes, nil
}

// Like records uid's like and bumps the counter in one transaction.
func (s *Store) Like(ctx context.Context, id, uid primitive.ObjectID) error {
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		n, err := s.likes.CountDocuments(ctx, bson.M{"post_id": id, "user_id": uid})
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicate
		}
		if _, err := s.likes.InsertOne(ctx, models.BlogLike{
			ID:        primitive.NewObjectID(),
			PostID:    id,
			UserID:    uid,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			if wafflemongo.IsDup(err) {
				return ErrDuplicate
			}
			return err
		}
		res, err := s.posts.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"likes": 1}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Unlike removes uid's like and decrements the counter.
func (s *Store) Unlike(ctx context.Context, id, uid primitive.ObjectID) error {
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		res, err := s.likes.DeleteOne(ctx, bson.M{"post_id": id, "user_id": uid})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotLiked
		}
		_, err = s.posts.UpdateOne(ctx,
			bson.M{"_id": id, "likes": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"likes": -1}})
		return err
	})
}

func (s *Store) HasLiked(ctx context.Context, id, uid primitive.ObjectID) (bool, error) {
	n, err := s.likes.CountDocuments(ctx, bson.M{"post_id": id, "user_id": uid})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Comments                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// AddComment stores a plain-text comment and bumps comment_count.
func (s *Store) AddComment(ctx context.Context, postID, author primitive.ObjectID, content string) (models.BlogComment, error) {
	content = strings.TrimSpace(htmlsanitize.StripTags(content))
	if content == "" {
		return models.BlogComment{}, ErrEmpty
	}
	c := models.BlogComment{
		ID:        primitive.NewObjectID(),
		PostID:    postID,
		AuthorID:  author,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	err := txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		res, err := s.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{"$inc": bson.M{"comment_count": 1}})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrNotFound
		}
		_, err = s.comments.InsertOne(ctx, c)
		return err
	})
	if err != nil {
		return models.BlogComment{}, err
	}
	return c, nil
}

// DeleteComment removes a comment. The author or an admin may delete.
func (s *Store) DeleteComment(ctx context.Context, id, actor primitive.ObjectID, admin bool) error {
	var c models.BlogComment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCommentNotFound
		}
		return err
	}
	if c.AuthorID != actor && !admin {
		return ErrNotAuthor
	}
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.comments.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return err
		}
		_, err := s.posts.UpdateOne(ctx,
			bson.M{"_id": c.PostID, "comment_count": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"comment_count": -1}})
		return err
	})
}

// ListComments returns a post's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, postID primitive.ObjectID) ([]models.BlogComment, error) {
	cur, err := s.comments.Find(ctx, bson.M{"post_id": postID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.BlogComment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
