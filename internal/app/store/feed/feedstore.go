// Package feedstore stores posts and their comments for the two feeds:
// the home feed (posts/comments) and per-group feeds
// (groupPosts/groupPostComments). Both share one contract; group feeds
// additionally require membership and stamp the group's last_activity.
package feedstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	groupstore "github.com/dalemusser/hotspot/internal/app/store/groups"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/likes"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/txn"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrPostNotFound    = apperr.New(apperr.NotFound, "post not found")
	ErrCommentNotFound = apperr.New(apperr.NotFound, "comment not found")
	ErrForbidden       = apperr.New(apperr.Forbidden, "not allowed to change this content")
	ErrNotMember       = apperr.New(apperr.Forbidden, "only group members can take part in this feed")
	ErrNestedReply     = apperr.New(apperr.Invalid, "replies can only answer top-level comments")
	ErrEmptyContent    = apperr.New(apperr.Invalid, "content is required")
)

// Store serves one feed.
type Store struct {
	db       lungo.IDatabase
	posts    lungo.ICollection
	comments lungo.ICollection
	groups   *groupstore.Store // nil for the home feed
}

// NewHome returns the home feed store.
func NewHome(db lungo.IDatabase) *Store {
	return &Store{
		db:       db,
		posts:    db.Collection(collections.Posts),
		comments: db.Collection(collections.Comments),
	}
}

// NewGroup returns the group feed store.
func NewGroup(db lungo.IDatabase) *Store {
	return &Store{
		db:       db,
		posts:    db.Collection(collections.GroupPosts),
		comments: db.Collection(collections.GroupPostComments),
		groups:   groupstore.New(db),
	}
}

// IsGroupFeed reports whether the store serves group feeds.
func (s *Store) IsGroupFeed() bool { return s.groups != nil }

/*─────────────────────────────────────────────────────────────────────────────*
| Posts                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// CreatePost publishes a post with no likes and zero counters. In a group
// feed the author must be a member and the group's activity is stamped in
// the same transaction.
func (s *Store) CreatePost(ctx context.Context, groupID, author primitive.ObjectID, content, image string) (models.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" && image == "" {
		return models.Post{}, ErrEmptyContent
	}
	if err := s.requireMember(ctx, groupID, author); err != nil {
		return models.Post{}, err
	}

	now := time.Now().UTC()
	p := models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  author,
		Content:   content,
		ContentCI: text.Fold(content),
		Image:     image,
		Likes:     []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.groups != nil {
		p.GroupID = groupID
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.posts.InsertOne(ctx, p); err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		return s.touch(ctx, groupID)
	})
	if err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListPosts returns a page of posts, newest first. groupID is ignored on the
// home feed.
func (s *Store) ListPosts(ctx context.Context, groupID primitive.ObjectID, page paging.Page) ([]models.Post, bool, error) {
	filter := bson.M{}
	if s.groups != nil {
		filter["group_id"] = groupID
	}
	filter, opts := page.Apply(filter)
	cur, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	out := []models.Post{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, false, err
	}
	return out, paging.TrimPage(&out, page.Normalize().Limit), nil
}

// GetPost loads one post.
func (s *Store) GetPost(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.posts.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}
	return p, nil
}

// ToggleLike flips uid's like on a post. In a group feed only members may
// like, and the group's activity is stamped.
func (s *Store) ToggleLike(ctx context.Context, postID, uid primitive.ObjectID) (likes.State, error) {
	var groupID primitive.ObjectID
	if s.groups != nil {
		p, err := s.GetPost(ctx, postID)
		if err != nil {
			return likes.State{}, err
		}
		if err := s.requireMember(ctx, p.GroupID, uid); err != nil {
			return likes.State{}, err
		}
		groupID = p.GroupID
	}
	st, err := likes.Toggle(ctx, s.posts, postID, uid)
	if errors.Is(err, likes.ErrNotFound) {
		return likes.State{}, ErrPostNotFound
	}
	if err != nil {
		return likes.State{}, err
	}
	if err := s.touch(ctx, groupID); err != nil {
		return st, err
	}
	return st, nil
}

// DeletePost removes a post and every comment on it. The author may delete
// a post; in a group feed so may any group admin.
func (s *Store) DeletePost(ctx context.Context, postID, actor primitive.ObjectID) error {
	p, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.canModerate(ctx, p.GroupID, p.AuthorID, actor); err != nil {
		return err
	}

	return s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.comments.DeleteMany(ctx, bson.M{"post_id": postID}); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if _, err := s.posts.DeleteOne(ctx, bson.M{"_id": postID}); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Comments                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// AddComment adds a top-level comment and increments the post's comment_count.
func (s *Store) AddComment(ctx context.Context, postID, author primitive.ObjectID, content string) (models.Comment, error) {
	return s.addComment(ctx, postID, nil, author, content)
}

// AddReply answers a top-level comment. Only the parent's reply_count moves;
// the post's comment_count counts top-level comments.
func (s *Store) AddReply(ctx context.Context, postID, parentID, author primitive.ObjectID, content string) (models.Comment, error) {
	return s.addComment(ctx, postID, &parentID, author, content)
}

func (s *Store) addComment(ctx context.Context, postID primitive.ObjectID, parentID *primitive.ObjectID, author primitive.ObjectID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyContent
	}
	p, err := s.GetPost(ctx, postID)
	if err != nil {
		return models.Comment{}, err
	}
	if err := s.requireMember(ctx, p.GroupID, author); err != nil {
		return models.Comment{}, err
	}
	if parentID != nil {
		parent, err := s.GetComment(ctx, *parentID)
		if err != nil {
			return models.Comment{}, err
		}
		if parent.PostID != postID {
			return models.Comment{}, ErrCommentNotFound
		}
		if parent.IsReply() {
			return models.Comment{}, ErrNestedReply
		}
	}

	c := models.Comment{
		ID:        primitive.NewObjectID(),
		GroupID:   p.GroupID,
		PostID:    postID,
		ParentID:  parentID,
		AuthorID:  author,
		Content:   content,
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now().UTC(),
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.comments.InsertOne(ctx, c); err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		if parentID != nil {
			_, err := s.comments.UpdateOne(ctx, bson.M{"_id": *parentID}, bson.M{"$inc": bson.M{"reply_count": 1}})
			return err
		}
		if _, err := s.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
			"$inc": bson.M{"comment_count": 1},
			"$set": bson.M{"updated_at": c.CreatedAt},
		}); err != nil {
			return fmt.Errorf("bump comment_count: %w", err)
		}
		return s.touch(ctx, p.GroupID)
	})
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

// GetComment loads one comment.
func (s *Store) GetComment(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var c models.Comment
	if err := s.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrCommentNotFound
		}
		return models.Comment{}, err
	}
	return c, nil
}

// ListComments returns every comment and reply on a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID primitive.ObjectID) ([]models.Comment, error) {
	cur, err := s.comments.Find(ctx, bson.M{"post_id": postID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Comment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EditComment replaces the content of the author's own comment.
func (s *Store) EditComment(ctx context.Context, id, author primitive.ObjectID, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, ErrEmptyContent
	}
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return models.Comment{}, err
	}
	if c.AuthorID != author {
		return models.Comment{}, ErrForbidden
	}

	now := time.Now().UTC()
	if _, err := s.comments.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"content":   content,
		"edited_at": now,
	}}); err != nil {
		return models.Comment{}, err
	}
	if err := s.touch(ctx, c.GroupID); err != nil {
		return models.Comment{}, err
	}
	c.Content = content
	c.EditedAt = &now
	return c, nil
}

// DeleteComment removes the author's own comment. Deleting a top-level
// comment removes its replies and decrements the post's comment_count;
// deleting a reply decrements its parent's reply_count. The group's
// activity is stamped in the same transaction.
func (s *Store) DeleteComment(ctx context.Context, id, author primitive.ObjectID) error {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID != author {
		return ErrForbidden
	}

	return s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.comments.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		if c.IsReply() {
			if _, err := s.comments.UpdateOne(ctx,
				bson.M{"_id": *c.ParentID, "reply_count": bson.M{"$gt": 0}},
				bson.M{"$inc": bson.M{"reply_count": -1}}); err != nil {
				return err
			}
			return s.touch(ctx, c.GroupID)
		}
		if _, err := s.comments.DeleteMany(ctx, bson.M{"parent_id": id}); err != nil {
			return fmt.Errorf("delete replies: %w", err)
		}
		if _, err := s.posts.UpdateOne(ctx,
			bson.M{"_id": c.PostID, "comment_count": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"comment_count": -1}}); err != nil {
			return err
		}
		return s.touch(ctx, c.GroupID)
	})
}

// ToggleCommentLike flips uid's like on a comment.
func (s *Store) ToggleCommentLike(ctx context.Context, id, uid primitive.ObjectID) (likes.State, error) {
	if s.groups != nil {
		c, err := s.GetComment(ctx, id)
		if err != nil {
			return likes.State{}, err
		}
		if err := s.requireMember(ctx, c.GroupID, uid); err != nil {
			return likes.State{}, err
		}
	}
	st, err := likes.Toggle(ctx, s.comments, id, uid)
	if errors.Is(err, likes.ErrNotFound) {
		return likes.State{}, ErrCommentNotFound
	}
	return st, err
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Store) tx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txn.Run(ctx, s.db, zap.L(), fn)
}

func (s *Store) touch(ctx context.Context, groupID primitive.ObjectID) error {
	if s.groups == nil || groupID.IsZero() {
		return nil
	}
	return s.groups.TouchActivity(ctx, groupID)
}

// requireMember refuses uid unless it belongs to the group. Home feeds are
// open to everyone.
func (s *Store) requireMember(ctx context.Context, groupID, uid primitive.ObjectID) error {
	if s.groups == nil {
		return nil
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.IsMember(uid) {
		return ErrNotMember
	}
	return nil
}

func (s *Store) canModerate(ctx context.Context, groupID, author, actor primitive.ObjectID) error {
	if author == actor {
		return nil
	}
	if s.groups == nil || groupID.IsZero() {
		return ErrForbidden
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.IsAdmin(actor) {
		return ErrForbidden
	}
	return nil
}
