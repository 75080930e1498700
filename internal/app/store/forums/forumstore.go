package forumstore

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

var (
	ErrNotFound         = apperr.New(apperr.NotFound, "forum not found")
	ErrThreadNotFound   = apperr.New(apperr.NotFound, "thread not found")
	ErrAlreadyMember    = apperr.New(apperr.Duplicate, "already a forum member")
	ErrNotMember        = apperr.New(apperr.Forbidden, "only forum members can do that")
	ErrNotOwner         = apperr.New(apperr.Forbidden, "only the forum owner can do that")
	ErrForbidden        = apperr.New(apperr.Forbidden, "not allowed to change this thread")
	ErrOwnerCannotLeave = apperr.New(apperr.Invalid, "the forum owner cannot leave")
	ErrNameRequired     = apperr.New(apperr.Invalid, "name is required")
	ErrTitleRequired    = apperr.New(apperr.Invalid, "title and content are required")
)

type Store struct {
	db      lungo.IDatabase
	forums  lungo.ICollection
	members lungo.ICollection
	threads lungo.ICollection
}

func New(db lungo.IDatabase) *Store {
	return &Store{
		db:      db,
		forums:  db.Collection(collections.Forums),
		members: db.Collection(collections.ForumMembers),
		threads: db.Collection(collections.ForumThreads),
	}
}

// Create makes a forum with the creator recorded as its owner member.
func (s *Store) Create(ctx context.Context, owner primitive.ObjectID, name, desc string) (models.Forum, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Forum{}, ErrNameRequired
	}
	now := time.Now().UTC()
	f := models.Forum{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: strings.TrimSpace(desc),
		OwnerID:     owner,
		MemberCount: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.forums.InsertOne(ctx, f); err != nil {
			return fmt.Errorf("insert forum: %w", err)
		}
		_, err := s.members.InsertOne(ctx, models.ForumMember{
			ID:       primitive.NewObjectID(),
			ForumID:  f.ID,
			UserID:   owner,
			Role:     models.ForumRoleOwner,
			JoinedAt: now,
		})
		return err
	})
	if err != nil {
		return models.Forum{}, err
	}
	return f, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Forum, error) {
	var f models.Forum
	if err := s.forums.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Forum{}, ErrNotFound
		}
		return models.Forum{}, err
	}
	return f, nil
}

// List returns forums ordered by name.
func (s *Store) List(ctx context.Context, limit int64) ([]models.Forum, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.forums.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Forum{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a forum with its members and threads. Owner only.
func (s *Store) Delete(ctx context.Context, id, actor primitive.ObjectID) error {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f.OwnerID != actor {
		return ErrNotOwner
	}
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.threads.DeleteMany(ctx, bson.M{"forum_id": id}); err != nil {
			return fmt.Errorf("delete threads: %w", err)
		}
		if _, err := s.members.DeleteMany(ctx, bson.M{"forum_id": id}); err != nil {
			return fmt.Errorf("delete members: %w", err)
		}
		_, err := s.forums.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| Membership                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Join adds uid as a member. The unique (forum_id, user_id) index turns a
// concurrent double join into ErrAlreadyMember.
func (s *Store) Join(ctx context.Context, id, uid primitive.ObjectID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		n, err := s.members.CountDocuments(ctx, bson.M{"forum_id": id, "user_id": uid})
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyMember
		}
		if _, err := s.members.InsertOne(ctx, models.ForumMember{
			ID:       primitive.NewObjectID(),
			ForumID:  id,
			UserID:   uid,
			Role:     models.ForumRoleMember,
			JoinedAt: time.Now().UTC(),
		}); err != nil {
			if wafflemongo.IsDup(err) {
				return ErrAlreadyMember
			}
			return err
		}
		_, err = s.forums.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"member_count": 1}})
		return err
	})
}

// Leave removes uid's membership. The owner cannot leave.
func (s *Store) Leave(ctx context.Context, id, uid primitive.ObjectID) error {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if f.OwnerID == uid {
		return ErrOwnerCannotLeave
	}
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		res, err := s.members.DeleteOne(ctx, bson.M{"forum_id": id, "user_id": uid})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return ErrNotMember
		}
		_, err = s.forums.UpdateOne(ctx,
			bson.M{"_id": id, "member_count": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"member_count": -1}})
		return err
	})
}

func (s *Store) IsMember(ctx context.Context, id, uid primitive.ObjectID) (bool, error) {
	n, err := s.members.CountDocuments(ctx, bson.M{"forum_id": id, "user_id": uid})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Members lists a forum's memberships in join order.
func (s *Store) Members(ctx context.Context, id primitive.ObjectID) ([]models.ForumMember, error) {
	cur, err := s.members.Find(ctx, bson.M{"forum_id": id},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.ForumMember{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Threads                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateThread opens a thread. Members only.
func (s *Store) CreateThread(ctx context.Context, forumID, author primitive.ObjectID, title, content string) (models.ForumThread, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		return models.ForumThread{}, ErrTitleRequired
	}
	if _, err := s.GetByID(ctx, forumID); err != nil {
		return models.ForumThread{}, err
	}
	ok, err := s.IsMember(ctx, forumID, author)
	if err != nil {
		return models.ForumThread{}, err
	}
	if !ok {
		return models.ForumThread{}, ErrNotMember
	}

	now := time.Now().UTC()
	t := models.ForumThread{
		ID:        primitive.NewObjectID(),
		ForumID:   forumID,
		Title:     title,
		TitleCI:   text.Fold(title),
		Content:   htmlsanitize.PrepareForStorage(content),
		AuthorID:  author,
		Replies:   []models.ThreadReply{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.threads.InsertOne(ctx, t); err != nil {
			return fmt.Errorf("insert thread: %w", err)
		}
		_, err := s.forums.UpdateOne(ctx, bson.M{"_id": forumID}, bson.M{
			"$inc": bson.M{"thread_count": 1},
			"$set": bson.M{"updated_at": now},
		})
		return err
	})
	if err != nil {
		return models.ForumThread{}, err
	}
	return t, nil
}

// ListThreads returns a page of threads without their replies, newest first.
func (s *Store) ListThreads(ctx context.Context, forumID primitive.ObjectID, page paging.Page) ([]models.ForumThread, bool, error) {
	filter, opts := page.Apply(bson.M{"forum_id": forumID})
	opts.SetProjection(bson.M{"replies": 0})
	cur, err := s.threads.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	out := []models.ForumThread{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, false, err
	}
	return out, paging.TrimPage(&out, page.Normalize().Limit), nil
}

func (s *Store) GetThread(ctx context.Context, id primitive.ObjectID) (models.ForumThread, error) {
	var t models.ForumThread
	if err := s.threads.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ForumThread{}, ErrThreadNotFound
		}
		return models.ForumThread{}, err
	}
	return t, nil
}

// ReplyToThread appends a reply to the thread. Members only.
func (s *Store) ReplyToThread(ctx context.Context, threadID, author primitive.ObjectID, content string) (models.ThreadReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.ThreadReply{}, ErrTitleRequired
	}
	t, err := s.GetThread(ctx, threadID)
	if err != nil {
		return models.ThreadReply{}, err
	}
	ok, err := s.IsMember(ctx, t.ForumID, author)
	if err != nil {
		return models.ThreadReply{}, err
	}
	if !ok {
		return models.ThreadReply{}, ErrNotMember
	}

	r := models.ThreadReply{
		ID:        primitive.NewObjectID(),
		AuthorID:  author,
		Content:   htmlsanitize.PrepareForStorage(content),
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.threads.UpdateOne(ctx, bson.M{"_id": threadID}, bson.M{
		"$push": bson.M{"replies": r},
		"$inc":  bson.M{"reply_count": 1},
		"$set":  bson.M{"updated_at": r.CreatedAt},
	})
	if err != nil {
		return models.ThreadReply{}, err
	}
	if res.MatchedCount == 0 {
		return models.ThreadReply{}, ErrThreadNotFound
	}
	return r, nil
}

// DeleteThread removes a thread. The author or the forum owner may do it.
func (s *Store) DeleteThread(ctx context.Context, threadID, actor primitive.ObjectID) error {
	t, err := s.GetThread(ctx, threadID)
	if err != nil {
		return err
	}
	if t.AuthorID != actor {
		f, err := s.GetByID(ctx, t.ForumID)
		if err != nil {
			return err
		}
		if f.OwnerID != actor {
			return ErrForbidden
		}
	}
	return txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		if _, err := s.threads.DeleteOne(ctx, bson.M{"_id": threadID}); err != nil {
			return err
		}
		_, err := s.forums.UpdateOne(ctx,
			bson.M{"_id": t.ForumID, "thread_count": bson.M{"$gt": 0}},
			bson.M{"$inc": bson.M{"thread_count": -1}})
		return err
	})
}
