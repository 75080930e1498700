// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each index set is idempotent: indexes that
already exist under the desired name are reused. Problems are aggregated so
every failing collection is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db lungo.IDatabase) error {
	var problems []string

	for _, set := range desired() {
		if err := ensureIndexSet(ctx, db.Collection(set.coll), set.models); err != nil {
			problems = append(problems, set.coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type indexSet struct {
	coll   string
	models []mongo.IndexModel
}

func idx(name string, unique bool, keys ...bson.E) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: bson.D(keys), Options: opts}
}

func asc(k string) bson.E  { return bson.E{Key: k, Value: 1} }
func desc(k string) bson.E { return bson.E{Key: k, Value: -1} }

func desired() []indexSet {
	return []indexSet{
		{collections.Users, []mongo.IndexModel{
			// login and duplicate checks go through the folded email
			idx("uniq_users_emailci", true, asc("email_ci")),
			idx("idx_users_fullnameci", false, asc("full_name_ci")),
		}},
		{collections.Groups, []mongo.IndexModel{
			idx("idx_groups_nameci", false, asc("name_ci")),
			idx("idx_groups_lastactivity", false, desc("last_activity")),
			idx("idx_groups_members", false, asc("members")),
		}},
		{collections.Forums, []mongo.IndexModel{
			idx("idx_forums_nameci", false, asc("name_ci")),
		}},
		{collections.ForumMembers, []mongo.IndexModel{
			idx("uniq_forummembers_forum_user", true, asc("forum_id"), asc("user_id")),
			idx("idx_forummembers_user", false, asc("user_id")),
		}},
		{collections.ForumThreads, []mongo.IndexModel{
			idx("idx_forumthreads_forum_id", false, asc("forum_id"), desc("_id")),
		}},
		{collections.Posts, []mongo.IndexModel{
			idx("idx_posts_contentci", false, asc("content_ci")),
			idx("idx_posts_author", false, asc("author_id")),
		}},
		{collections.Comments, []mongo.IndexModel{
			idx("idx_comments_post_created", false, asc("post_id"), asc("created_at")),
			idx("idx_comments_parent", false, asc("parent_id")),
		}},
		{collections.GroupPosts, []mongo.IndexModel{
			idx("idx_groupposts_group_id", false, asc("group_id"), desc("_id")),
			idx("idx_groupposts_contentci", false, asc("content_ci")),
		}},
		{collections.GroupPostComments, []mongo.IndexModel{
			idx("idx_grouppostcomments_post_created", false, asc("post_id"), asc("created_at")),
			idx("idx_grouppostcomments_group", false, asc("group_id")),
		}},
		{collections.Notifications, []mongo.IndexModel{
			idx("idx_notifications_recipient_id", false, asc("recipient_id"), desc("_id")),
			idx("idx_notifications_recipient_read", false, asc("recipient_id"), asc("read")),
		}},
		{collections.ConnectionReqs, []mongo.IndexModel{
			idx("idx_connreqs_owner_status", false, asc("owner_id"), asc("status")),
			idx("idx_connreqs_from_to", false, asc("from_id"), asc("to_id")),
		}},
		{collections.Connections, []mongo.IndexModel{
			idx("uniq_connections_owner_user", true, asc("owner_id"), asc("user_id")),
		}},
		{collections.BlogPosts, []mongo.IndexModel{
			idx("idx_blogposts_titleci", false, asc("title_ci")),
		}},
		{collections.BlogPostLikes, []mongo.IndexModel{
			idx("uniq_blogpostlikes_post_user", true, asc("post_id"), asc("user_id")),
		}},
		{collections.BlogPostComments, []mongo.IndexModel{
			idx("idx_blogpostcomments_post", false, asc("post_id"), asc("created_at")),
		}},
		{collections.Products, []mongo.IndexModel{
			idx("idx_products_nameci", false, asc("name_ci")),
			idx("idx_products_category", false, asc("category")),
		}},
		{collections.OAuthStates, []mongo.IndexModel{
			idx("uniq_oauthstates_state", true, asc("state")),
			idx("idx_oauthstates_expires", false, asc("expires_at")),
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name string `bson:"name"`
	Key  bson.D `bson:"key"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func ensureIndexSet(ctx context.Context, coll lungo.ICollection, models []mongo.IndexModel) error {
	existing := map[string]bool{}
	if cur, err := coll.Indexes().List(ctx); err == nil {
		for cur.Next(ctx) {
			var ix existingIndex
			if err := cur.Decode(&ix); err != nil {
				zap.L().Warn("failed to decode existing index",
					zap.String("collection", coll.Name()),
					zap.Error(err))
				continue
			}
			existing[ix.Name] = true
		}
		_ = cur.Close(ctx)
	}

	var errs []string
	for _, m := range models {
		name := *m.Options.Name
		sig := keySig(m.Keys.(bson.D))
		if existing[name] {
			zap.L().Debug("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", name))
			continue
		}

		start := time.Now()
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}
