package likes_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/likes"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/hotspot/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToggle_TwiceRestoresState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fixtures.CreateUser(ctx, "Ada Lovelace", "ada@campus.edu")
	liker := primitive.NewObjectID()
	post := fixtures.CreatePost(ctx, author.ID, "hello")
	c := db.Collection(collections.Posts)

	st, err := likes.Toggle(ctx, c, post.ID, liker)
	if err != nil {
		t.Fatalf("first Toggle failed: %v", err)
	}
	if !st.Liked || st.Count != 1 {
		t.Errorf("after like: %+v, want liked with count 1", st)
	}

	st, err = likes.Toggle(ctx, c, post.ID, liker)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if st.Liked || st.Count != 0 {
		t.Errorf("after unlike: %+v, want not liked with count 0", st)
	}

	var got models.Post
	if err := c.FindOne(ctx, bson.M{"_id": post.ID}).Decode(&got); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(got.Likes) != 0 || got.LikeCount != 0 {
		t.Errorf("post not restored: likes=%v count=%d", got.Likes, got.LikeCount)
	}
}

func TestToggle_CountMatchesLikers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	post := fixtures.CreatePost(ctx, primitive.NewObjectID(), "popular")
	c := db.Collection(collections.Posts)

	for i := 0; i < 3; i++ {
		if _, err := likes.Toggle(ctx, c, post.ID, primitive.NewObjectID()); err != nil {
			t.Fatalf("Toggle %d failed: %v", i, err)
		}
	}

	var got models.Post
	if err := c.FindOne(ctx, bson.M{"_id": post.ID}).Decode(&got); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.LikeCount != 3 || len(got.Likes) != 3 {
		t.Errorf("like_count=%d likes=%d, want 3/3", got.LikeCount, len(got.Likes))
	}
}

func TestToggle_MissingDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := likes.Toggle(ctx, db.Collection(collections.Posts), primitive.NewObjectID(), primitive.NewObjectID())
	if !errors.Is(err, likes.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
