package blogstore_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	blogstore "github.com/dalemusser/hotspot/internal/app/store/blog"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreatePost_AdminOnlyAndSanitized(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := primitive.NewObjectID()
	in := blogstore.PostInput{
		Title:   "Welcome Week",
		Content: `<p>Hello <b>campus</b></p><script>alert(1)</script>`,
	}

	if _, err := store.CreatePost(ctx, author, false, in); !errors.Is(err, blogstore.ErrForbidden) {
		t.Fatalf("non-admin CreatePost err = %v, want ErrForbidden", err)
	}

	p, err := store.CreatePost(ctx, author, true, in)
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if strings.Contains(p.Content, "<script>") {
		t.Errorf("content not sanitized: %q", p.Content)
	}
	if !strings.Contains(p.Content, "<b>campus</b>") {
		t.Errorf("safe markup lost: %q", p.Content)
	}
	if p.Excerpt != "Hello campus" {
		t.Errorf("excerpt = %q", p.Excerpt)
	}
	if p.TitleCI != "welcome week" {
		t.Errorf("title_ci = %q", p.TitleCI)
	}

	list, more, err := store.ListPosts(ctx, paging.Page{})
	if err != nil || len(list) != 1 || more {
		t.Errorf("ListPosts = %d more=%v err=%v", len(list), more, err)
	}

	upd, err := store.UpdatePost(ctx, p.ID, true, blogstore.PostInput{Title: "Welcome Week 2", Content: "plain text"})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if upd.Title != "Welcome Week 2" || upd.Content != "<p>plain text</p>" {
		t.Errorf("updated post = %q / %q", upd.Title, upd.Content)
	}
}

func TestIncrementLikes_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateBlogPost(ctx, primitive.NewObjectID(), "Counter")

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementLikes(ctx, p.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("IncrementLikes failed: %v", err)
	}

	got, err := store.GetPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Likes != 3 {
		t.Errorf("likes = %d, want 3", got.Likes)
	}
}

func TestLikeUnlike(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateBlogPost(ctx, primitive.NewObjectID(), "Likes")
	u := primitive.NewObjectID()

	if err := store.Like(ctx, p.ID, u); err != nil {
		t.Fatalf("Like failed: %v", err)
	}
	if err := store.Like(ctx, p.ID, u); !errors.Is(err, blogstore.ErrDuplicate) {
		t.Errorf("second Like err = %v, want ErrDuplicate", err)
	}
	if ok, _ := store.HasLiked(ctx, p.ID, u); !ok {
		t.Error("HasLiked = false after Like")
	}
	got, _ := store.GetPost(ctx, p.ID)
	if got.Likes != 1 {
		t.Errorf("likes = %d, want 1", got.Likes)
	}

	if err := store.Unlike(ctx, p.ID, u); err != nil {
		t.Fatalf("Unlike failed: %v", err)
	}
	if err := store.Unlike(ctx, p.ID, u); !errors.Is(err, blogstore.ErrNotLiked) {
		t.Errorf("second Unlike err = %v, want ErrNotLiked", err)
	}
	got, _ = store.GetPost(ctx, p.ID)
	if got.Likes != 0 {
		t.Errorf("likes = %d, want 0", got.Likes)
	}

	if err := store.Like(ctx, primitive.NewObjectID(), u); !errors.Is(err, blogstore.ErrNotFound) {
		t.Errorf("Like on missing post err = %v", err)
	}
	if ok, _ := store.HasLiked(ctx, p.ID, u); ok {
		t.Error("failed Like on a missing post must not leave a like behind")
	}
}

func TestCommentsAndDeleteCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fx.CreateBlogPost(ctx, primitive.NewObjectID(), "Discuss")
	reader, other := primitive.NewObjectID(), primitive.NewObjectID()

	c, err := store.AddComment(ctx, p.ID, reader, "great read")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if _, err := store.AddComment(ctx, primitive.NewObjectID(), reader, "x"); !errors.Is(err, blogstore.ErrNotFound) {
		t.Errorf("AddComment on missing post err = %v", err)
	}
	got, _ := store.GetPost(ctx, p.ID)
	if got.CommentCount != 1 {
		t.Errorf("comment_count = %d, want 1", got.CommentCount)
	}

	if err := store.DeleteComment(ctx, c.ID, other, false); !errors.Is(err, blogstore.ErrNotAuthor) {
		t.Errorf("DeleteComment by other err = %v", err)
	}
	if err := store.DeleteComment(ctx, c.ID, reader, false); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}
	got, _ = store.GetPost(ctx, p.ID)
	if got.CommentCount != 0 {
		t.Errorf("comment_count = %d, want 0", got.CommentCount)
	}

	if _, err := store.AddComment(ctx, p.ID, reader, "again"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if err := store.Like(ctx, p.ID, reader); err != nil {
		t.Fatalf("Like failed: %v", err)
	}

	if err := store.DeletePost(ctx, p.ID, false); !errors.Is(err, blogstore.ErrForbidden) {
		t.Errorf("non-admin DeletePost err = %v", err)
	}
	if err := store.DeletePost(ctx, p.ID, true); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	for _, coll := range []string{collections.BlogPostLikes, collections.BlogPostComments} {
		n, err := db.Collection(coll).CountDocuments(ctx, bson.M{"post_id": p.ID})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("%s still has %d docs", coll, n)
		}
	}
}
