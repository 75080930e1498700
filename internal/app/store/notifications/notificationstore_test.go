package notificationstore

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/hotspot/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotify_ListAndUnread(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	alice, bob, sender := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	if err := store.Notify(ctx, []primitive.ObjectID{alice, bob}, sender, models.NotifyJoinRequest, "wants to join", nil); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Notification{RecipientID: alice, SenderID: sender, Type: models.NotifyAccepted, Message: "ok"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, more, err := store.ListForUser(ctx, alice, paging.Page{Limit: 10})
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 2 || more {
		t.Fatalf("len=%d more=%v, want 2/false", len(list), more)
	}
	if list[0].Type != models.NotifyAccepted {
		t.Errorf("expected newest first, got %q", list[0].Type)
	}

	n, err := store.UnreadCount(ctx, alice)
	if err != nil || n != 2 {
		t.Errorf("UnreadCount = %d, %v; want 2", n, err)
	}
}

func TestMarkRead_OnlyRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	owner := primitive.NewObjectID()
	n, err := store.Create(ctx, models.Notification{RecipientID: owner, Type: models.NotifyRoleUpdated})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkRead(ctx, n.ID, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger MarkRead err = %v, want ErrNotFound", err)
	}
	if err := store.MarkRead(ctx, n.ID, owner); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if c, _ := store.UnreadCount(ctx, owner); c != 0 {
		t.Errorf("UnreadCount = %d, want 0", c)
	}
}

func TestMarkAllRead_AndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	owner := primitive.NewObjectID()
	if err := store.Notify(ctx, []primitive.ObjectID{owner, owner, owner}, primitive.NewObjectID(), models.NotifyAccepted, "x", nil); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	changed, err := store.MarkAllRead(ctx, owner)
	if err != nil || changed != 3 {
		t.Fatalf("MarkAllRead = %d, %v; want 3", changed, err)
	}

	list, _, err := store.ListForUser(ctx, owner, paging.Page{})
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if err := store.Delete(ctx, list[0].ID, primitive.NewObjectID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("stranger Delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, list[0].ID, owner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	list, _, _ = store.ListForUser(ctx, owner, paging.Page{})
	if len(list) != 2 {
		t.Errorf("len = %d after delete, want 2", len(list))
	}
}

func TestPruneRead_KeepsUnread(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := New(db)
	uid, sender := primitive.NewObjectID(), primitive.NewObjectID()

	read, err := store.Create(ctx, models.Notification{RecipientID: uid, SenderID: sender, Type: models.NotifyAccepted, Message: "old"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Notification{RecipientID: uid, SenderID: sender, Type: models.NotifyRejected, Message: "unread"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.MarkRead(ctx, read.ID, uid); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}

	n, err := store.PruneRead(ctx, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("PruneRead failed: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned: got %d, want 1", n)
	}
	left, _, _ := store.ListForUser(ctx, uid, paging.Page{})
	if len(left) != 1 || left[0].Read {
		t.Errorf("expected only the unread notification to remain, got %+v", left)
	}
}
