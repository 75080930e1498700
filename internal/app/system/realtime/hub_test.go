package realtime_test

import (
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/system/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func recv(t *testing.T, s *realtime.Subscription) (realtime.Event, bool) {
	t.Helper()
	select {
	case e, ok := <-s.C:
		return e, ok
	case <-time.After(2 * time.Second):
		t.Fatalf("no event for %s", s.Topic)
		return realtime.Event{}, false
	}
}

func none(t *testing.T, s *realtime.Subscription) {
	t.Helper()
	select {
	case e, ok := <-s.C:
		if ok {
			t.Fatalf("unexpected event on %s: %+v", s.Topic, e)
		}
	default:
	}
}

func TestTopic_Matches(t *testing.T) {
	gid := primitive.NewObjectID()
	uid := primitive.NewObjectID()
	created := realtime.Event{
		Collection: "groupPosts",
		Op:         realtime.Created,
		ID:         primitive.NewObjectID(),
		Doc:        bson.M{"group_id": gid, "likes": primitive.A{uid}, "content": "hi"},
	}

	assert.True(t, realtime.Topic{Collection: "groupPosts"}.Matches(created))
	assert.True(t, realtime.Topic{Collection: "groupPosts", Field: "group_id", Value: gid.Hex()}.Matches(created))
	assert.True(t, realtime.Topic{Collection: "groupPosts", Field: "likes", Value: uid.Hex()}.Matches(created))
	assert.True(t, realtime.Topic{Collection: "groupPosts", Field: "_id", Value: created.ID.Hex()}.Matches(created))
	assert.False(t, realtime.Topic{Collection: "posts"}.Matches(created))
	assert.False(t, realtime.Topic{Collection: "groupPosts", Field: "group_id", Value: uid.Hex()}.Matches(created))

	deleted := realtime.Event{Collection: "groupPosts", Op: realtime.Deleted, ID: created.ID}
	assert.True(t, realtime.Topic{Collection: "groupPosts"}.Matches(deleted))
	assert.True(t, realtime.Topic{Collection: "groupPosts", Field: "_id", Value: created.ID.Hex()}.Matches(deleted))
	assert.False(t, realtime.Topic{Collection: "groupPosts", Field: "group_id", Value: gid.Hex()}.Matches(deleted))
}

func TestHub_FanOutAndClose(t *testing.T) {
	hub := realtime.NewHub(4)
	gid := primitive.NewObjectID()

	all := hub.Subscribe(realtime.Topic{Collection: "groups"})
	one := hub.Subscribe(realtime.Topic{Collection: "groups", Field: "_id", Value: gid.Hex()})
	other := hub.Subscribe(realtime.Topic{Collection: "forums"})
	require.Equal(t, 3, hub.Len())

	hub.Publish(realtime.Event{Collection: "groups", Op: realtime.Updated, ID: gid, Doc: bson.M{"name": "x"}})

	e, ok := recv(t, all)
	require.True(t, ok)
	assert.Equal(t, gid, e.ID)
	e, ok = recv(t, one)
	require.True(t, ok)
	assert.Equal(t, realtime.Updated, e.Op)
	none(t, other)

	one.Close()
	one.Close()
	_, ok = <-one.C
	assert.False(t, ok, "closed subscription channel must be closed")
	assert.Equal(t, 2, hub.Len())

	hub.Close()
	_, ok = <-all.C
	assert.False(t, ok)
	assert.Zero(t, hub.Len())

	late := hub.Subscribe(realtime.Topic{Collection: "groups"})
	_, ok = <-late.C
	assert.False(t, ok, "subscriptions after Close are born closed")
}

func TestHub_DropsSlowSubscribers(t *testing.T) {
	hub := realtime.NewHub(2)
	slow := hub.Subscribe(realtime.Topic{Collection: "posts"})
	fast := hub.Subscribe(realtime.Topic{Collection: "posts"})

	for i := 0; i < 3; i++ {
		hub.Publish(realtime.Event{Collection: "posts", Op: realtime.Created, ID: primitive.NewObjectID()})
		if i < 2 {
			_, ok := recv(t, fast)
			require.True(t, ok)
		}
	}

	// slow never read: two buffered events, then the channel is closed.
	n := 0
	for range slow.C {
		n++
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, hub.Len())

	_, ok := recv(t, fast)
	assert.True(t, ok, "fast subscriber keeps receiving")
}
