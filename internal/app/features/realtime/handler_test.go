package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	rtfeature "github.com/dalemusser/hotspot/internal/app/features/realtime"
	groupstore "github.com/dalemusser/hotspot/internal/app/store/groups"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/realtime"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/hotspot/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type message struct {
	Topic      *realtime.Topic  `json:"topic"`
	Event      *realtime.Event  `json:"event"`
	Subscribed []realtime.Topic `json:"subscribed"`
	Dropped    bool             `json:"dropped"`
	Error      string           `json:"error"`
}

type env struct {
	hub *realtime.Hub
	fx  *testutil.Fixtures
	srv *httptest.Server
}

func newEnv(t *testing.T, u testutil.TestUser) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	hub := realtime.NewHub(4)
	t.Cleanup(hub.Close)

	router := rtfeature.Routes(rtfeature.NewHandler(hub, groupstore.New(db), zap.NewNop()), sm)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, testutil.WithUser(r, u))
	}))
	t.Cleanup(srv.Close)
	return env{hub: hub, fx: testutil.NewFixtures(t, db), srv: srv}
}

func (e env) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(e.srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var m message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func subscribe(t *testing.T, conn *websocket.Conn, topics ...realtime.Topic) message {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"subscribe": topics}))
	return read(t, conn)
}

func TestRealtime_OwnNotifications(t *testing.T) {
	me := testutil.StudentUser()
	e := newEnv(t, me)
	conn := e.dial(t)

	mine := realtime.Topic{Collection: collections.Notifications, Field: "recipient_id", Value: me.ID}
	m := subscribe(t, conn, mine)
	require.Empty(t, m.Error)
	assert.Equal(t, []realtime.Topic{mine}, m.Subscribed)

	other := primitive.NewObjectID()
	e.hub.Publish(realtime.Event{Collection: collections.Notifications, Op: realtime.Created, ID: primitive.NewObjectID(),
		Doc: bson.M{"recipient_id": other, "message": "not yours"}})
	id := primitive.NewObjectID()
	e.hub.Publish(realtime.Event{Collection: collections.Notifications, Op: realtime.Created, ID: id,
		Doc: bson.M{"recipient_id": me.OID(), "message": "yours"}})

	m = read(t, conn)
	require.NotNil(t, m.Event)
	assert.Equal(t, id, m.Event.ID)
	assert.Equal(t, realtime.Created, m.Event.Op)
	assert.Equal(t, "yours", m.Event.Doc["message"])
	assert.Equal(t, mine, *m.Topic)
}

func TestRealtime_RefusesOthersTopics(t *testing.T) {
	me := testutil.StudentUser()
	e := newEnv(t, me)
	conn := e.dial(t)

	for _, topic := range []realtime.Topic{
		{Collection: collections.Notifications},
		{Collection: collections.Carts, Field: "_id", Value: primitive.NewObjectID().Hex()},
		{Collection: collections.OAuthStates},
	} {
		m := subscribe(t, conn, topic)
		assert.NotEmpty(t, m.Error, topic.String())
		assert.Empty(t, m.Subscribed)
	}
	assert.Equal(t, 0, e.hub.Len())

	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := e.fx.CreateUser(ctx, "Pat Owner", "pat@campus.edu")
	private := e.fx.CreateGroup(ctx, "Secret", models.PrivacyPrivate, owner.ID)
	open := e.fx.CreateGroup(ctx, "Open", models.PrivacyPublic, owner.ID)

	m := subscribe(t, conn, realtime.Topic{Collection: collections.GroupPosts, Field: "group_id", Value: private.ID.Hex()})
	assert.NotEmpty(t, m.Error)
	m = subscribe(t, conn, realtime.Topic{Collection: collections.GroupPosts, Field: "group_id", Value: open.ID.Hex()})
	assert.Len(t, m.Subscribed, 1)
}

func TestRealtime_PrivateGroupRedacted(t *testing.T) {
	me := testutil.StudentUser()
	e := newEnv(t, me)
	conn := e.dial(t)

	subscribe(t, conn, realtime.Topic{Collection: collections.Groups})
	owner := primitive.NewObjectID()
	e.hub.Publish(realtime.Event{Collection: collections.Groups, Op: realtime.Updated, ID: primitive.NewObjectID(), Doc: bson.M{
		"name":    "Secret",
		"privacy": models.PrivacyPrivate,
		"members": bson.A{owner},
		"admins":  bson.A{owner},
		"pending": bson.A{primitive.NewObjectID()},
	}})

	m := read(t, conn)
	require.NotNil(t, m.Event)
	assert.Equal(t, "Secret", m.Event.Doc["name"])
	assert.Empty(t, m.Event.Doc["members"])
	assert.Empty(t, m.Event.Doc["admins"])
	assert.NotContains(t, m.Event.Doc, "pending")
}

func TestRealtime_DroppedWhenHubCloses(t *testing.T) {
	me := testutil.StudentUser()
	e := newEnv(t, me)
	conn := e.dial(t)

	topic := realtime.Topic{Collection: collections.Posts}
	subscribe(t, conn, topic)
	e.hub.Close()

	m := read(t, conn)
	assert.True(t, m.Dropped)
	assert.Equal(t, topic, *m.Topic)
}
