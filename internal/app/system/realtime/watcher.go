package realtime

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/tomb.v2"
)

var errInvalidated = errors.New("change stream invalidated")

// Watcher tails the database change stream and publishes every change into
// a Hub. On errors it reopens the stream after the last seen resume token.
type Watcher struct {
	db    lungo.IDatabase
	hub   *Hub
	log   *zap.Logger
	retry time.Duration

	token   bson.Raw
	ready   chan struct{}
	once    sync.Once
	started atomic.Bool
	tomb    tomb.Tomb
}

// NewWatcher prepares a watcher; call Start to run it.
func NewWatcher(db lungo.IDatabase, hub *Hub, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		db:    db,
		hub:   hub,
		log:   log,
		retry: time.Second,
		ready: make(chan struct{}),
	}
}

// Start runs the watcher in the background.
func (w *Watcher) Start() {
	w.started.Store(true)
	w.tomb.Go(w.loop)
}

// Ready is closed once the first change stream is open.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Stop ends the watcher and waits for it to exit.
// A watcher that was never started stops immediately.
func (w *Watcher) Stop() error {
	if !w.started.Load() {
		return nil
	}
	w.tomb.Kill(nil)
	return w.tomb.Wait()
}

func (w *Watcher) loop() error {
	for {
		err := w.tail()
		if !w.tomb.Alive() {
			return nil
		}
		if errors.Is(err, errInvalidated) {
			w.token = nil
		}
		w.log.Warn("change stream interrupted; resuming",
			zap.Error(err), zap.Bool("has_token", w.token != nil))

		select {
		case <-w.tomb.Dying():
			return nil
		case <-time.After(w.retry):
		}
	}
}

type change struct {
	ResumeToken   bson.Raw `bson:"_id"`
	OperationType string   `bson:"operationType"`
	NS            struct {
		Coll string `bson:"coll"`
	} `bson:"ns"`
	DocumentKey struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.M `bson:"fullDocument"`
}

func (w *Watcher) tail() error {
	ctx := w.tomb.Context(nil)

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if w.token != nil {
		opts.SetResumeAfter(w.token)
	}

	cs, err := w.db.Watch(ctx, []bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cs.Close(ctx)

	w.once.Do(func() { close(w.ready) })

	for cs.Next(ctx) {
		var ch change
		if err := cs.Decode(&ch); err != nil {
			return err
		}

		var op Op
		switch ch.OperationType {
		case "insert":
			op = Created
		case "update", "replace":
			op = Updated
		case "delete":
			op = Deleted
		case "drop", "rename", "dropDatabase", "invalidate":
			return errInvalidated
		default:
			w.token = ch.ResumeToken
			continue
		}

		evt := Event{Collection: ch.NS.Coll, Op: op, ID: ch.DocumentKey.ID}
		if op != Deleted {
			evt.Doc = redact(ch.FullDocument)
		}
		w.hub.Publish(evt)
		w.token = ch.ResumeToken
	}
	return cs.Err()
}

// redact drops credentials and the folded search companions before a
// document leaves the server.
func redact(doc bson.M) bson.M {
	for k := range doc {
		if k == "password_hash" || strings.HasSuffix(k, "_ci") {
			delete(doc, k)
		}
	}
	return doc
}
