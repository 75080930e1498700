// Package realtime pushes document changes to interested listeners. A Hub
// is a registry of subscriptions keyed by query shape; the Watcher feeds it
// from the database change stream.
package realtime

import (
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op is the kind of change.
type Op string

const (
	Created Op = "created"
	Updated Op = "updated"
	Deleted Op = "deleted"
)

// DefaultBuffer is the per-subscription queue length.
const DefaultBuffer = 16

// Topic is a query shape. An empty Field matches every document in the
// collection; otherwise the document's Field must equal Value, or contain
// it when the field is an array. ObjectIDs compare by hex.
type Topic struct {
	Collection string `json:"collection"`
	Field      string `json:"field,omitempty"`
	Value      string `json:"value,omitempty"`
}

func (t Topic) String() string {
	if t.Field == "" {
		return t.Collection
	}
	return fmt.Sprintf("%s[%s=%s]", t.Collection, t.Field, t.Value)
}

// Event is one change to one document. Doc is nil for deletes.
type Event struct {
	Collection string             `json:"collection"`
	Op         Op                 `json:"op"`
	ID         primitive.ObjectID `json:"id"`
	Doc        bson.M             `json:"doc,omitempty"`
}

// Matches reports whether the event concerns the topic. Deleted documents
// have no body, so deletes only reach whole-collection and _id topics.
func (t Topic) Matches(e Event) bool {
	if t.Collection != e.Collection {
		return false
	}
	switch t.Field {
	case "":
		return true
	case "_id":
		return e.ID.Hex() == t.Value
	}
	if e.Op == Deleted || e.Doc == nil {
		return false
	}
	return valueMatches(e.Doc[t.Field], t.Value)
}

func valueMatches(v interface{}, want string) bool {
	switch x := v.(type) {
	case nil:
		return false
	case primitive.ObjectID:
		return x.Hex() == want
	case string:
		return x == want
	case bool:
		return fmt.Sprint(x) == want
	case primitive.A:
		for _, el := range x {
			if valueMatches(el, want) {
				return true
			}
		}
		return false
	case []interface{}:
		return valueMatches(primitive.A(x), want)
	default:
		return fmt.Sprint(x) == want
	}
}

// Subscription receives the events of one topic on C. C is closed when the
// subscription is closed, when the hub shuts down, or when the subscriber
// falls behind and its queue overflows.
type Subscription struct {
	Topic Topic
	C     <-chan Event

	ch   chan Event
	hub  *Hub
	once sync.Once
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans events out to subscriptions.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{} // by collection
	buffer int
	closed bool
}

// NewHub returns a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{subs: make(map[string]map[*Subscription]struct{}), buffer: buffer}
}

// Subscribe registers interest in a topic.
func (h *Hub) Subscribe(t Topic) *Subscription {
	ch := make(chan Event, h.buffer)
	s := &Subscription{Topic: t, C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.once.Do(func() { close(ch) })
		return s
	}
	set, ok := h.subs[t.Collection]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[t.Collection] = set
	}
	set[s] = struct{}{}
	return s
}

// Publish delivers e to every matching subscription without blocking.
// Subscriptions whose queue is full are dropped.
func (h *Hub) Publish(e Event) {
	var slow []*Subscription

	h.mu.RLock()
	for s := range h.subs[e.Collection] {
		if !s.Topic.Matches(e) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range slow {
		h.remove(s)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.subs {
		n += len(set)
	}
	return n
}

// Close drops every subscription. Later subscriptions are born closed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for coll, set := range h.subs {
		for s := range set {
			s.once.Do(func() { close(s.ch) })
		}
		delete(h.subs, coll)
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[s.Topic.Collection]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.Topic.Collection)
		}
	}
	h.mu.Unlock()
	s.once.Do(func() { close(s.ch) })
}
