// internal/app/features/realtime/handler.go
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	groupstore "github.com/dalemusser/hotspot/internal/app/store/groups"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/realtime"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// largest client message; clients only send subscription requests
	maxMessageSize = 4096

	writeTimeout   = 10 * time.Second
	pingInterval   = 45 * time.Second
	receiveTimeout = 90 * time.Second
)

// Handler upgrades /realtime to a websocket and relays hub events for the
// topics the client subscribes to.
type Handler struct {
	Hub    *realtime.Hub
	Groups *groupstore.Store
	Log    *zap.Logger

	upgrader websocket.Upgrader
}

func NewHandler(hub *realtime.Hub, groups *groupstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:    hub,
		Groups: groups,
		Log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// request is a client message. Both lists may be given at once;
// unsubscriptions are applied first.
type request struct {
	Subscribe   []realtime.Topic `json:"subscribe"`
	Unsubscribe []realtime.Topic `json:"unsubscribe"`
}

// message is a server message. Exactly one of Event, Subscribed, Dropped
// or Error is set.
type message struct {
	Topic      *realtime.Topic  `json:"topic,omitempty"`
	Event      *realtime.Event  `json:"event,omitempty"`
	Subscribed []realtime.Topic `json:"subscribed,omitempty"`
	Dropped    bool             `json:"dropped,omitempty"`
	Error      string           `json:"error,omitempty"`
}

type delivery struct {
	topic realtime.Topic
	event realtime.Event
}

// ServeWS handles GET /realtime.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	admin := authz.IsAdmin(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered
		h.Log.Debug("realtime: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.Log.Debug("realtime: connected", zap.String("user_id", uid.Hex()))
	if err := h.process(r.Context(), conn, uid, admin); err != nil {
		h.Log.Debug("realtime: connection ended", zap.String("user_id", uid.Hex()), zap.Error(err))
	}
}

func (h *Handler) process(ctx context.Context, conn *websocket.Conn, uid primitive.ObjectID, admin bool) error {
	conn.SetReadLimit(maxMessageSize)
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(receiveTimeout))
	})

	done := make(chan struct{})
	defer close(done)

	readErr := make(chan error, 1)
	inc := make(chan request)
	go func() {
		for {
			if err := conn.SetReadDeadline(time.Now().Add(receiveTimeout)); err != nil {
				readErr <- err
				return
			}
			typ, data, err := conn.ReadMessage()
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				readErr <- nil
				return
			} else if err != nil {
				readErr <- err
				return
			}
			if typ != websocket.TextMessage {
				readErr <- errors.New("not a text message")
				return
			}
			var req request
			if err := json.Unmarshal(data, &req); err != nil {
				readErr <- err
				return
			}
			select {
			case inc <- req:
			case <-done:
				return
			}
		}
	}()

	events := make(chan delivery)
	dropped := make(chan *realtime.Subscription)
	reg := map[realtime.Topic]*realtime.Subscription{}
	defer func() {
		for _, s := range reg {
			s.Close()
		}
	}()

	forward := func(s *realtime.Subscription) {
		for e := range s.C {
			select {
			case events <- delivery{topic: s.Topic, event: e}:
			case <-done:
				return
			}
		}
		select {
		case dropped <- s:
		case <-done:
		}
	}

	write := func(m message) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return err
		}
		return conn.WriteJSON(m)
	}

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case req := <-inc:
			for _, t := range req.Unsubscribe {
				if s, ok := reg[t]; ok {
					delete(reg, t)
					s.Close()
				}
			}
			var added []realtime.Topic
			for _, t := range req.Subscribe {
				if _, ok := reg[t]; ok {
					added = append(added, t)
					continue
				}
				actx, cancel := timeouts.WithShort(ctx)
				err := h.authorize(actx, t, uid, admin)
				cancel()
				if err != nil {
					t := t
					if err := write(message{Topic: &t, Error: err.Error()}); err != nil {
						return err
					}
					continue
				}
				s := h.Hub.Subscribe(t)
				reg[t] = s
				go forward(s)
				added = append(added, t)
			}
			if len(req.Subscribe) > 0 && len(added) > 0 {
				if err := write(message{Subscribed: added}); err != nil {
					return err
				}
			}

		case d := <-events:
			if _, ok := reg[d.topic]; !ok {
				continue
			}
			e := redact(d.event, uid, admin)
			t := d.topic
			if err := write(message{Topic: &t, Event: &e}); err != nil {
				return err
			}

		case s := <-dropped:
			// Closed by the hub (slow reader or shutdown) rather than by an
			// unsubscribe; tell the client so it can resubscribe.
			if reg[s.Topic] != s {
				continue
			}
			delete(reg, s.Topic)
			t := s.Topic
			if err := write(message{Topic: &t, Dropped: true}); err != nil {
				return err
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return err
			}

		case err := <-readErr:
			return err
		}
	}
}
