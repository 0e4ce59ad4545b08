package http

import (
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/pkg/metrics"
)

// wsMessage is sent by clients to change what they receive.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Kind   string `json:"kind"`   // city | city_detail | location | road ("" = all)
}

// allContentSubject matches every content event.
const allContentSubject = "content.>"

// contentSubject returns the NATS subject for a content kind.
func contentSubject(kind string) (string, bool) {
	switch domain.ContentKind(kind) {
	case "":
		return allContentSubject, true
	case domain.KindCity, domain.KindCityDetail, domain.KindLocation, domain.KindRoad:
		return "content." + kind + ".*", true
	}
	return "", false
}

// subscriptionSet tracks one client's subjects. The catch-all and the
// per-kind subjects never coexist, so each event is relayed once.
type subscriptionSet struct {
	subscribe func(subject string) (unsubscribe func() error, err error)
	active    map[string]func() error
}

func newSubscriptionSet(subscribe func(string) (func() error, error)) *subscriptionSet {
	return &subscriptionSet{subscribe: subscribe, active: make(map[string]func() error)}
}

// add subscribes to subject and drops whatever it overlaps. It reports
// false when subject was already active.
func (s *subscriptionSet) add(subject string) (bool, error) {
	if _, ok := s.active[subject]; ok {
		return false, nil
	}
	unsubscribe, err := s.subscribe(subject)
	if err != nil {
		return false, err
	}
	for existing := range s.active {
		if subject == allContentSubject || existing == allContentSubject {
			s.drop(existing)
		}
	}
	s.active[subject] = unsubscribe
	return true, nil
}

// remove drops subject. Removing the catch-all drops everything.
func (s *subscriptionSet) remove(subject string) bool {
	if subject == allContentSubject && len(s.active) > 0 {
		s.close()
		return true
	}
	if _, ok := s.active[subject]; !ok {
		return false
	}
	s.drop(subject)
	return true
}

func (s *subscriptionSet) drop(subject string) {
	_ = s.active[subject]()
	delete(s.active, subject)
}

func (s *subscriptionSet) close() {
	for subject := range s.active {
		s.drop(subject)
	}
}

func (s *subscriptionSet) subjects() []string {
	out := make([]string, 0, len(s.active))
	for subject := range s.active {
		out = append(out, subject)
	}
	sort.Strings(out)
	return out
}

// WebSocketHandler relays content change events from NATS to connected
// editors. Every client starts subscribed to all kinds; subscribing to a kind
// such as {"action":"subscribe","kind":"road"} replaces the catch-all.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		logger := slog.Default().With("remote_addr", c.RemoteAddr().String())
		logger.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "event stream unavailable"})
			return
		}

		var mu sync.Mutex

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		subs := newSubscriptionSet(func(subject string) (func() error, error) {
			sub, err := nc.Subscribe(subject, relay)
			if err != nil {
				return nil, err
			}
			return sub.Unsubscribe, nil
		})
		defer subs.close()

		if _, err := subs.add(allContentSubject); err != nil {
			logger.Error("ws default subscribe failed", "error", err)
			return
		}

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, ok := contentSubject(m.Kind)
			if !ok {
				_ = writeJSON(map[string]string{"error": "unknown kind: " + m.Kind})
				continue
			}

			switch m.Action {
			case "subscribe":
				added, err := subs.add(subject)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				status := "subscribed"
				if !added {
					status = "already subscribed"
				}
				_ = writeJSON(map[string]any{"status": status, "subject": subject, "active": subs.subjects()})

			case "unsubscribe":
				if !subs.remove(subject) {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
					continue
				}
				_ = writeJSON(map[string]any{"status": "unsubscribed", "subject": subject, "active": subs.subjects()})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		logger.Info("ws client disconnected")
	}
}
