package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/siteloc/internal/adapters/nats"
	"github.com/samirrijal/siteloc/internal/core/usecases"
	"github.com/samirrijal/siteloc/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to a job's events.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Job    string `json:"job"`    // job ID filter, "" = all jobs
}

// WebSocketHandler relays resolution events from NATS to the client.
// Clients start subscribed to every job and narrow with
// {"action":"subscribe","job":"job-42"}.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		slog.Info("ws client connected", "remote", remoteAddr)

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

		if nc == nil {
			_ = writeJSON(map[string]string{"error": "event stream unavailable"})
			return
		}

		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		subs := make(map[string]*nats.Subscription)
		sub, err := nc.Subscribe(natsadapter.SubjectResolutions, relay)
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.SubjectResolutions] = sub

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
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(raw, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := natsadapter.SubjectResolutions
			if m.Job != "" {
				if !usecases.ValidJobID(m.Job) {
					_ = writeJSON(map[string]string{"error": "invalid job id"})
					continue
				}
				subject = natsadapter.ResolutionSubject(m.Job)
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				// A job filter replaces the catch-all subscription.
				if all, ok := subs[natsadapter.SubjectResolutions]; ok && subject != natsadapter.SubjectResolutions {
					_ = all.Unsubscribe()
					delete(subs, natsadapter.SubjectResolutions)
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
