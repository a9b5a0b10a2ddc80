package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/exp/slog"

	"fleetopt/internal/model"
)

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 20 * time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// wsMessage is the envelope in both directions. Clients send subscribe,
// unsubscribe and ping; the server answers with subscribed, unsubscribed,
// pong, event and error.
type wsMessage struct {
	Type     string           `json:"type"`
	PlanDate string           `json:"planDate,omitempty"`
	Event    *model.PlanEvent `json:"event,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// PlanEventsWSHandler streams plan events for the caller's tenant over a
// WebSocket, one subscription per plan date.
func (s *Server) PlanEventsWSHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	var wmu sync.Mutex
	write := func(v wsMessage) error {
		wmu.Lock()
		defer wmu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(v)
	}

	subs := map[string]chan model.PlanEvent{}
	defer func() {
		for date, ch := range subs {
			s.Broker.Unsubscribe(planTopic(p.Tenant, date), ch)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				wmu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
				wmu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(wsPongWait)) })

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = write(wsMessage{Type: "error", Error: "invalid message"})
			continue
		}
		switch msg.Type {
		case "ping":
			_ = write(wsMessage{Type: "pong"})
		case "subscribe":
			if msg.PlanDate == "" {
				_ = write(wsMessage{Type: "error", Error: "planDate required"})
				continue
			}
			if _, dup := subs[msg.PlanDate]; !dup {
				ch := s.Broker.Subscribe(planTopic(p.Tenant, msg.PlanDate))
				subs[msg.PlanDate] = ch
				go func(ch chan model.PlanEvent) {
					for evt := range ch {
						evt := evt
						if err := write(wsMessage{Type: "event", PlanDate: evt.PlanDate, Event: &evt}); err != nil {
							slog.Debug("plan event write failed", "err", err)
							return
						}
					}
				}(ch)
			}
			_ = write(wsMessage{Type: "subscribed", PlanDate: msg.PlanDate})
		case "unsubscribe":
			if ch, ok := subs[msg.PlanDate]; ok {
				s.Broker.Unsubscribe(planTopic(p.Tenant, msg.PlanDate), ch)
				delete(subs, msg.PlanDate)
			}
			_ = write(wsMessage{Type: "unsubscribed", PlanDate: msg.PlanDate})
		default:
			_ = write(wsMessage{Type: "error", Error: "unknown message type " + msg.Type})
		}
	}
}
