// Package main runs a demo WebSocket client for plan events: it subscribes to
// a plan date, submits a small optimize request and prints what arrives.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type     string          `json:"type"`
	PlanDate string          `json:"planDate,omitempty"`
	Event    json.RawMessage `json:"event,omitempty"`
	Error    string          `json:"error,omitempty"`
}

const planDate = "2026-01-05"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/plans/events/ws"}
	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_demo")
	hdr.Set("X-Role", "admin")
	c, _, err := websocket.DefaultDialer.Dial(u.String(), hdr)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "subscribe", PlanDate: planDate}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s %s %s", m.Type, m.PlanDate, string(m.Event))
		}
	}()

	// Trigger a plan.completed event
	time.Sleep(300 * time.Millisecond)
	body := []byte(`{"planDate":"` + planDate + `","algorithm":"search","localSearch":"GUIDED_LOCAL_SEARCH","timeLimitSeconds":2,
		"depot":{"name":"DC","lat":-23.5505,"lng":-46.6333},"vehicles":2,"vehicleCapacity":10,
		"stops":[{"name":"A","location":{"lat":-23.54,"lng":-46.63},"demand":3},
		         {"name":"B","location":{"lat":-23.56,"lng":-46.62},"demand":4},
		         {"name":"C","location":{"lat":-23.55,"lng":-46.65},"demand":2},
		         {"name":"D","location":{"lat":-23.57,"lng":-46.64},"demand":5}]}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/optimize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_demo")
	req.Header.Set("X-Role", "dispatcher")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	var plan struct {
		ID             string  `json:"id"`
		TotalDistanceM float64 `json:"totalDistanceM"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&plan)
	_ = resp.Body.Close()
	log.Printf("optimize -> %d plan %s total %.0f m", resp.StatusCode, plan.ID, plan.TotalDistanceM)

	// Wait briefly to receive the event
	select {
	case <-time.After(3 * time.Second):
	case <-done:
	}
}
