package api

import (
	"sync"

	"fleetopt/internal/model"
)

// EventBroker fans plan events out to WebSocket subscribers. Topics are
// built with planTopic.
type EventBroker interface {
	Subscribe(topic string) chan model.PlanEvent
	Unsubscribe(topic string, ch chan model.PlanEvent)
	Publish(topic string, evt model.PlanEvent)
}

func planTopic(tenant, planDate string) string { return tenant + "|" + planDate }

// Broker is the in-process EventBroker. Slow subscribers miss events rather
// than block publishers.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan model.PlanEvent]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan model.PlanEvent]struct{}{}}
}

func (b *Broker) Subscribe(topic string) chan model.PlanEvent {
	ch := make(chan model.PlanEvent, 8)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = map[chan model.PlanEvent]struct{}{}
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch chan model.PlanEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.subs[topic]
	if _, ok := m[ch]; !ok {
		return
	}
	delete(m, ch)
	if len(m) == 0 {
		delete(b.subs, topic)
	}
	close(ch)
}

func (b *Broker) Publish(topic string, evt model.PlanEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[topic] {
		select {
		case ch <- evt:
		default:
		}
	}
}
