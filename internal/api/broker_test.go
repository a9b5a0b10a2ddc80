package api

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"fleetopt/internal/model"
)

func testBroker(t *testing.T, b EventBroker) {
	t.Helper()
	topic := planTopic("t1", "2026-03-01")
	ch := b.Subscribe(topic)
	other := b.Subscribe(planTopic("t1", "2026-03-02"))

	evt := model.PlanEvent{ID: "e1", Type: model.EventPlanCompleted, TenantID: "t1", PlanDate: "2026-03-01", PlanID: "p1"}
	b.Publish(topic, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type || got.PlanID != "p1" {
			t.Fatalf("got %+v, want %+v", got, evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	select {
	case got := <-other:
		t.Fatalf("event leaked to another plan date: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}

	b.Unsubscribe(topic, ch)
	b.Unsubscribe(topic, ch) // second call is a no-op
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
	b.Unsubscribe(planTopic("t1", "2026-03-02"), other)
}

func TestBrokerPublishSubscribe(t *testing.T) {
	testBroker(t, NewBroker())
}

func TestRedisBrokerPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	testBroker(t, NewRedisBroker(rdb))
}
