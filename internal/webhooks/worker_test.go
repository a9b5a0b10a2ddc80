package webhooks

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/exp/slog"

	"fleetopt/internal/model"
	"fleetopt/internal/store"
)

type recordStore struct {
	*store.Memory
	mu    sync.Mutex
	marks []MarkRec
	fails []FailRec
}
type MarkRec struct {
	ID            string
	Success       bool
	Code, Latency int
	LastErr       string
}
type FailRec struct {
	ID            string
	Code, Latency int
	LastErr       string
}

func (r *recordStore) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	r.mu.Lock()
	r.marks = append(r.marks, MarkRec{ID: id, Success: success, Code: responseCode, Latency: latencyMs, LastErr: lastError})
	r.mu.Unlock()
	return r.Memory.MarkWebhookDelivery(ctx, id, success, nextAttemptAt, lastError, responseCode, latencyMs)
}
func (r *recordStore) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	r.mu.Lock()
	r.fails = append(r.fails, FailRec{ID: id, Code: responseCode, Latency: latencyMs, LastErr: lastError})
	r.mu.Unlock()
	return r.Memory.FailWebhookDelivery(ctx, id, lastError, responseCode, latencyMs)
}

func TestWorkerProcessOnce_SuccessAndSignature(t *testing.T) {
	var gotSig, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotType = r.Header.Get("X-Event-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	rs := &recordStore{Memory: store.NewMemory()}
	w := &Worker{Store: rs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 3}
	id, err := rs.Memory.EnqueueWebhook(context.Background(), "t1", "", model.EventPlanCompleted, srv.URL, "secret", []byte(`{"id":"evt1"}`))
	if err != nil || id == "" {
		t.Fatalf("enqueue failed: %v", err)
	}

	w.processOnce()

	if gotType != model.EventPlanCompleted {
		t.Fatalf("missing event type header: %q", gotType)
	}
	if !VerifyHMAC("secret", gotBody, gotSig) {
		t.Fatalf("signature %q does not verify", gotSig)
	}
	if len(rs.marks) == 0 || !rs.marks[0].Success {
		t.Fatalf("expected mark success, got: %+v", rs.marks)
	}
}

func TestWorkerProcessOnce_RetryThenFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) }))
	defer srv.Close()
	rs := &recordStore{Memory: store.NewMemory()}
	w := &Worker{Store: rs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 2}
	id, _ := rs.Memory.EnqueueWebhook(context.Background(), "t1", "", model.EventPlanFailed, srv.URL, "", []byte(`{}`))

	w.processOnce()
	if len(rs.marks) != 1 || rs.marks[0].Success || rs.marks[0].Code != 500 {
		t.Fatalf("expected one failed mark, got %+v", rs.marks)
	}
	d, _ := rs.Delivery(id)
	if d.Status != "retry" {
		t.Fatalf("want retry status, got %s", d.Status)
	}

	// the retry is scheduled in the future; deliver it directly
	w.deliver(context.Background(), d)
	if len(rs.fails) != 1 {
		t.Fatalf("expected fail recorded after max attempts, got %+v", rs.fails)
	}
}

// brokenStore accepts enqueues but cannot record delivery outcomes.
type brokenStore struct {
	*store.Memory
	calls int
}

var errStoreDown = errors.New("store down")

func (b *brokenStore) MarkWebhookDelivery(context.Context, string, bool, *time.Time, string, int, int) error {
	b.calls++
	return errStoreDown
}
func (b *brokenStore) FailWebhookDelivery(context.Context, string, string, int, int) error {
	b.calls++
	return errStoreDown
}

func TestWorkerLogsStoreErrors(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) }))
	defer srv.Close()
	bs := &brokenStore{Memory: store.NewMemory()}
	w := &Worker{Store: bs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 1}

	w.deliver(context.Background(), store.WebhookDelivery{ID: "ok", URL: srv.URL, EventType: model.EventPlanCompleted})
	w.deliver(context.Background(), store.WebhookDelivery{ID: "bad", URL: "://no-scheme", EventType: model.EventPlanFailed})

	if bs.calls != 2 {
		t.Fatalf("want 2 store calls, got %d", bs.calls)
	}
	out := buf.String()
	for _, want := range []string{"mark webhook delivery", "id=ok", "fail webhook delivery", "id=bad", "store down"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}

func TestPublisherEmit(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	_, _ = m.CreateSubscription(ctx, model.SubscriptionRequest{TenantID: "t1", URL: "http://hook", Events: []string{model.EventPlanCompleted}})
	_, _ = m.CreateSubscription(ctx, model.SubscriptionRequest{TenantID: "t1", URL: "http://other", Events: []string{model.EventPlanFailed}})

	n := NewPublisher(m).Emit(ctx, model.PlanEvent{ID: "e1", Type: model.EventPlanCompleted, TenantID: "t1"})
	if n != 1 {
		t.Fatalf("want 1 delivery queued, got %d", n)
	}
	due, _ := m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 1 || due[0].URL != "http://hook" {
		t.Fatalf("unexpected deliveries %+v", due)
	}
}

func TestNextBackoff(t *testing.T) {
	if nextBackoff(0) != time.Second || nextBackoff(3) != 8*time.Second {
		t.Fatalf("unexpected backoff progression")
	}
	if nextBackoff(50) != 1024*time.Second {
		t.Fatalf("attempts should clamp at 10")
	}
}
