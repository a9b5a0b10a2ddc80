package webhooks

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/exp/slog"

	"fleetopt/internal/metrics"
	"fleetopt/internal/store"
)

type Worker struct {
	Store       store.Store
	HTTP        *http.Client
	Stop        chan struct{}
	MaxAttempts int
	Interval    time.Duration
}

func NewWorker(s store.Store, maxAttempts int) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &Worker{Store: s, HTTP: &http.Client{Timeout: 5 * time.Second}, Stop: make(chan struct{}), MaxAttempts: maxAttempts, Interval: time.Second}
}

func (w *Worker) Start() {
	go func() {
		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.Stop:
				return
			case <-ticker.C:
				w.processOnce()
			}
		}
	}()
}

func (w *Worker) processOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	items, err := w.Store.FetchDueWebhookDeliveries(ctx, 50)
	if err != nil {
		slog.Warn("fetch webhook deliveries", "err", err)
		return
	}
	for _, it := range items {
		w.deliver(ctx, it)
	}
}

func (w *Worker) deliver(ctx context.Context, it store.WebhookDelivery) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, it.URL, bytes.NewReader(it.Payload))
	if err != nil {
		logStoreErr("fail webhook delivery", it.ID, w.Store.FailWebhookDelivery(ctx, it.ID, err.Error(), 0, 0))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", it.EventType)
	req.Header.Set("X-Delivery-Attempt", strconv.Itoa(it.Attempts+1))
	if it.Secret != "" {
		req.Header.Set("X-Signature", SignHMAC(it.Secret, it.Payload))
	}

	start := time.Now()
	resp, err := w.HTTP.Do(req)
	latency := int(time.Since(start).Milliseconds())
	code := 0
	lastErr := ""
	if err != nil {
		lastErr = err.Error()
	} else {
		code = resp.StatusCode
		_ = resp.Body.Close()
		if code < 200 || code >= 300 {
			lastErr = fmt.Sprintf("status %d", code)
		}
	}
	success := lastErr == ""

	status := "delivered"
	switch {
	case success:
		logStoreErr("mark webhook delivery", it.ID, w.Store.MarkWebhookDelivery(ctx, it.ID, true, nil, "", code, latency))
	case it.Attempts+1 >= w.MaxAttempts:
		status = "failed"
		logStoreErr("fail webhook delivery", it.ID, w.Store.FailWebhookDelivery(ctx, it.ID, lastErr, code, latency))
		slog.Warn("webhook delivery failed", "id", it.ID, "event", it.EventType, "attempts", it.Attempts+1, "err", lastErr)
	default:
		status = "retry"
		next := time.Now().Add(nextBackoff(it.Attempts))
		logStoreErr("mark webhook delivery", it.ID, w.Store.MarkWebhookDelivery(ctx, it.ID, false, &next, lastErr, code, latency))
	}
	metrics.WebhookDeliveries.WithLabelValues(it.EventType, status).Inc()
	metrics.WebhookLatency.WithLabelValues(it.EventType, status).Observe(float64(latency))
}

// logStoreErr reports a delivery outcome the store failed to record.
func logStoreErr(op, id string, err error) {
	if err != nil {
		slog.Warn(op, "id", id, "err", err)
	}
}

func nextBackoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	if attempts > 10 {
		attempts = 10
	}
	base := time.Second * time.Duration(1<<attempts)
	if base > time.Hour {
		base = time.Hour
	}
	return base
}
