package webhooks

import (
	"context"
	"encoding/json"

	"golang.org/x/exp/slog"

	"fleetopt/internal/model"
	"fleetopt/internal/store"
)

type Publisher struct {
	Store store.Store
}

func NewPublisher(s store.Store) *Publisher {
	return &Publisher{Store: s}
}

// Emit queues evt for every subscription of its tenant and type and reports
// how many deliveries were queued.
func (p *Publisher) Emit(ctx context.Context, evt model.PlanEvent) int {
	subs, err := p.Store.GetSubscriptionsForEvent(ctx, evt.TenantID, evt.Type)
	if err != nil {
		slog.Warn("webhook subscriptions lookup failed", "tenant", evt.TenantID, "event", evt.Type, "err", err)
		return 0
	}
	if len(subs) == 0 {
		return 0
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return 0
	}
	n := 0
	for _, s := range subs {
		if _, err := p.Store.EnqueueWebhook(ctx, evt.TenantID, s.ID, evt.Type, s.URL, s.Secret, body); err != nil {
			slog.Warn("webhook enqueue failed", "subscription", s.ID, "err", err)
			continue
		}
		n++
	}
	return n
}
