package store

import (
	"context"
	"errors"
	"time"

	"fleetopt/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Plans
	SavePlan(ctx context.Context, plan model.Plan) error
	GetPlan(ctx context.Context, tenantID, planID string) (model.Plan, error)
	ListPlans(ctx context.Context, tenantID, planDate, cursor string, limit int) ([]model.Plan, string, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, tenantID, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error

	// Solver metrics
	SavePlanMetrics(ctx context.Context, tenantID, planDate string, m model.PlanMetrics) error
	ListPlanMetrics(ctx context.Context, tenantID, planDate, algo string) ([]model.PlanMetrics, error)

	// Optimizer config per tenant; nil when the tenant has none
	GetOptimizerConfig(ctx context.Context, tenantID string) (*model.OptimizerConfig, error)
	SaveOptimizerConfig(ctx context.Context, tenantID string, cfg model.OptimizerConfig) error
}

var ErrNotFound = errors.New("not found")
