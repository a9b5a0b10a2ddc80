package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"

	"fleetopt/internal/auth"
	"fleetopt/internal/config"
	"fleetopt/internal/metrics"
	"fleetopt/internal/store"
	"fleetopt/internal/webhooks"
)

type Server struct {
	Store  store.Store
	Pub    *webhooks.Publisher
	Auth   *auth.Verifier
	Broker EventBroker
	Matrix store.MatrixCache
	Config config.Config

	validate *validator.Validate
	limiter  *rate.Limiter
}

// NewServer wires a Server from cfg. Without a database URL plans live in
// memory; without a Redis URL events and matrices stay in process.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.DBMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := sp.Migrate(ctx)
			cancel()
			if err != nil {
				return nil, err
			}
		}
		s = sp
	}

	var broker EventBroker = NewBroker()
	var cache store.MatrixCache = store.NewMemoryMatrixCache(cfg.MatrixCacheSize)
	if cfg.RedisURL != "" {
		if opt, err := redis.ParseURL(cfg.RedisURL); err == nil {
			rdb := redis.NewClient(opt)
			broker = NewRedisBroker(rdb)
			cache = store.NewRedisMatrixCache(rdb, cfg.MatrixCacheTTL)
		} else {
			slog.Warn("invalid REDIS_URL, using in-process broker and cache", "err", err)
		}
	}
	return newServer(cfg, s, broker, cache), nil
}

func newServer(cfg config.Config, s store.Store, broker EventBroker, cache store.MatrixCache) *Server {
	srv := &Server{
		Store:    s,
		Pub:      webhooks.NewPublisher(s),
		Auth:     auth.NewVerifierFromEnv(),
		Broker:   broker,
		Matrix:   cache,
		Config:   cfg,
		validate: newValidator(),
	}
	if cfg.RateRPS > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = int(cfg.RateRPS) + 1
		}
		srv.limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), burst)
	}
	return srv
}

// Routes returns the service mux wrapped in logging, metrics and rate limiting.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Optimization
	mux.HandleFunc("/v1/optimize", s.OptimizeHandler)
	mux.HandleFunc("/v1/distance-matrix", s.DistanceMatrixHandler)
	mux.HandleFunc("/v1/optimizer/config", s.OptimizerConfigHandler)
	mux.HandleFunc("/v1/admin/optimizer/config", s.AdminOptimizerConfigHandler)
	mux.HandleFunc("/v1/admin/plan-metrics", s.PlanMetricsHandler)

	// Plans
	mux.HandleFunc("/v1/plans", s.PlansHandler)
	mux.HandleFunc("/v1/plans/events/ws", s.PlanEventsWSHandler)
	mux.HandleFunc("/v1/plans/", s.PlanByIDHandler) // includes /geojson

	// Webhooks
	mux.HandleFunc("/v1/subscriptions", s.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", s.SubscriptionByIDHandler)

	// Ops
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	mux.HandleFunc("/debug/info", s.DebugJSON)
	mux.HandleFunc("/openapi.yaml", s.OpenAPIHandler)
	mux.HandleFunc("/openapi.json", s.OpenAPIJSONHandler)
	mux.HandleFunc("/docs", s.DocsHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return s.accessLog(s.instrument(s.rateLimit(mux)))
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store, s.Config.WebhookMaxAttempts)
}
