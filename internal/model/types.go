package model

import "time"

// API request and response types.

type GeoPoint struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type DepotIn struct {
	Name string  `json:"name,omitempty"`
	Lat  float64 `json:"lat" validate:"latitude"`
	Lng  float64 `json:"lng" validate:"longitude"`
}

type StopIn struct {
	Name     string   `json:"name,omitempty"`
	Location GeoPoint `json:"location"`
	Demand   int      `json:"demand" validate:"gte=0"`
}

type OptimizeRequest struct {
	TenantID             string   `json:"tenantId"`
	PlanDate             string   `json:"planDate" validate:"required,datetime=2006-01-02"`
	Algorithm            string   `json:"algorithm,omitempty" validate:"omitempty,oneof=greedy search"`
	Method               string   `json:"method,omitempty"`
	Depot                DepotIn  `json:"depot"`
	Stops                []StopIn `json:"stops" validate:"required,min=1,dive"`
	Vehicles             int      `json:"vehicles" validate:"required,min=1"`
	Capacities           []int    `json:"capacities,omitempty" validate:"omitempty,dive,gte=0"`
	VehicleCapacity      int      `json:"vehicleCapacity,omitempty" validate:"gte=0"`
	MaxDistanceM         *float64 `json:"maxDistanceM,omitempty" validate:"omitempty,gte=0"`
	TimeLimitSeconds     int      `json:"timeLimitSeconds,omitempty" validate:"gte=0,lte=3600"`
	ConstructionStrategy string   `json:"constructionStrategy,omitempty"`
	LocalSearch          string   `json:"localSearch,omitempty"`
	Seed                 int64    `json:"seed,omitempty"`
	FallbackGreedy       bool     `json:"fallbackGreedy,omitempty"`
	MaxStopsPerRoute     int      `json:"maxStopsPerRoute,omitempty" validate:"gte=0"`
}

// Plan is a solved routing instance as returned by the API and persisted by the store.
type Plan struct {
	ID                string      `json:"id"`
	TenantID          string      `json:"tenantId"`
	PlanDate          string      `json:"planDate"`
	Algorithm         string      `json:"algorithm"`
	Status            string      `json:"status"` // completed, fallback
	Method            string      `json:"method"`
	Depot             DepotIn     `json:"depot"`
	Objective         float64     `json:"objective"`
	TotalDistanceM    float64     `json:"totalDistanceM"`
	MaxRouteDistanceM float64     `json:"maxRouteDistanceM"`
	VehiclesUsed      int         `json:"vehiclesUsed"`
	Routes            []PlanRoute `json:"routes"`
	Dropped           []PlanStop  `json:"dropped,omitempty"`
	SolveTimeMs       int64       `json:"solveTimeMs"`
	Stats             *SolveStats `json:"stats,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
}

type PlanRoute struct {
	Vehicle   int        `json:"vehicle"`
	Stops     []PlanStop `json:"stops"`
	DistanceM float64    `json:"distanceM"`
	Load      *int       `json:"load,omitempty"`
}

// PlanStop is one visit; Index 0 is the depot.
type PlanStop struct {
	Index    int      `json:"index"`
	Name     string   `json:"name,omitempty"`
	Location GeoPoint `json:"location"`
	Demand   int      `json:"demand,omitempty"`
}

type SolveStats struct {
	Strategy      string  `json:"strategy,omitempty"`
	LocalSearch   string  `json:"localSearch,omitempty"`
	Iterations    int     `json:"iterations"`
	Improvements  int     `json:"improvements"`
	AcceptedWorse int     `json:"acceptedWorse"`
	InitialCost   float64 `json:"initialCost"`
	BestCost      float64 `json:"bestCost"`
}

// PlanMetrics is the per-algorithm solver summary kept for a tenant and plan date.
type PlanMetrics struct {
	Algorithm string `json:"algo"`
	PlanID    string `json:"planId,omitempty"`
	SolveStats
	SolveTimeMs int64 `json:"solveTimeMs"`
}

type DistanceMatrixRequest struct {
	Method    string     `json:"method,omitempty"`
	Locations []GeoPoint `json:"locations" validate:"required,min=1,max=2000,dive"`
}

type DistanceMatrixResponse struct {
	Method string      `json:"method"`
	Matrix [][]float64 `json:"matrix"`
	Cached bool        `json:"cached"`
}

// OptimizerConfig holds the per-tenant solver defaults.
type OptimizerConfig struct {
	Algorithm            string  `json:"algorithm,omitempty" yaml:"algorithm" validate:"omitempty,oneof=greedy search"`
	TimeLimitSeconds     int     `json:"timeLimitSeconds,omitempty" yaml:"timeLimitSeconds" validate:"gte=0,lte=3600"`
	ConstructionStrategy string  `json:"constructionStrategy,omitempty" yaml:"constructionStrategy"`
	LocalSearch          string  `json:"localSearch,omitempty" yaml:"localSearch"`
	MaxDistanceM         float64 `json:"maxDistanceM,omitempty" yaml:"maxDistanceM" validate:"gte=0"`
	Method               string  `json:"method,omitempty" yaml:"method"`
	FallbackGreedy       *bool   `json:"fallbackGreedy,omitempty" yaml:"fallbackGreedy"`
}

// Overlay returns c with every field set in o taking precedence.
func (c OptimizerConfig) Overlay(o OptimizerConfig) OptimizerConfig {
	if o.Algorithm != "" {
		c.Algorithm = o.Algorithm
	}
	if o.TimeLimitSeconds > 0 {
		c.TimeLimitSeconds = o.TimeLimitSeconds
	}
	if o.ConstructionStrategy != "" {
		c.ConstructionStrategy = o.ConstructionStrategy
	}
	if o.LocalSearch != "" {
		c.LocalSearch = o.LocalSearch
	}
	if o.MaxDistanceM > 0 {
		c.MaxDistanceM = o.MaxDistanceM
	}
	if o.Method != "" {
		c.Method = o.Method
	}
	if o.FallbackGreedy != nil {
		c.FallbackGreedy = o.FallbackGreedy
	}
	return c
}

type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url" validate:"required,url"`
	Events   []string `json:"events" validate:"required,min=1,dive,oneof=plan.completed plan.failed"`
	Secret   string   `json:"secret"`
}

type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}

// PlanEvent is pushed to WebSocket subscribers and webhook endpoints.
type PlanEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // plan.completed, plan.failed
	TenantID  string    `json:"tenantId"`
	PlanDate  string    `json:"planDate"`
	PlanID    string    `json:"planId,omitempty"`
	Algorithm string    `json:"algorithm,omitempty"`
	Status    string    `json:"status,omitempty"`
	Objective float64   `json:"objective,omitempty"`
	Error     string    `json:"error,omitempty"`
	TS        time.Time `json:"ts"`
}

const (
	EventPlanCompleted = "plan.completed"
	EventPlanFailed    = "plan.failed"
)
