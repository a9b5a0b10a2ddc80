package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"fleetopt/internal/geo"
	"fleetopt/internal/metrics"
	"fleetopt/internal/model"
	"fleetopt/internal/opt"
)

const (
	PlanCompleted = "completed"
	PlanFallback  = "fallback"
)

// OptimizeHandler solves a routing request and stores the resulting plan.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	if !p.CanOptimize() {
		writeProblem(w, 403, "Forbidden", "dispatcher or admin required", r.URL.Path)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" {
		req.TenantID = p.Tenant
	} else if req.TenantID != p.Tenant && !p.IsAdmin() {
		writeProblem(w, 403, "Forbidden", "tenantId does not match token", r.URL.Path)
		return
	}
	if errs := append(s.checkStruct(req), validateOptimizeRequest(req)...); len(errs) > 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid optimize request", strings.Join(errs, "; "), r.URL.Path)
		return
	}

	plan, err := s.optimize(r.Context(), req, s.optimizerConfig(r.Context(), req.TenantID))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, plan)
	case errors.Is(err, opt.ErrInfeasible), errors.Is(err, opt.ErrNoSolution):
		writeProblem(w, http.StatusUnprocessableEntity, "No feasible plan", err.Error(), r.URL.Path)
	case errors.Is(err, opt.ErrValidation), errors.Is(err, geo.ErrUnsupportedMethod):
		writeProblem(w, http.StatusBadRequest, "Invalid routing problem", err.Error(), r.URL.Path)
	default:
		writeProblem(w, http.StatusInternalServerError, "Optimize failed", err.Error(), r.URL.Path)
	}
}

// optimizerConfig overlays the tenant's stored defaults on the service defaults.
func (s *Server) optimizerConfig(ctx context.Context, tenant string) model.OptimizerConfig {
	cfg := s.Config.Optimizer
	tc, err := s.Store.GetOptimizerConfig(ctx, tenant)
	if err != nil {
		slog.Warn("load tenant optimizer config", "tenant", tenant, "err", err)
		return cfg
	}
	if tc != nil {
		cfg = cfg.Overlay(*tc)
	}
	return cfg
}

func (s *Server) optimize(ctx context.Context, req model.OptimizeRequest, cfg model.OptimizerConfig) (model.Plan, error) {
	method, err := geo.ParseMethod(firstNonEmpty(req.Method, cfg.Method))
	if err != nil {
		return model.Plan{}, err
	}
	pts := make([]geo.Point, 0, len(req.Stops)+1)
	pts = append(pts, geo.Point{Lat: req.Depot.Lat, Lng: req.Depot.Lng})
	for _, st := range req.Stops {
		pts = append(pts, geo.Point{Lat: st.Location.Lat, Lng: st.Location.Lng})
	}
	matrix, _, err := s.distanceMatrix(ctx, method, pts)
	if err != nil {
		return model.Plan{}, err
	}
	problem, err := buildProblem(req, cfg, matrix, pts)
	if err != nil {
		return model.Plan{}, err
	}
	solver, err := newSolver(req, cfg)
	if err != nil {
		return model.Plan{}, err
	}

	status := PlanCompleted
	sol, err := solver.Solve(problem)
	if err != nil {
		metrics.SolverSolves.WithLabelValues(solver.Name(), outcomeOf(err)).Inc()
		if !req.FallbackGreedy && (cfg.FallbackGreedy == nil || !*cfg.FallbackGreedy) {
			s.publish(ctx, model.PlanEvent{
				Type:      model.EventPlanFailed,
				TenantID:  req.TenantID,
				PlanDate:  req.PlanDate,
				Algorithm: solver.Name(),
				Error:     err.Error(),
			})
			return model.Plan{}, err
		}
		slog.Info("search found no plan, falling back to greedy", "tenant", req.TenantID, "planDate", req.PlanDate, "err", err)
		solver = opt.Greedy{MaxStopsPerRoute: req.MaxStopsPerRoute}
		if sol, err = solver.Solve(problem); err != nil {
			return model.Plan{}, err
		}
		status = PlanFallback
	}
	metrics.SolverSolves.WithLabelValues(sol.Algorithm, "ok").Inc()
	metrics.SolverDuration.WithLabelValues(sol.Algorithm).Observe(sol.SolveTime.Seconds())

	plan := buildPlan(req, method, sol, status)
	if err := s.Store.SavePlan(ctx, plan); err != nil {
		return model.Plan{}, fmt.Errorf("save plan: %w", err)
	}
	opt.RecordStats(plan.TenantID, plan.PlanDate, plan.Algorithm, sol.Stats)
	pm := model.PlanMetrics{Algorithm: plan.Algorithm, PlanID: plan.ID, SolveStats: *plan.Stats, SolveTimeMs: plan.SolveTimeMs}
	if err := s.Store.SavePlanMetrics(ctx, plan.TenantID, plan.PlanDate, pm); err != nil {
		slog.Warn("save plan metrics", "plan", plan.ID, "err", err)
	}
	slog.Info("plan solved", "tenant", plan.TenantID, "plan", plan.ID, "algorithm", plan.Algorithm,
		"status", plan.Status, "objective", plan.Objective, "vehicles", plan.VehiclesUsed, "ms", plan.SolveTimeMs)

	s.publish(ctx, model.PlanEvent{
		Type:      model.EventPlanCompleted,
		TenantID:  plan.TenantID,
		PlanDate:  plan.PlanDate,
		PlanID:    plan.ID,
		Algorithm: plan.Algorithm,
		Status:    plan.Status,
		Objective: plan.Objective,
	})
	return plan, nil
}

func buildProblem(req model.OptimizeRequest, cfg model.OptimizerConfig, matrix [][]float64, pts []geo.Point) (*opt.Problem, error) {
	opts := []opt.Option{opt.WithCoordinates(pts)}
	caps := req.Capacities
	if len(caps) == 0 && req.VehicleCapacity > 0 {
		caps = make([]int, req.Vehicles)
		for i := range caps {
			caps[i] = req.VehicleCapacity
		}
	}
	if len(caps) > 0 {
		demands := make([]int, len(pts))
		for i, st := range req.Stops {
			demands[i+1] = st.Demand
		}
		opts = append(opts, opt.WithCapacities(demands, caps))
	}
	// an explicit zero lifts the ceiling
	limit := cfg.MaxDistanceM
	if req.MaxDistanceM != nil {
		limit = *req.MaxDistanceM
	}
	if limit > 0 {
		opts = append(opts, opt.WithMaxDistance(limit))
	}
	return opt.NewProblem(matrix, req.Vehicles, 0, opts...)
}

func newSolver(req model.OptimizeRequest, cfg model.OptimizerConfig) (opt.Solver, error) {
	if firstNonEmpty(req.Algorithm, cfg.Algorithm) == "greedy" {
		return opt.Greedy{MaxStopsPerRoute: req.MaxStopsPerRoute}, nil
	}
	meta, err := opt.ParseMetaheuristic(firstNonEmpty(req.LocalSearch, cfg.LocalSearch))
	if err != nil {
		return nil, err
	}
	limit := req.TimeLimitSeconds
	if limit <= 0 {
		limit = cfg.TimeLimitSeconds
	}
	return opt.Search{Params: opt.Params{
		TimeLimit:   time.Duration(limit) * time.Second,
		Strategy:    opt.ParseStrategy(firstNonEmpty(req.ConstructionStrategy, cfg.ConstructionStrategy)),
		LocalSearch: meta,
		Seed:        req.Seed,
	}}, nil
}

func buildPlan(req model.OptimizeRequest, method geo.Method, sol *opt.Solution, status string) model.Plan {
	m := opt.ExtractMetrics(sol)
	depot := req.Depot
	if depot.Name == "" {
		depot.Name = "depot"
	}
	stopAt := func(i int) model.PlanStop {
		if i == 0 {
			return model.PlanStop{Index: 0, Name: depot.Name, Location: model.GeoPoint{Lat: depot.Lat, Lng: depot.Lng}}
		}
		st := req.Stops[i-1]
		return model.PlanStop{Index: i, Name: st.Name, Location: st.Location, Demand: st.Demand}
	}

	plan := model.Plan{
		ID:                uuid.NewString(),
		TenantID:          req.TenantID,
		PlanDate:          req.PlanDate,
		Algorithm:         m.Algorithm,
		Status:            status,
		Method:            string(method),
		Depot:             depot,
		Objective:         m.Objective,
		TotalDistanceM:    m.TotalDistance,
		MaxRouteDistanceM: m.MaxRouteDistance,
		VehiclesUsed:      m.VehiclesUsed,
		Routes:            make([]model.PlanRoute, 0, len(m.Routes)),
		SolveTimeMs:       m.ExecutionTime.Milliseconds(),
		CreatedAt:         time.Now().UTC(),
	}
	stats := solveStats(sol.Stats)
	plan.Stats = &stats
	for i, rt := range m.Routes {
		pr := model.PlanRoute{Vehicle: m.Vehicles[i], DistanceM: m.RouteDistances[i], Stops: make([]model.PlanStop, 0, len(rt))}
		for _, idx := range rt {
			pr.Stops = append(pr.Stops, stopAt(idx))
		}
		if m.RouteLoads != nil {
			load := m.RouteLoads[i]
			pr.Load = &load
		}
		plan.Routes = append(plan.Routes, pr)
	}
	for _, idx := range m.Dropped {
		plan.Dropped = append(plan.Dropped, stopAt(idx))
	}
	return plan
}

func solveStats(st opt.Stats) model.SolveStats {
	return model.SolveStats{
		Strategy:      st.Strategy,
		LocalSearch:   st.LocalSearch,
		Iterations:    st.Iterations,
		Improvements:  st.Improvements,
		AcceptedWorse: st.AcceptedWorse,
		InitialCost:   st.InitialCost,
		BestCost:      st.BestCost,
	}
}

// publish pushes evt to WebSocket subscribers and queues webhook deliveries.
func (s *Server) publish(ctx context.Context, evt model.PlanEvent) {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.TS.IsZero() {
		evt.TS = time.Now().UTC()
	}
	s.Broker.Publish(planTopic(evt.TenantID, evt.PlanDate), evt)
	s.Pub.Emit(ctx, evt)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, opt.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, opt.ErrNoSolution):
		return "no_solution"
	case errors.Is(err, opt.ErrValidation):
		return "invalid"
	}
	return "error"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
