package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"fleetopt/internal/geo"
	"fleetopt/internal/model"
	"fleetopt/internal/opt"
)

// OptimizerConfigHandler returns the service defaults overlaid with the tenant config.
func (s *Server) OptimizerConfigHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/optimizer/config" || r.Method != http.MethodGet {
		writeProblem(w, 404, "Not Found", "", r.URL.Path)
		return
	}
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	writeJSON(w, 200, map[string]any{"defaults": s.optimizerConfig(r.Context(), p.Tenant)})
}

// AdminOptimizerConfigHandler reads or replaces the tenant's optimizer config.
func (s *Server) AdminOptimizerConfigHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/optimizer/config" {
		writeProblem(w, 404, "Not Found", "", r.URL.Path)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.Store.GetOptimizerConfig(r.Context(), p.Tenant)
		if err != nil {
			writeProblem(w, 500, "Load config failed", err.Error(), r.URL.Path)
			return
		}
		if cfg == nil {
			cfg = &model.OptimizerConfig{}
		}
		writeJSON(w, 200, map[string]any{"config": cfg})
	case http.MethodPut:
		var body struct {
			Config *model.OptimizerConfig `json:"config"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeProblem(w, 400, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if body.Config == nil {
			writeProblem(w, 400, "Missing config", "", r.URL.Path)
			return
		}
		if errs := s.checkOptimizerConfig(*body.Config); len(errs) > 0 {
			writeProblem(w, 400, "Invalid optimizer config", strings.Join(errs, "; "), r.URL.Path)
			return
		}
		if err := s.Store.SaveOptimizerConfig(r.Context(), p.Tenant, *body.Config); err != nil {
			writeProblem(w, 500, "Save failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, 200, map[string]bool{"ok": true})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) checkOptimizerConfig(cfg model.OptimizerConfig) []string {
	errs := s.checkStruct(cfg)
	if cfg.Method != "" {
		if _, err := geo.ParseMethod(cfg.Method); err != nil {
			errs = append(errs, "method: "+err.Error())
		}
	}
	if _, err := opt.ParseMetaheuristic(cfg.LocalSearch); err != nil {
		errs = append(errs, "localSearch: "+err.Error())
	}
	return errs
}

// PlanMetricsHandler reports solver statistics per algorithm for a plan date.
func (s *Server) PlanMetricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/plan-metrics" || r.Method != http.MethodGet {
		writeProblem(w, 404, "Not Found", "", r.URL.Path)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path)
		return
	}
	planDate := r.URL.Query().Get("planDate")
	if planDate == "" {
		writeProblem(w, 400, "Missing planDate", "", r.URL.Path)
		return
	}
	algo := r.URL.Query().Get("algo")
	// Prefer stored metrics; fall back to the in-process registry
	items, err := s.Store.ListPlanMetrics(r.Context(), p.Tenant, planDate, algo)
	if err != nil || len(items) == 0 {
		items = items[:0]
		for a, st := range opt.GetStats(p.Tenant, planDate) {
			if algo != "" && a != algo {
				continue
			}
			items = append(items, model.PlanMetrics{Algorithm: a, SolveStats: solveStats(st)})
		}
	}
	if items == nil {
		items = []model.PlanMetrics{}
	}
	writeJSON(w, 200, map[string]any{"items": items})
}
