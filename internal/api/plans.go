package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"fleetopt/internal/model"
	"fleetopt/internal/store"
)

// PlansHandler lists the tenant's plans, optionally for one plan date.
func (s *Server) PlansHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/plans" {
		writeProblem(w, 404, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit := 50
	if v := q.Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListPlans(r.Context(), p.Tenant, q.Get("planDate"), q.Get("cursor"), limit)
	if err != nil {
		writeProblem(w, 500, "List plans failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, 200, map[string]any{"items": items, "nextCursor": next})
}

// PlanByIDHandler serves GET /v1/plans/{id} and GET /v1/plans/{id}/geojson.
func (s *Server) PlanByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/plans/"), "/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" || (sub != "" && sub != "geojson") {
		writeProblem(w, 404, "Not Found", "", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return
	}
	plan, err := s.Store.GetPlan(r.Context(), p.Tenant, id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, 404, "Plan not found", id, r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, 500, "Get plan failed", err.Error(), r.URL.Path)
		return
	}
	if sub == "" {
		writeJSON(w, 200, plan)
		return
	}
	b, err := planGeoJSON(plan).MarshalJSON()
	if err != nil {
		writeProblem(w, 500, "GeoJSON encode failed", err.Error(), r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(200)
	_, _ = w.Write(b)
}

// planGeoJSON renders the depot as a Point and every route as a LineString,
// depot to depot.
func planGeoJSON(plan model.Plan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	depot := geojson.NewFeature(orb.Point{plan.Depot.Lng, plan.Depot.Lat})
	depot.Properties["kind"] = "depot"
	depot.Properties["name"] = plan.Depot.Name
	fc.Append(depot)

	for _, rt := range plan.Routes {
		line := make(orb.LineString, 0, len(rt.Stops))
		names := make([]string, 0, len(rt.Stops))
		for _, st := range rt.Stops {
			line = append(line, orb.Point{st.Location.Lng, st.Location.Lat})
			names = append(names, st.Name)
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["vehicle"] = rt.Vehicle
		f.Properties["distanceM"] = rt.DistanceM
		f.Properties["stops"] = names
		if rt.Load != nil {
			f.Properties["load"] = *rt.Load
		}
		fc.Append(f)
	}
	for _, st := range plan.Dropped {
		f := geojson.NewFeature(orb.Point{st.Location.Lng, st.Location.Lat})
		f.Properties["kind"] = "dropped"
		f.Properties["name"] = st.Name
		fc.Append(f)
	}
	return fc
}
