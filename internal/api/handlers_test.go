package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fleetopt/internal/auth"
	"fleetopt/internal/config"
	"fleetopt/internal/model"
	"fleetopt/internal/store"
)

const testDate = "2026-03-02"

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	cfg := config.Default()
	cfg.RateRPS = 0
	mem := store.NewMemory()
	s := newServer(cfg, mem, NewBroker(), store.NewMemoryMatrixCache(16))
	s.Auth = auth.NewVerifier(auth.Settings{})
	return s, mem
}

// do sends body as JSON through the full middleware stack. hdr alternates
// header names and values.
func do(t *testing.T, h http.Handler, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// optimizeBody is six stops around a depot in central Sao Paulo, each about a
// kilometer apart, with demand 2.
func optimizeBody(extra map[string]any) map[string]any {
	stops := []map[string]any{}
	offsets := [][2]float64{{0.01, 0}, {0.01, 0.01}, {0, 0.01}, {-0.01, 0.01}, {-0.01, 0}, {-0.01, -0.01}}
	for i, o := range offsets {
		stops = append(stops, map[string]any{
			"name":     "S" + string(rune('1'+i)),
			"location": map[string]float64{"lat": -23.5505 + o[0], "lng": -46.6333 + o[1]},
			"demand":   2,
		})
	}
	b := map[string]any{
		"planDate": testDate,
		"depot":    map[string]any{"name": "DC", "lat": -23.5505, "lng": -46.6333},
		"stops":    stops,
		"vehicles": 2,
	}
	for k, v := range extra {
		b[k] = v
	}
	return b
}

func decodePlan(t *testing.T, rr *httptest.ResponseRecorder) model.Plan {
	t.Helper()
	if rr.Code != 200 {
		t.Fatalf("optimize: got %d %s", rr.Code, rr.Body.String())
	}
	var plan model.Plan
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	return plan
}

func visited(plan model.Plan) map[int]int {
	seen := map[int]int{}
	for _, rt := range plan.Routes {
		for _, st := range rt.Stops[1 : len(rt.Stops)-1] {
			seen[st.Index]++
		}
	}
	return seen
}

func TestHealthReady(t *testing.T) {
	s, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestOptimizeGreedyAndFetch(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	plan := decodePlan(t, do(t, h, http.MethodPost, "/v1/optimize", optimizeBody(map[string]any{"algorithm": "greedy"})))

	if plan.Algorithm != "nearest_neighbor" || plan.Status != PlanCompleted || plan.TenantID != "t_demo" {
		t.Fatalf("unexpected plan header %+v", plan)
	}
	seen := visited(plan)
	if len(seen)+len(plan.Dropped) != 6 {
		t.Fatalf("want 6 stops covered, got %v dropped %v", seen, plan.Dropped)
	}
	for _, rt := range plan.Routes {
		if rt.Stops[0].Index != 0 || rt.Stops[len(rt.Stops)-1].Index != 0 || rt.Stops[0].Name != "DC" {
			t.Fatalf("route should start and end at depot: %+v", rt.Stops)
		}
		if rt.Load != nil {
			t.Fatalf("load reported without capacities: %v", *rt.Load)
		}
	}

	rr := do(t, h, http.MethodGet, "/v1/plans/"+plan.ID, nil)
	if got := decodePlan(t, rr); got.ID != plan.ID || len(got.Routes) != len(plan.Routes) {
		t.Fatalf("stored plan mismatch: %+v", got)
	}
	rr = do(t, h, http.MethodGet, "/v1/plans?planDate="+testDate, nil)
	var page struct {
		Items []model.Plan `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil || len(page.Items) != 1 {
		t.Fatalf("list plans: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodGet, "/v1/plans?planDate="+testDate, nil, "X-Tenant-Id", "t_other")
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil || len(page.Items) != 0 {
		t.Fatalf("plans leaked across tenants: %s", rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/v1/plans/"+plan.ID+"/geojson", nil)
	if rr.Code != 200 || rr.Header().Get("Content-Type") != "application/geo+json" {
		t.Fatalf("geojson: %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1+len(plan.Routes)+len(plan.Dropped) {
		t.Fatalf("unexpected feature collection %+v", fc)
	}
	if fc.Features[0].Geometry.Type != "Point" || fc.Features[1].Geometry.Type != "LineString" {
		t.Fatalf("want depot point then route lines, got %s %s", fc.Features[0].Geometry.Type, fc.Features[1].Geometry.Type)
	}
}

func TestOptimizeSearch(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	for _, ls := range []string{"NONE", "GUIDED_LOCAL_SEARCH"} {
		t.Run(ls, func(t *testing.T) {
			plan := decodePlan(t, do(t, h, http.MethodPost, "/v1/optimize", optimizeBody(map[string]any{
				"algorithm":        "search",
				"vehicleCapacity":  8,
				"localSearch":      ls,
				"timeLimitSeconds": 1,
				"seed":             3,
			})))
			if plan.Algorithm != "constraint_search" || len(plan.Dropped) != 0 {
				t.Fatalf("unexpected plan %+v", plan)
			}
			seen := visited(plan)
			if len(seen) != 6 {
				t.Fatalf("every stop must be routed once, got %v", seen)
			}
			for _, rt := range plan.Routes {
				if rt.Load == nil || *rt.Load > 8 {
					t.Fatalf("route load over capacity: %+v", rt)
				}
				if rt.DistanceM > 100000 {
					t.Fatalf("route exceeds default distance limit: %v", rt.DistanceM)
				}
			}
			if plan.Stats == nil || plan.Stats.Strategy != "PATH_CHEAPEST_ARC" || plan.Stats.LocalSearch != ls {
				t.Fatalf("unexpected stats %+v", plan.Stats)
			}
		})
	}

	rr := do(t, h, http.MethodGet, "/v1/admin/plan-metrics?planDate="+testDate, nil)
	var out struct {
		Items []model.PlanMetrics `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil || len(out.Items) != 1 || out.Items[0].Algorithm != "constraint_search" {
		t.Fatalf("plan metrics: %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, h, http.MethodGet, "/v1/admin/plan-metrics", nil); rr.Code != 400 {
		t.Fatalf("missing planDate: got %d", rr.Code)
	}
}

func TestOptimizeInfeasible(t *testing.T) {
	s, mem := newTestServer(t)
	h := s.Routes()
	ctx := context.Background()
	if _, err := mem.CreateSubscription(ctx, model.SubscriptionRequest{TenantID: "t_demo", URL: "http://hook", Events: []string{model.EventPlanFailed}}); err != nil {
		t.Fatal(err)
	}
	body := optimizeBody(map[string]any{"algorithm": "search", "vehicles": 1, "vehicleCapacity": 5, "localSearch": "NONE"})
	body["stops"].([]map[string]any)[0]["demand"] = 6

	rr := do(t, h, http.MethodPost, "/v1/optimize", body)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("want 422, got %d %s", rr.Code, rr.Body.String())
	}
	due, _ := mem.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 1 || due[0].EventType != model.EventPlanFailed {
		t.Fatalf("want one plan.failed delivery, got %+v", due)
	}

	body["fallbackGreedy"] = true
	plan := decodePlan(t, do(t, h, http.MethodPost, "/v1/optimize", body))
	if plan.Status != PlanFallback || plan.Algorithm != "nearest_neighbor" {
		t.Fatalf("want greedy fallback, got %s %s", plan.Status, plan.Algorithm)
	}

	// a 10 m ceiling cannot reach stops a kilometer out
	body = optimizeBody(map[string]any{"maxDistanceM": 10, "localSearch": "NONE"})
	if rr := do(t, h, http.MethodPost, "/v1/optimize", body); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("distance ceiling: want 422, got %d", rr.Code)
	}
	body["maxDistanceM"] = 0
	decodePlan(t, do(t, h, http.MethodPost, "/v1/optimize", body))
}

func TestOptimizeValidation(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	cases := []struct {
		name   string
		body   any
		detail string
	}{
		{"invalid json", `{"planDate":`, ""},
		{"missing plan date", optimizeBody(map[string]any{"planDate": ""}), "planDate is required"},
		{"bad plan date", optimizeBody(map[string]any{"planDate": "03/02/2026"}), "planDate must be a date"},
		{"no vehicles", optimizeBody(map[string]any{"vehicles": 0}), "vehicles is required"},
		{"no stops", optimizeBody(map[string]any{"stops": []any{}}), "stops must have at least 1 entries"},
		{"bad latitude", optimizeBody(map[string]any{"stops": []any{map[string]any{"location": map[string]float64{"lat": 95, "lng": 0}}}}), "stops[0].location.lat"},
		{"bad algorithm", optimizeBody(map[string]any{"algorithm": "alns"}), "algorithm must be one of"},
		{"capacities count", optimizeBody(map[string]any{"capacities": []int{5}}), "one per vehicle"},
		{"both capacities", optimizeBody(map[string]any{"capacities": []int{5, 5}, "vehicleCapacity": 5}), "mutually exclusive"},
		{"bad method", optimizeBody(map[string]any{"method": "manhattan"}), "unsupported distance method"},
		{"bad local search", optimizeBody(map[string]any{"localSearch": "ANNEAL"}), "localSearch"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/v1/optimize", tc.body)
			if rr.Code != 400 {
				t.Fatalf("want 400, got %d %s", rr.Code, rr.Body.String())
			}
			var p Problem
			_ = json.Unmarshal(rr.Body.Bytes(), &p)
			if !strings.Contains(p.Detail, tc.detail) {
				t.Fatalf("detail %q does not mention %q", p.Detail, tc.detail)
			}
		})
	}
}

func TestOptimizeRoles(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	if rr := do(t, h, http.MethodPost, "/v1/optimize", optimizeBody(nil), "X-Role", "viewer"); rr.Code != 403 {
		t.Fatalf("viewer: want 403, got %d", rr.Code)
	}
	body := optimizeBody(map[string]any{"tenantId": "t_other", "algorithm": "greedy"})
	if rr := do(t, h, http.MethodPost, "/v1/optimize", body, "X-Role", "dispatcher"); rr.Code != 403 {
		t.Fatalf("cross tenant dispatcher: want 403, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/v1/optimize", body, "Authorization", "Bearer t_demo:dispatcher"); rr.Code != 403 {
		t.Fatalf("cross tenant token: want 403, got %d", rr.Code)
	}
	body["tenantId"] = "t_demo"
	decodePlan(t, do(t, h, http.MethodPost, "/v1/optimize", body, "Authorization", "Bearer t_demo:dispatcher"))
	if rr := do(t, h, http.MethodPost, "/v1/optimize", body, "Authorization", "Bearer garbage"); rr.Code != 401 {
		t.Fatalf("bad token: want 401, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/v1/optimize", nil); rr.Code != 405 {
		t.Fatalf("GET optimize: want 405, got %d", rr.Code)
	}
}

func TestDistanceMatrix(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	body := map[string]any{
		"method":    "planar",
		"locations": []map[string]float64{{"lat": 0, "lng": 0}, {"lat": 0, "lng": 3}, {"lat": 4, "lng": 0}},
	}
	var out model.DistanceMatrixResponse
	for i, wantCached := range []bool{false, true} {
		rr := do(t, h, http.MethodPost, "/v1/distance-matrix", body)
		if rr.Code != 200 {
			t.Fatalf("matrix %d: %d %s", i, rr.Code, rr.Body.String())
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatal(err)
		}
		if out.Cached != wantCached {
			t.Fatalf("request %d: cached=%v, want %v", i, out.Cached, wantCached)
		}
		if out.Matrix[0][1] != 3 || out.Matrix[0][2] != 4 || out.Matrix[1][2] != 5 || out.Matrix[2][1] != 5 {
			t.Fatalf("unexpected matrix %v", out.Matrix)
		}
	}
	body["method"] = "manhattan"
	if rr := do(t, h, http.MethodPost, "/v1/distance-matrix", body); rr.Code != 400 {
		t.Fatalf("unsupported method: want 400, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPost, "/v1/distance-matrix", map[string]any{"locations": []any{}}); rr.Code != 400 {
		t.Fatalf("empty locations: want 400, got %d", rr.Code)
	}
}

func TestOptimizerConfig(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	put := map[string]any{"config": map[string]any{"algorithm": "greedy", "timeLimitSeconds": 5}}
	if rr := do(t, h, http.MethodPut, "/v1/admin/optimizer/config", put, "X-Role", "viewer"); rr.Code != 403 {
		t.Fatalf("viewer put: want 403, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodPut, "/v1/admin/optimizer/config", put); rr.Code != 200 {
		t.Fatalf("put: %d %s", rr.Code, rr.Body.String())
	}
	bad := map[string]any{"config": map[string]any{"localSearch": "ANNEAL"}}
	if rr := do(t, h, http.MethodPut, "/v1/admin/optimizer/config", bad); rr.Code != 400 {
		t.Fatalf("bad config: want 400, got %d", rr.Code)
	}

	rr := do(t, h, http.MethodGet, "/v1/optimizer/config", nil, "X-Role", "viewer")
	var out struct {
		Defaults model.OptimizerConfig `json:"defaults"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	d := out.Defaults
	if d.Algorithm != "greedy" || d.TimeLimitSeconds != 5 || d.LocalSearch != "GUIDED_LOCAL_SEARCH" || d.MaxDistanceM != 100000 {
		t.Fatalf("unexpected effective config %+v", d)
	}

	// tenant default algorithm applies when the request names none
	plan := decodePlan(t, do(t, h, http.MethodPost, "/v1/optimize", optimizeBody(nil)))
	if plan.Algorithm != "nearest_neighbor" {
		t.Fatalf("want tenant default greedy, got %s", plan.Algorithm)
	}
}

func TestSubscriptions(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	rr := do(t, h, http.MethodPost, "/v1/subscriptions", map[string]any{"url": "https://example.com/hook", "events": []string{"plan.completed"}, "secret": "x"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	var sub model.Subscription
	_ = json.Unmarshal(rr.Body.Bytes(), &sub)
	if sub.ID == "" || sub.TenantID != "t_demo" {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if rr := do(t, h, http.MethodPost, "/v1/subscriptions", map[string]any{"url": "https://example.com/hook", "events": []string{"route.created"}}); rr.Code != 400 {
		t.Fatalf("bad event: want 400, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/v1/subscriptions", nil, "X-Role", "dispatcher"); rr.Code != 403 {
		t.Fatalf("dispatcher list: want 403, got %d", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/v1/subscriptions", nil)
	var page struct {
		Items []model.Subscription `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil || len(page.Items) != 1 {
		t.Fatalf("list: %s", rr.Body.String())
	}
	if rr := do(t, h, http.MethodDelete, "/v1/subscriptions/"+sub.ID, nil); rr.Code != 204 {
		t.Fatalf("delete: got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodDelete, "/v1/subscriptions/"+sub.ID, nil); rr.Code != 404 {
		t.Fatalf("second delete: want 404, got %d", rr.Code)
	}
}

func TestPlanNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	for _, p := range []string{"/v1/plans/missing", "/v1/plans/missing/geojson", "/v1/plans/x/other"} {
		if rr := do(t, h, http.MethodGet, p, nil); rr.Code != 404 {
			t.Fatalf("%s: want 404, got %d", p, rr.Code)
		}
	}
}

func TestProblemResponse(t *testing.T) {
	s, _ := newTestServer(t)
	rr := do(t, s.Routes(), http.MethodGet, "/v1/plans/missing", nil)
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type: %q", ct)
	}
	var p Problem
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Type != "https://fleetopt.dev/problems/plan-not-found" || p.Status != 404 {
		t.Fatalf("unexpected problem %+v", p)
	}
	if got := problemType("  "); got != "about:blank" {
		t.Fatalf("blank title: %q", got)
	}
}

func TestPlanEventsWebSocket(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	hdr := http.Header{}
	hdr.Set("X-Tenant-Id", "t_ws")
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/v1/plans/events/ws", hdr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := c.WriteJSON(wsMessage{Type: "subscribe", PlanDate: testDate}); err != nil {
		t.Fatal(err)
	}
	var msg wsMessage
	if err := c.ReadJSON(&msg); err != nil || msg.Type != "subscribed" || msg.PlanDate != testDate {
		t.Fatalf("subscribe ack: %+v %v", msg, err)
	}

	data, _ := json.Marshal(optimizeBody(map[string]any{"algorithm": "greedy"}))
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/optimize", bytes.NewReader(data))
	req.Header.Set("X-Tenant-Id", "t_ws")
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	var plan model.Plan
	_ = json.NewDecoder(resp.Body).Decode(&plan)
	resp.Body.Close()

	if err := c.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if msg.Type != "event" || msg.Event == nil || msg.Event.Type != model.EventPlanCompleted || msg.Event.PlanID != plan.ID {
		t.Fatalf("unexpected event %+v", msg)
	}

	if err := c.WriteJSON(wsMessage{Type: "ping"}); err != nil {
		t.Fatal(err)
	}
	if err := c.ReadJSON(&msg); err != nil || msg.Type != "pong" {
		t.Fatalf("pong: %+v %v", msg, err)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 1
	s := newServer(cfg, store.NewMemory(), NewBroker(), store.NewMemoryMatrixCache(4))
	s.Auth = auth.NewVerifier(auth.Settings{})
	h := s.Routes()
	if rr := do(t, h, http.MethodGet, "/v1/plans", nil); rr.Code != 200 {
		t.Fatalf("first request: got %d", rr.Code)
	}
	rr := do(t, h, http.MethodGet, "/v1/plans", nil)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("second request: want 429, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/healthz", nil); rr.Code != 200 {
		t.Fatalf("health is not limited, got %d", rr.Code)
	}
}

func TestOpsEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()
	rr := do(t, h, http.MethodGet, "/openapi.json", nil)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"openapi"`) {
		t.Fatalf("openapi json: %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/openapi.yaml", nil); rr.Code != 200 {
		t.Fatalf("openapi yaml: %d", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/debug/info", nil)
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), `"build"`) {
		t.Fatalf("debug: %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, h, http.MethodGet, "/debug/info", nil, "X-Role", "viewer"); rr.Code != 403 {
		t.Fatalf("debug as viewer: want 403, got %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/metrics", nil); rr.Code != 200 {
		t.Fatalf("metrics: %d", rr.Code)
	}
}

func TestRouteLabel(t *testing.T) {
	cases := map[string]string{
		"/v1/plans":                  "/v1/plans",
		"/v1/plans/abc":              "/v1/plans/{id}",
		"/v1/plans/abc/geojson":      "/v1/plans/{id}/geojson",
		"/v1/plans/events/ws":        "/v1/plans/events/ws",
		"/v1/subscriptions/s1":       "/v1/subscriptions/{id}",
		"/v1/admin/optimizer/config": "/v1/admin/optimizer/config",
	}
	for in, want := range cases {
		if got := routeLabel(in); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
