package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/exp/slog"

	"fleetopt/internal/geo"
	"fleetopt/internal/metrics"
	"fleetopt/internal/model"
	"fleetopt/internal/store"
)

// DistanceMatrixHandler returns the pairwise distance matrix for the posted locations.
func (s *Server) DistanceMatrixHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := s.requirePrincipal(w, r); !ok {
		return
	}
	var req model.DistanceMatrixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if errs := s.checkStruct(req); len(errs) > 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid distance matrix request", strings.Join(errs, "; "), r.URL.Path)
		return
	}
	method, err := geo.ParseMethod(req.Method)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Unsupported method", err.Error(), r.URL.Path)
		return
	}
	pts := make([]geo.Point, len(req.Locations))
	for i, l := range req.Locations {
		pts[i] = geo.Point{Lat: l.Lat, Lng: l.Lng}
	}
	m, cached, err := s.distanceMatrix(r.Context(), method, pts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, geo.ErrUnsupportedMethod) {
			status = http.StatusBadRequest
		}
		writeProblem(w, status, "Distance matrix failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, model.DistanceMatrixResponse{Method: string(method), Matrix: m, Cached: cached})
}

// distanceMatrix serves pts from the matrix cache and fills it on a miss.
// Cache failures only cost a rebuild.
func (s *Server) distanceMatrix(ctx context.Context, method geo.Method, pts []geo.Point) ([][]float64, bool, error) {
	key := store.MatrixKey(method, pts)
	if s.Matrix != nil {
		m, ok, err := s.Matrix.Get(ctx, key)
		switch {
		case err != nil:
			metrics.MatrixCacheRequests.WithLabelValues("error").Inc()
			slog.Warn("matrix cache get", "key", key, "err", err)
		case ok && len(m) == len(pts):
			metrics.MatrixCacheRequests.WithLabelValues("hit").Inc()
			return m, true, nil
		default:
			metrics.MatrixCacheRequests.WithLabelValues("miss").Inc()
		}
	}
	m, err := geo.BuildMatrix(pts, method)
	if err != nil {
		return nil, false, err
	}
	if s.Matrix != nil {
		if err := s.Matrix.Set(ctx, key, m); err != nil {
			slog.Warn("matrix cache set", "key", key, "err", err)
		}
	}
	return m, false, nil
}
