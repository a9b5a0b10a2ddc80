package api

import (
	"net/http"
	"time"

	"fleetopt/internal/buildinfo"
)

// DebugJSON reports the build and the non-secret parts of the running config.
func (s *Server) DebugJSON(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path)
		return
	}
	c := s.Config
	authMode := ""
	if s.Auth != nil {
		authMode = s.Auth.Mode()
	}
	writeJSON(w, 200, map[string]any{
		"build": buildinfo.Info(),
		"time":  time.Now().UTC().Format(time.RFC3339),
		"config": map[string]any{
			"port":               c.Port,
			"authMode":           authMode,
			"rateRps":            c.RateRPS,
			"rateBurst":          c.RateBurst,
			"webhookMaxAttempts": c.WebhookMaxAttempts,
			"logLevel":           c.LogLevel,
			"matrixCacheSize":    c.MatrixCacheSize,
			"hasDatabaseUrl":     c.DatabaseURL != "",
			"hasRedisUrl":        c.RedisURL != "",
			"optimizer":          c.Optimizer,
		},
	})
}
