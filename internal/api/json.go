package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// problemBase prefixes every problem type URI the service emits.
const problemBase = "https://fleetopt.dev/problems/"

// Problem represents an RFC7807 problem details response body. Type names the
// failure class, derived from Title, so clients can branch on it without
// parsing Detail.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeBody(w, status, "application/json", v)
}

func writeBody(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	writeBody(w, status, "application/problem+json", Problem{
		Type:     problemType(title),
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	})
}

// problemType turns "No feasible plan" into problemBase + "no-feasible-plan".
func problemType(title string) string {
	slug := strings.Join(strings.Fields(strings.ToLower(title)), "-")
	if slug == "" {
		return "about:blank"
	}
	return problemBase + slug
}
