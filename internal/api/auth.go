package api

import (
	"net/http"
	"strings"

	"fleetopt/internal/auth"
)

type Principal struct {
	Tenant string
	Role   string // admin, dispatcher, viewer
}

// getPrincipal extracts tenant and role from the bearer token. In dev mode a
// request without a token falls back to the X-Tenant-Id and X-Role headers.
func (s *Server) getPrincipal(r *http.Request) Principal {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
		tok := strings.TrimSpace(authz[len("Bearer "):])
		if pr, err := s.Auth.Verify(tok); err == nil {
			return Principal{Tenant: pr.Tenant, Role: pr.Role}
		}
		return Principal{}
	}
	if s.Auth != nil && s.Auth.Mode() != "dev" {
		return Principal{}
	}
	tenant := r.Header.Get("X-Tenant-Id")
	role := strings.ToLower(r.Header.Get("X-Role"))
	if tenant == "" {
		tenant = "t_demo"
	}
	if role == "" {
		role = auth.RoleAdmin
	}
	return Principal{Tenant: tenant, Role: role}
}

func (p Principal) Authenticated() bool { return p.Tenant != "" }

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == auth.RoleAdmin }

// CanOptimize reports whether the principal may submit solves.
func (p Principal) CanOptimize() bool { return p.IsAdmin() || p.Role == auth.RoleDispatcher }

// requirePrincipal writes a 401 problem and returns false when r carries no
// usable identity.
func (s *Server) requirePrincipal(w http.ResponseWriter, r *http.Request) (Principal, bool) {
	p := s.getPrincipal(r)
	if !p.Authenticated() {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "valid bearer token required", r.URL.Path)
		return p, false
	}
	return p, true
}
