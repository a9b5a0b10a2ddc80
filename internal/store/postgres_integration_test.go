//go:build postgres_integration

package store

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"fleetopt/internal/model"
)

func TestPostgresConnectivityAndMigrate(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}
	p, err := NewPostgres(dsn)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	defer p.Close()
	if err := p.Ping(t.Context()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := p.Migrate(t.Context()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	plan := model.Plan{ID: uuid.New().String(), TenantID: "t_it", PlanDate: "2026-01-02", Algorithm: "greedy", Status: "completed", CreatedAt: time.Now().UTC()}
	if err := p.SavePlan(t.Context(), plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	got, err := p.GetPlan(t.Context(), plan.TenantID, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.ID != plan.ID {
		t.Fatalf("want %s, got %s", plan.ID, got.ID)
	}
	if _, _, err := p.ListPlans(t.Context(), plan.TenantID, plan.PlanDate, "", 1); err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
}
