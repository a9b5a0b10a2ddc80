package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.Optimizer.TimeLimitSeconds)
	assert.Equal(t, "PATH_CHEAPEST_ARC", cfg.Optimizer.ConstructionStrategy)
	assert.Equal(t, "GUIDED_LOCAL_SEARCH", cfg.Optimizer.LocalSearch)
	assert.Equal(t, 100000.0, cfg.Optimizer.MaxDistanceM)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleetopt.yaml")
	yml := `
port: "9090"
rateRps: 5
matrixCacheTtl: 1h
optimizer:
  localSearch: TABU_SEARCH
  maxDistanceM: 50000
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("PORT", "7070")
	t.Setenv("RATE_BURST", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 5.0, cfg.RateRPS)
	assert.Equal(t, 3, cfg.RateBurst)
	assert.Equal(t, time.Hour, cfg.MatrixCacheTTL)
	assert.Equal(t, "TABU_SEARCH", cfg.Optimizer.LocalSearch)
	assert.Equal(t, 50000.0, cfg.Optimizer.MaxDistanceM)
	// untouched optimizer fields keep their defaults
	assert.Equal(t, "PATH_CHEAPEST_ARC", cfg.Optimizer.ConstructionStrategy)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	cfg := Default()
	env := map[string]string{"WEBHOOK_MAX_ATTEMPTS": "many"}
	err := cfg.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
