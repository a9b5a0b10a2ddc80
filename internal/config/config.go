// Package config loads service settings from an optional YAML file overlaid
// by environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"fleetopt/internal/model"
)

type Config struct {
	Port               string        `yaml:"port"`
	DatabaseURL        string        `yaml:"databaseUrl"`
	DBMigrate          bool          `yaml:"dbMigrate"`
	RedisURL           string        `yaml:"redisUrl"`
	RateRPS            float64       `yaml:"rateRps"`
	RateBurst          int           `yaml:"rateBurst"`
	WebhookMaxAttempts int           `yaml:"webhookMaxAttempts"`
	LogLevel           string        `yaml:"logLevel"`
	MatrixCacheSize    int           `yaml:"matrixCacheSize"`
	MatrixCacheTTL     time.Duration `yaml:"matrixCacheTtl"`
	ShutdownTimeout    time.Duration `yaml:"shutdownTimeout"`

	Optimizer model.OptimizerConfig `yaml:"optimizer"`
}

func Default() Config {
	fallback := false
	return Config{
		Port:               "8080",
		DBMigrate:          true,
		RateRPS:            20,
		RateBurst:          40,
		WebhookMaxAttempts: 10,
		LogLevel:           "info",
		MatrixCacheSize:    256,
		MatrixCacheTTL:     24 * time.Hour,
		ShutdownTimeout:    10 * time.Second,
		Optimizer: model.OptimizerConfig{
			Algorithm:            "search",
			TimeLimitSeconds:     30,
			ConstructionStrategy: "PATH_CHEAPEST_ARC",
			LocalSearch:          "GUIDED_LOCAL_SEARCH",
			MaxDistanceM:         100000,
			Method:               "great_circle",
			FallbackGreedy:       &fallback,
		},
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty and finally the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("PORT", &c.Port)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_URL", &c.RedisURL)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("DB_MIGRATE"); ok && v != "" {
		c.DBMigrate = v != "false"
	}
	if v, ok := lookup("RATE_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_RPS: %w", err)
		}
		c.RateRPS = f
	}
	ints := []struct {
		key string
		dst *int
	}{
		{"RATE_BURST", &c.RateBurst},
		{"WEBHOOK_MAX_ATTEMPTS", &c.WebhookMaxAttempts},
		{"MATRIX_CACHE_SIZE", &c.MatrixCacheSize},
		{"OPTIMIZER_TIME_LIMIT_SECONDS", &c.Optimizer.TimeLimitSeconds},
	}
	for _, it := range ints {
		if v, ok := lookup(it.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", it.key, err)
			}
			*it.dst = n
		}
	}
	return nil
}
