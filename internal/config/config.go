// Package config reads runtime settings from the environment. Callers load
// .env files (via godotenv) before calling Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultMaxPlanRefinements = 2
	defaultPlannerTimeoutMs   = 30000
	defaultDBPath             = "stevedore.db"
)

// Config holds the planner and orchestrator runtime settings.
type Config struct {
	// MaxPlanRefinements bounds retry attempts after a failed generation.
	MaxPlanRefinements int
	// PlannerTimeout caps wall-clock execution of a plan.
	PlannerTimeout time.Duration
	// LLMProvider selects the completion vendor (openai, anthropic, ...).
	LLMProvider string
	// LLMFallbackProvider, if set, is tried when the primary fails.
	LLMFallbackProvider string
	// DBPath is the SQLite file backing plans and documents.
	DBPath string
}

// Load reads configuration from environment variables, applying defaults
// for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		MaxPlanRefinements:  defaultMaxPlanRefinements,
		PlannerTimeout:      defaultPlannerTimeoutMs * time.Millisecond,
		LLMProvider:         os.Getenv("LLM_PROVIDER"),
		LLMFallbackProvider: os.Getenv("LLM_FALLBACK_PROVIDER"),
		DBPath:              defaultDBPath,
	}

	if v := os.Getenv("MAX_PLAN_REFINEMENTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid MAX_PLAN_REFINEMENTS %q", v)
		}
		cfg.MaxPlanRefinements = n
	}

	if v := os.Getenv("PLANNER_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid PLANNER_TIMEOUT_MS %q", v)
		}
		cfg.PlannerTimeout = time.Duration(ms) * time.Millisecond
	}

	if v := os.Getenv("STEVEDORE_DB"); v != "" {
		cfg.DBPath = v
	}

	return cfg, nil
}
