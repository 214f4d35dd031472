package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxPlanRefinements != 2 {
		t.Errorf("MaxPlanRefinements = %d, want 2", cfg.MaxPlanRefinements)
	}
	if cfg.PlannerTimeout != 30*time.Second {
		t.Errorf("PlannerTimeout = %v, want 30s", cfg.PlannerTimeout)
	}
	if cfg.DBPath != "stevedore.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MAX_PLAN_REFINEMENTS", "0")
	t.Setenv("PLANNER_TIMEOUT_MS", "1500")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_FALLBACK_PROVIDER", "openai")
	t.Setenv("STEVEDORE_DB", "/tmp/alt.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxPlanRefinements != 0 {
		t.Errorf("MaxPlanRefinements = %d, want 0", cfg.MaxPlanRefinements)
	}
	if cfg.PlannerTimeout != 1500*time.Millisecond {
		t.Errorf("PlannerTimeout = %v, want 1.5s", cfg.PlannerTimeout)
	}
	if cfg.LLMProvider != "anthropic" || cfg.LLMFallbackProvider != "openai" {
		t.Errorf("providers = %q/%q", cfg.LLMProvider, cfg.LLMFallbackProvider)
	}
	if cfg.DBPath != "/tmp/alt.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric refinements", "MAX_PLAN_REFINEMENTS", "lots"},
		{"negative refinements", "MAX_PLAN_REFINEMENTS", "-1"},
		{"zero timeout", "PLANNER_TIMEOUT_MS", "0"},
		{"non-numeric timeout", "PLANNER_TIMEOUT_MS", "30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() accepted %s=%q", tt.key, tt.value)
			}
		})
	}
}
