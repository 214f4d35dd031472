// Package planner turns a free-text query into a validated, dependency-
// ordered plan of tool invocations by driving an external completion
// provider, repairing its output, and re-validating with bounded refinement
// retries.
package planner

import (
	"time"

	"github.com/mehdi-bk/stevedore/internal/complexity"
)

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	StatusPending   PlanStatus = "pending"
	StatusRunning   PlanStatus = "running"
	StatusCompleted PlanStatus = "completed"
	StatusFailed    PlanStatus = "failed"
	StatusTimedOut  PlanStatus = "timed_out"
)

// Terminal reports whether a status is final. A plan is never mutated after
// reaching a terminal status.
func (s PlanStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusTimedOut
}

// Step is one tool invocation with parameters and declared dependencies.
// Parallel is advisory: the author declares the step has no ordering
// requirement beyond DependsOn. Actual concurrency is governed by the
// dependency graph and the strategy's parallelism budget.
type Step struct {
	ID        string         `json:"id"`
	Tool      string         `json:"tool"`
	Params    map[string]any `json:"params,omitempty"`
	DependsOn []string       `json:"dependsOn,omitempty"`
	Parallel  bool           `json:"parallel,omitempty"`
}

// Plan is the structured output of the generator: an ordered set of steps
// plus status and metadata.
type Plan struct {
	RequestID        string                        `json:"requestId"`
	Query            string                        `json:"query"`
	Steps            []Step                        `json:"steps"`
	Status           PlanStatus                    `json:"status"`
	Strategy         complexity.ExecutionStrategy  `json:"strategy"`
	GenerationTimeMs int64                         `json:"generationTimeMs,omitempty"`
	ExecutionTimeMs  int64                         `json:"executionTimeMs,omitempty"`
	ValidationErrors []string                      `json:"validationErrors,omitempty"`
	CreatedAt        time.Time                     `json:"createdAt"`
}

// StepByID returns the step with the given id, if present.
func (p *Plan) StepByID(id string) (Step, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}
