package orchestrator

import (
	"context"

	"github.com/mehdi-bk/stevedore/internal/planner"
)

// StepState is the terminal outcome of one step.
type StepState string

const (
	// StepSucceeded: the tool call completed and reported success.
	StepSucceeded StepState = "succeeded"
	// StepFailed: the tool call completed and reported failure, or errored.
	StepFailed StepState = "failed"
	// StepBlocked: a transitive dependency failed; the step was never invoked.
	StepBlocked StepState = "blocked"
)

// InvokeOutcome is the shape of one tool invocation result at the boundary
// to the command layer.
type InvokeOutcome struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ToolExecutor is the boundary to the tool command layer. The orchestrator
// treats it as an opaque, possibly-failing remote call.
type ToolExecutor interface {
	Invoke(ctx context.Context, tool string, params map[string]any) InvokeOutcome
}

// StepResult records one step's terminal outcome. Steps abandoned by a
// global timeout produce no StepResult at all: late results are discarded,
// not trusted.
type StepResult struct {
	StepID     string    `json:"stepId"`
	State      StepState `json:"state"`
	Data       any       `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"durationMs"`
}

// Result aggregates a plan execution: per-step results keyed by step id,
// the plan's terminal status, and total elapsed time.
type Result struct {
	RequestID       string                `json:"requestId"`
	Status          planner.PlanStatus    `json:"status"`
	Steps           map[string]StepResult `json:"steps"`
	ExecutionTimeMs int64                 `json:"executionTimeMs"`
}
