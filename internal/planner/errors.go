package planner

import (
	"fmt"
	"strings"
)

// CyclicDependencyError reports a cycle in a plan's step-dependency graph.
// A cyclic plan is never partially executed: the orchestrator raises this
// before any tool invocation.
type CyclicDependencyError struct {
	// Steps are the step ids participating in (or unreachable because of)
	// the cycle.
	Steps []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency between steps: %s", strings.Join(e.Steps, ", "))
}

// ToolNotFoundError reports a step referencing a tool absent from the
// catalog. Fatal for the referencing step at validation time.
type ToolNotFoundError struct {
	StepID string
	Tool   string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("step %s references unknown tool %q", e.StepID, e.Tool)
}

// ParseError reports model output that could not be parsed into a plan even
// after the repair pass.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
