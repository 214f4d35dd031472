// Package tools implements the invocable tool layer: a registry of handlers
// that doubles as the catalog source and as the orchestrator's executor.
package tools

import (
	"context"
	"fmt"

	"github.com/mehdi-bk/stevedore/internal/catalog"
	"github.com/mehdi-bk/stevedore/internal/orchestrator"
)

// Handler executes one tool call against already-validated parameters.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Registry maps tool names to handlers and carries the catalog entries the
// handlers advertise. It implements orchestrator.ToolExecutor.
type Registry struct {
	handlers map[string]Handler
	tools    []catalog.Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a tool and its handler. Duplicate names are rejected later by
// the catalog integrity gate, so the last registration wins here.
func (r *Registry) Register(t catalog.Tool, h Handler) {
	if _, exists := r.handlers[t.Name]; !exists {
		r.tools = append(r.tools, t)
	}
	r.handlers[t.Name] = h
}

// Tools returns the catalog entries for every registered tool, in
// registration order.
func (r *Registry) Tools() []catalog.Tool {
	out := make([]catalog.Tool, len(r.tools))
	copy(out, r.tools)
	return out
}

// Invoke runs the named tool. Handler errors are folded into the outcome:
// the orchestrator treats every invocation as an opaque call that either
// succeeded or failed, never as a Go error.
func (r *Registry) Invoke(ctx context.Context, tool string, params map[string]any) orchestrator.InvokeOutcome {
	h, ok := r.handlers[tool]
	if !ok {
		return orchestrator.InvokeOutcome{Error: fmt.Sprintf("unknown tool: %s", tool)}
	}

	data, err := h(ctx, params)
	if err != nil {
		return orchestrator.InvokeOutcome{Error: err.Error()}
	}
	return orchestrator.InvokeOutcome{Success: true, Data: data}
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}

func mapParam(params map[string]any, key string) map[string]any {
	if v, ok := params[key].(map[string]any); ok {
		return v
	}
	return nil
}
