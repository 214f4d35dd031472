package orchestrator

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mehdi-bk/stevedore/internal/complexity"
	"github.com/mehdi-bk/stevedore/internal/planner"
)

// fakeExecutor records invocations and returns scripted outcomes per tool.
type fakeExecutor struct {
	mu       sync.Mutex
	invoked  []string
	failing  map[string]bool
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeExecutor) Invoke(ctx context.Context, tool string, params map[string]any) InvokeOutcome {
	cur := f.inFlight.Add(1)
	for {
		max := f.maxSeen.Load()
		if cur <= max || f.maxSeen.CompareAndSwap(max, cur) {
			break
		}
	}
	defer f.inFlight.Add(-1)

	f.mu.Lock()
	f.invoked = append(f.invoked, tool)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return InvokeOutcome{Success: false, Error: ctx.Err().Error()}
		}
	}

	if f.failing[tool] {
		return InvokeOutcome{Success: false, Error: "tool exploded"}
	}
	return InvokeOutcome{Success: true, Data: map[string]any{"tool": tool}}
}

func (f *fakeExecutor) invocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.invoked))
	copy(out, f.invoked)
	return out
}

func testPlan(maxParallel int, steps ...planner.Step) *planner.Plan {
	return &planner.Plan{
		RequestID: "req-test",
		Status:    planner.StatusPending,
		Steps:     steps,
		Strategy: complexity.ExecutionStrategy{
			Strategy:         complexity.StrategyMedium,
			MaxParallelSteps: maxParallel,
		},
	}
}

func TestExecuteDiamondDependencies(t *testing.T) {
	exec := &fakeExecutor{}
	o := New(exec, nil, time.Minute, nil)

	plan := testPlan(3,
		planner.Step{ID: "a", Tool: "facilities_list"},
		planner.Step{ID: "b", Tool: "shipments_list"},
		planner.Step{ID: "c", Tool: "documents_get", DependsOn: []string{"a", "b"}},
	)

	res, err := o.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Status != planner.StatusCompleted {
		t.Errorf("Status = %s, want completed", res.Status)
	}
	if len(res.Steps) != 3 {
		t.Fatalf("got %d step results, want 3", len(res.Steps))
	}

	// c runs strictly after both a and b.
	invoked := exec.invocations()
	if invoked[len(invoked)-1] != "documents_get" {
		t.Errorf("dependent step ran before its dependencies: %v", invoked)
	}
	if plan.Status != planner.StatusCompleted {
		t.Errorf("plan left in %s", plan.Status)
	}
}

func TestExecuteFailureBlocksDependents(t *testing.T) {
	exec := &fakeExecutor{failing: map[string]bool{"facilities_list": true}}
	o := New(exec, nil, time.Minute, nil)

	plan := testPlan(3,
		planner.Step{ID: "a", Tool: "facilities_list"},
		planner.Step{ID: "b", Tool: "shipments_list"},
		planner.Step{ID: "c", Tool: "documents_get", DependsOn: []string{"a", "b"}},
	)

	res, err := o.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Status != planner.StatusFailed {
		t.Errorf("Status = %s, want failed", res.Status)
	}
	if res.Steps["a"].State != StepFailed {
		t.Errorf("a state = %s, want failed", res.Steps["a"].State)
	}
	if res.Steps["b"].State != StepSucceeded {
		t.Errorf("b state = %s, want succeeded (independent branch)", res.Steps["b"].State)
	}
	if res.Steps["c"].State != StepBlocked {
		t.Errorf("c state = %s, want blocked", res.Steps["c"].State)
	}

	// The blocked step was never invoked.
	for _, tool := range exec.invocations() {
		if tool == "documents_get" {
			t.Error("blocked step was invoked")
		}
	}
}

func TestExecuteCycleFailsBeforeAnyInvocation(t *testing.T) {
	exec := &fakeExecutor{}
	o := New(exec, nil, time.Minute, nil)

	plan := testPlan(1,
		planner.Step{ID: "a", Tool: "shipments_list", DependsOn: []string{"b"}},
		planner.Step{ID: "b", Tool: "facilities_list", DependsOn: []string{"a"}},
	)

	res, err := o.Execute(context.Background(), plan)
	if err == nil {
		t.Fatal("Execute() on a cyclic plan should error")
	}
	var cyc *planner.CyclicDependencyError
	if !errors.As(err, &cyc) {
		t.Errorf("error = %T, want *planner.CyclicDependencyError", err)
	}
	if res.Status != planner.StatusFailed {
		t.Errorf("Status = %s, want failed", res.Status)
	}
	if got := len(exec.invocations()); got != 0 {
		t.Errorf("%d tools invoked on a cyclic plan, want 0", got)
	}
}

func TestExecuteHonorsParallelismBound(t *testing.T) {
	exec := &fakeExecutor{delay: 20 * time.Millisecond}
	o := New(exec, nil, time.Minute, nil)

	steps := make([]planner.Step, 6)
	tools := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
	for i, tool := range tools {
		steps[i] = planner.Step{ID: tool, Tool: tool}
	}

	plan := testPlan(2, steps...)
	if _, err := o.Execute(context.Background(), plan); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if max := exec.maxSeen.Load(); max > 2 {
		t.Errorf("observed %d concurrent invocations, bound is 2", max)
	}
}

func TestExecuteTimesOut(t *testing.T) {
	exec := &fakeExecutor{delay: 200 * time.Millisecond}
	o := New(exec, nil, 30*time.Millisecond, nil)

	plan := testPlan(1,
		planner.Step{ID: "a", Tool: "slow_tool"},
		planner.Step{ID: "b", Tool: "never_reached", DependsOn: []string{"a"}},
	)

	res, err := o.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Status != planner.StatusTimedOut {
		t.Errorf("Status = %s, want timed_out", res.Status)
	}
	if _, ok := res.Steps["a"]; ok {
		t.Error("abandoned in-flight step produced a result; late outcomes must be discarded")
	}
	for _, tool := range exec.invocations() {
		if tool == "never_reached" {
			t.Error("wave after timeout was started")
		}
	}
}

type countingStore struct {
	mu    sync.Mutex
	saves []planner.PlanStatus
}

func (c *countingStore) SavePlan(ctx context.Context, p *planner.Plan) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saves = append(c.saves, p.Status)
	return nil
}

func TestExecutePersistsTerminalState(t *testing.T) {
	exec := &fakeExecutor{}
	store := &countingStore{}
	o := New(exec, store, time.Minute, nil)

	plan := testPlan(1, planner.Step{ID: "a", Tool: "shipments_list"})
	if _, err := o.Execute(context.Background(), plan); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(store.saves) != 1 || !store.saves[0].Terminal() {
		t.Errorf("saves = %v, want exactly one terminal save", store.saves)
	}
}
