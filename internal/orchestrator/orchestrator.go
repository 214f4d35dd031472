// Package orchestrator schedules validated plans: it rebuilds the dependency
// graph, executes it in concurrency-bounded waves through an external tool
// executor, propagates failures to dependents, and enforces a single overall
// timeout.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mehdi-bk/stevedore/internal/planner"
)

// PlanStore is the subset of the record store the orchestrator needs: it
// persists the plan at each terminal transition.
type PlanStore interface {
	SavePlan(ctx context.Context, p *planner.Plan) error
}

// Orchestrator drives plan execution. Safe for concurrent use: all per-plan
// state lives in Execute's frame.
type Orchestrator struct {
	executor ToolExecutor
	store    PlanStore
	timeout  time.Duration
	logger   *slog.Logger
}

// New wires an orchestrator. store may be nil; timeout <= 0 disables the
// overall deadline.
func New(executor ToolExecutor, store PlanStore, timeout time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		executor: executor,
		store:    store,
		timeout:  timeout,
		logger:   logger,
	}
}

// Execute runs a plan to a terminal state. A cyclic dependency graph fails
// before the running transition with zero tool invocations. The returned
// Result is always populated, even on error.
func (o *Orchestrator) Execute(ctx context.Context, plan *planner.Plan) (*Result, error) {
	start := time.Now()
	res := &Result{
		RequestID: plan.RequestID,
		Steps:     make(map[string]StepResult, len(plan.Steps)),
	}

	waves, err := buildWaves(plan.Steps)
	if err != nil {
		plan.Status = planner.StatusFailed
		plan.ValidationErrors = append(plan.ValidationErrors, err.Error())
		plan.ExecutionTimeMs = time.Since(start).Milliseconds()
		res.Status = planner.StatusFailed
		res.ExecutionTimeMs = plan.ExecutionTimeMs
		o.persist(ctx, plan)
		return res, err
	}

	plan.Status = planner.StatusRunning
	o.logger.Info("executing plan",
		slog.String("request_id", plan.RequestID),
		slog.Int("steps", len(plan.Steps)),
		slog.Int("waves", len(waves)),
		slog.Int("max_parallel", o.parallelism(plan)),
	)

	execCtx := ctx
	var cancel context.CancelFunc
	if o.timeout > 0 {
		execCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	timedOut := false
	for _, wave := range waves {
		o.runWave(execCtx, plan, wave, res.Steps)
		if execCtx.Err() != nil {
			// No further waves start; in-flight results were discarded by
			// runWave.
			timedOut = true
			break
		}
	}

	switch {
	case timedOut:
		plan.Status = planner.StatusTimedOut
	case o.anyNotSucceeded(plan, res.Steps):
		plan.Status = planner.StatusFailed
	default:
		plan.Status = planner.StatusCompleted
	}

	plan.ExecutionTimeMs = time.Since(start).Milliseconds()
	res.Status = plan.Status
	res.ExecutionTimeMs = plan.ExecutionTimeMs

	// Persist with the parent context: the execution deadline must not stop
	// the terminal state from being recorded.
	o.persist(ctx, plan)

	o.logger.Info("plan execution finished",
		slog.String("request_id", plan.RequestID),
		slog.String("status", string(plan.Status)),
		slog.Int64("elapsed_ms", plan.ExecutionTimeMs),
	)
	return res, nil
}

// runWave executes one wave's steps with concurrency bounded by the plan's
// parallelism budget. Every step reaches a terminal outcome (or is abandoned
// on timeout) before runWave returns.
func (o *Orchestrator) runWave(ctx context.Context, plan *planner.Plan, wave []planner.Step, results map[string]StepResult) {
	// Partition first: dependency outcomes are terminal by wave
	// construction, and no goroutine is in flight yet, so the results map
	// can be read and written without locking here.
	runnable := make([]planner.Step, 0, len(wave))
	for _, step := range wave {
		if blockedBy := o.blockingDep(step, results); blockedBy != "" {
			results[step.ID] = StepResult{
				StepID: step.ID,
				State:  StepBlocked,
				Error:  "blocked by failed step " + blockedBy,
			}
			continue
		}
		runnable = append(runnable, step)
	}

	var mu sync.Mutex
	g := &errgroup.Group{}
	g.SetLimit(o.parallelism(plan))

	for _, step := range runnable {
		step := step

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			stepStart := time.Now()

			done := make(chan InvokeOutcome, 1)
			go func() {
				done <- o.executor.Invoke(ctx, step.Tool, step.Params)
			}()

			select {
			case out := <-done:
				if ctx.Err() != nil {
					// Arrived after the deadline: discard, not trusted.
					return nil
				}
				sr := StepResult{
					StepID:     step.ID,
					DurationMs: time.Since(stepStart).Milliseconds(),
					Data:       out.Data,
					Error:      out.Error,
				}
				if out.Success {
					sr.State = StepSucceeded
				} else {
					sr.State = StepFailed
					o.logger.Warn("step failed",
						slog.String("request_id", plan.RequestID),
						slog.String("step", step.ID),
						slog.String("tool", step.Tool),
						slog.String("error", out.Error),
					)
				}
				mu.Lock()
				results[step.ID] = sr
				mu.Unlock()
			case <-ctx.Done():
				// Abandon the in-flight call; its result is discarded.
			}
			return nil
		})
	}
	g.Wait()
}

// blockingDep returns the id of a dependency that did not succeed, or "".
func (o *Orchestrator) blockingDep(step planner.Step, results map[string]StepResult) string {
	for _, dep := range step.DependsOn {
		r, ok := results[dep]
		if !ok || r.State != StepSucceeded {
			return dep
		}
	}
	return ""
}

// anyNotSucceeded reports whether any step failed, was blocked, or produced
// no result.
func (o *Orchestrator) anyNotSucceeded(plan *planner.Plan, results map[string]StepResult) bool {
	for _, s := range plan.Steps {
		r, ok := results[s.ID]
		if !ok || r.State != StepSucceeded {
			return true
		}
	}
	return false
}

func (o *Orchestrator) parallelism(plan *planner.Plan) int {
	if plan.Strategy.MaxParallelSteps > 0 {
		return plan.Strategy.MaxParallelSteps
	}
	return 1
}

func (o *Orchestrator) persist(ctx context.Context, plan *planner.Plan) {
	if o.store == nil {
		return
	}
	if err := o.store.SavePlan(ctx, plan); err != nil {
		o.logger.Error("failed to persist plan",
			slog.String("request_id", plan.RequestID),
			slog.String("error", err.Error()),
		)
	}
}
