// Package agent ties the planning pipeline together behind one surface:
// plan a query, execute a plan, look up records, serve statistics.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mehdi-bk/stevedore/internal/catalog"
	"github.com/mehdi-bk/stevedore/internal/orchestrator"
	"github.com/mehdi-bk/stevedore/internal/planner"
	"github.com/mehdi-bk/stevedore/internal/store"
)

// RecordStore is the persistence surface the agent needs.
type RecordStore interface {
	SavePlan(ctx context.Context, p *planner.Plan) error
	GetPlan(ctx context.Context, requestID string) (*planner.Plan, error)
	GetStatistics(ctx context.Context) (store.Statistics, error)
}

// Options configures a new Agent.
type Options struct {
	Catalog  *catalog.Catalog
	Resolver *catalog.Resolver
	Provider planner.CompletionProvider
	Executor orchestrator.ToolExecutor
	Store    RecordStore

	MaxRefinements int
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Agent is the facade over generator, orchestrator, and record store.
type Agent struct {
	generator *planner.Generator
	orch      *orchestrator.Orchestrator
	store     RecordStore
	logger    *slog.Logger
}

// New wires an agent from its parts.
func New(opts Options) (*Agent, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("agent requires a tool catalog")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("agent requires a completion provider")
	}
	if opts.Executor == nil {
		return nil, fmt.Errorf("agent requires a tool executor")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Agent{
		generator: planner.NewGenerator(opts.Catalog, opts.Resolver, opts.Provider, opts.Store, opts.MaxRefinements, logger),
		orch:      orchestrator.New(opts.Executor, opts.Store, opts.Timeout, logger),
		store:     opts.Store,
		logger:    logger,
	}, nil
}

// Plan generates and persists a plan for the query. A plan that exhausted
// its refinement budget comes back with status failed, not as an error.
func (a *Agent) Plan(ctx context.Context, query string) (*planner.Plan, error) {
	return a.generator.GeneratePlan(ctx, query)
}

// Execute loads the plan for the request id and runs it to a terminal state.
func (a *Agent) Execute(ctx context.Context, requestID string) (*orchestrator.Result, error) {
	if a.store == nil {
		return nil, fmt.Errorf("no plan store configured")
	}
	plan, err := a.store.GetPlan(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return a.ExecutePlan(ctx, plan)
}

// ExecutePlan runs an in-memory plan to a terminal state. Plans already in a
// terminal state are rejected; re-execution would clobber the record.
func (a *Agent) ExecutePlan(ctx context.Context, plan *planner.Plan) (*orchestrator.Result, error) {
	if plan.Status.Terminal() {
		return nil, fmt.Errorf("plan %s is already %s", plan.RequestID, plan.Status)
	}
	return a.orch.Execute(ctx, plan)
}

// Run plans the query and, when the plan is viable, executes it.
func (a *Agent) Run(ctx context.Context, query string) (*planner.Plan, *orchestrator.Result, error) {
	plan, err := a.Plan(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	if plan.Status == planner.StatusFailed {
		a.logger.Warn("skipping execution of failed plan",
			slog.String("request_id", plan.RequestID))
		return plan, nil, nil
	}
	res, err := a.ExecutePlan(ctx, plan)
	if err != nil {
		return plan, res, err
	}
	return plan, res, nil
}

// GetPlan returns the stored plan record for a request id.
func (a *Agent) GetPlan(ctx context.Context, requestID string) (*planner.Plan, error) {
	if a.store == nil {
		return nil, fmt.Errorf("no plan store configured")
	}
	return a.store.GetPlan(ctx, requestID)
}

// GetStatistics returns aggregate statistics over stored plans.
func (a *Agent) GetStatistics(ctx context.Context) (store.Statistics, error) {
	if a.store == nil {
		return store.Statistics{}, fmt.Errorf("no plan store configured")
	}
	return a.store.GetStatistics(ctx)
}
