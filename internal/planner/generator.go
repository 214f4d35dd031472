package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mehdi-bk/stevedore/internal/catalog"
	"github.com/mehdi-bk/stevedore/internal/complexity"
)

// CompletionProvider is the boundary to the language-model backend. The
// generator is agnostic to which provider implements it and never assumes
// well-formed output.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// PlanStore is the subset of the record store the generator needs.
type PlanStore interface {
	SavePlan(ctx context.Context, p *Plan) error
}

// candidateToolLimit caps how many resolved tools are offered per prompt.
const candidateToolLimit = 12

// Generator drives the generate → repair → parse → validate → refine loop.
type Generator struct {
	catalog        *catalog.Catalog
	resolver       *catalog.Resolver
	provider       CompletionProvider
	store          PlanStore
	maxRefinements int
	logger         *slog.Logger
}

// NewGenerator wires a generator. resolver and store may be nil: without a
// resolver every prompt carries the full catalog, and without a store plans
// are not persisted.
func NewGenerator(cat *catalog.Catalog, resolver *catalog.Resolver, provider CompletionProvider, store PlanStore, maxRefinements int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxRefinements < 0 {
		maxRefinements = 0
	}
	return &Generator{
		catalog:        cat,
		resolver:       resolver,
		provider:       provider,
		store:          store,
		maxRefinements: maxRefinements,
		logger:         logger,
	}
}

// planDoc is the wire shape the model is asked to produce.
type planDoc struct {
	Steps []Step `json:"steps"`
}

// GeneratePlan turns a query into a validated plan. Refinement retries are
// bounded; when the bound is exhausted the returned plan carries status
// failed and the accumulated validation errors — that is a usable result,
// not a system error. The returned error is reserved for persistence
// failures.
func (g *Generator) GeneratePlan(ctx context.Context, query string) (*Plan, error) {
	start := time.Now()

	tools := g.candidateTools(query)
	toolNames := make([]string, len(tools))
	for i, t := range tools {
		toolNames[i] = t.Name
	}

	score := complexity.AnalyzeQueryComplexity(query, toolNames)
	strat := complexity.StrategyFor(score)

	attempts := 1 + g.maxRefinements + strat.ExtraRefinements
	var accumulated []string
	var feedback []string

	g.logger.Info("generating plan",
		slog.String("strategy", string(strat.Strategy)),
		slog.Float64("complexity", score.Value),
		slog.Int("candidate_tools", len(tools)),
		slog.Int("max_attempts", attempts),
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		plan, problems := g.attempt(ctx, query, tools, strat, feedback)
		if len(problems) == 0 {
			plan.RequestID = uuid.NewString()
			plan.Query = query
			plan.Status = StatusPending
			plan.Strategy = strat
			plan.CreatedAt = time.Now()
			plan.GenerationTimeMs = time.Since(start).Milliseconds()
			if err := g.persist(ctx, plan); err != nil {
				return nil, err
			}
			g.logger.Info("plan generated",
				slog.String("request_id", plan.RequestID),
				slog.Int("steps", len(plan.Steps)),
				slog.Int("attempt", attempt),
			)
			return plan, nil
		}

		for _, p := range problems {
			accumulated = append(accumulated, fmt.Sprintf("attempt %d: %s", attempt, p))
		}
		feedback = problems
		g.logger.Warn("plan attempt rejected",
			slog.Int("attempt", attempt),
			slog.Int("problems", len(problems)),
		)

		if ctx.Err() != nil {
			accumulated = append(accumulated, fmt.Sprintf("generation aborted: %v", ctx.Err()))
			break
		}
	}

	failed := &Plan{
		RequestID:        uuid.NewString(),
		Query:            query,
		Status:           StatusFailed,
		Strategy:         strat,
		ValidationErrors: accumulated,
		CreatedAt:        time.Now(),
		GenerationTimeMs: time.Since(start).Milliseconds(),
	}
	if err := g.persist(ctx, failed); err != nil {
		return nil, err
	}
	g.logger.Warn("plan generation exhausted refinements",
		slog.String("request_id", failed.RequestID),
		slog.Int("errors", len(accumulated)),
	)
	return failed, nil
}

// attempt runs one generation round and returns the parsed plan candidate
// plus the list of problems that make it unusable.
func (g *Generator) attempt(ctx context.Context, query string, tools []catalog.Tool, strat complexity.ExecutionStrategy, feedback []string) (*Plan, []string) {
	prompt := buildPrompt(query, tools, strat, feedback)

	raw, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, []string{fmt.Sprintf("completion provider %s: %v", g.provider.Name(), err)}
	}

	repaired := Repair(raw)

	var doc planDoc
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		perr := &ParseError{Err: err}
		return nil, []string{perr.Error()}
	}

	// Fill in ids the model omitted before validation so a single missing id
	// does not burn a refinement round.
	for i := range doc.Steps {
		if doc.Steps[i].ID == "" {
			doc.Steps[i].ID = fmt.Sprintf("step-%d", i+1)
		}
	}

	plan := &Plan{Steps: doc.Steps}
	if problems := ValidatePlan(plan, g.catalog); len(problems) > 0 {
		return nil, problems
	}
	return plan, nil
}

// candidateTools resolves the tool subset for the query, bounded by
// candidateToolLimit, falling back to the full catalog without a resolver.
func (g *Generator) candidateTools(query string) []catalog.Tool {
	if g.resolver == nil {
		return g.catalog.All()
	}
	return g.resolver.Resolve(query, candidateToolLimit)
}

func (g *Generator) persist(ctx context.Context, p *Plan) error {
	if g.store == nil {
		return nil
	}
	if err := g.store.SavePlan(ctx, p); err != nil {
		return fmt.Errorf("failed to persist plan %s: %w", p.RequestID, err)
	}
	return nil
}
