package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/mehdi-bk/stevedore/internal/agent"
	"github.com/mehdi-bk/stevedore/internal/catalog"
	"github.com/mehdi-bk/stevedore/internal/config"
	"github.com/mehdi-bk/stevedore/internal/docstore"
	"github.com/mehdi-bk/stevedore/internal/providers"
	"github.com/mehdi-bk/stevedore/internal/store"
	"github.com/mehdi-bk/stevedore/internal/tools"
)

func main() {
	// Load .env file if it exists.
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatalf("stevedore: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stevedore", flag.ExitOnError)
	query := fs.String("query", "", "Natural-language request to plan and execute")
	planOnly := fs.Bool("plan-only", false, "Generate the plan without executing it")
	getPlan := fs.String("get-plan", "", "Print the stored plan for a request id")
	execute := fs.String("execute", "", "Execute a previously generated plan by request id")
	stats := fs.Bool("stats", false, "Print aggregate plan statistics")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	docs, err := docstore.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer docs.Close()

	registry := tools.NewDocumentRegistry(docs)

	// The catalog integrity gate: a malformed builtin tool definition is a
	// programming error and aborts startup.
	cat, err := catalog.New(registry.Tools())
	if err != nil {
		return fmt.Errorf("tool catalog rejected: %w", err)
	}

	resolver, err := catalog.NewResolver(cat, logger)
	if err != nil {
		return fmt.Errorf("failed to build tool resolver: %w", err)
	}
	defer resolver.Close()

	records, err := store.Open(ctx, cfg.DBPath+".plans")
	if err != nil {
		return err
	}
	defer records.Close()

	provider, err := providers.NewChainFromEnv(logger, cfg.LLMProvider, cfg.LLMFallbackProvider)
	if err != nil {
		return err
	}

	a, err := agent.New(agent.Options{
		Catalog:        cat,
		Resolver:       resolver,
		Provider:       provider,
		Executor:       registry,
		Store:          records,
		MaxRefinements: cfg.MaxPlanRefinements,
		Timeout:        cfg.PlannerTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	switch {
	case *stats:
		s, err := a.GetStatistics(ctx)
		if err != nil {
			return err
		}
		return printJSON(s)

	case *getPlan != "":
		p, err := a.GetPlan(ctx, *getPlan)
		if err != nil {
			return err
		}
		return printJSON(p)

	case *execute != "":
		res, err := a.Execute(ctx, *execute)
		if err != nil {
			return err
		}
		return printJSON(res)

	case *query != "":
		if *planOnly {
			p, err := a.Plan(ctx, *query)
			if err != nil {
				return err
			}
			return printJSON(p)
		}
		plan, res, err := a.Run(ctx, *query)
		if err != nil {
			return err
		}
		out := map[string]any{"plan": plan}
		if res != nil {
			out["result"] = res
		}
		return printJSON(out)

	default:
		fs.Usage()
		return fmt.Errorf("one of -query, -execute, -get-plan, or -stats is required")
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
