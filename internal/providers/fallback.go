package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mehdi-bk/stevedore/internal/planner"
)

// FallbackChain tries each provider in order until one returns a
// completion. Context cancellation is not retried: a timeout on the first
// provider means the caller's deadline is spent, not that the provider is
// down.
type FallbackChain struct {
	providers []planner.CompletionProvider
	logger    *slog.Logger
}

// NewFallbackChain builds a chain from the given providers. At least one is
// required.
func NewFallbackChain(logger *slog.Logger, provs ...planner.CompletionProvider) (*FallbackChain, error) {
	if len(provs) == 0 {
		return nil, errors.New("fallback chain needs at least one provider")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackChain{providers: provs, logger: logger}, nil
}

// Name reports the primary provider's name.
func (c *FallbackChain) Name() string {
	return c.providers[0].Name()
}

// Complete runs the prompt through the chain.
func (c *FallbackChain) Complete(ctx context.Context, prompt string) (string, error) {
	var errs []error
	for _, p := range c.providers {
		text, err := p.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			break
		}
		c.logger.Warn("provider failed, trying next",
			"provider", p.Name(),
			"error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return "", fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}
