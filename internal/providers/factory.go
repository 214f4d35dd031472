package providers

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mehdi-bk/stevedore/internal/planner"
)

// NewProviderFromEnv creates a completion provider for the named vendor
// using its conventional environment variables. Vendors with
// OpenAI-compatible APIs share the OpenAI client with a custom base URL.
func NewProviderFromEnv(provider string) (planner.CompletionProvider, error) {
	switch provider {
	case "", "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			model = "gpt-4o-mini"
		}
		baseURL := os.Getenv("OPENAI_BASE_URL")
		return NewOpenAIProvider(apiKey, model, baseURL, "openai"), nil

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		model := os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-3-5-sonnet-20241022"
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "deepseek":
		apiKey := os.Getenv("DEEPSEEK_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY not set")
		}
		model := os.Getenv("DEEPSEEK_MODEL")
		if model == "" {
			model = "deepseek-chat"
		}
		return NewOpenAIProvider(apiKey, model, "https://api.deepseek.com/v1", "deepseek"), nil

	case "groq":
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY not set")
		}
		model := os.Getenv("GROQ_MODEL")
		if model == "" {
			model = "llama-3.1-70b-versatile"
		}
		return NewOpenAIProvider(apiKey, model, "https://api.groq.com/openai/v1", "groq"), nil

	case "ollama":
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			model = "llama3.1"
		}
		apiKey := os.Getenv("OLLAMA_API_KEY")
		if apiKey == "" {
			apiKey = "ollama"
		}
		return NewOpenAIProvider(apiKey, model, baseURL, "ollama"), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, anthropic, deepseek, groq, ollama)", provider)
	}
}

// NewChainFromEnv builds the configured provider, optionally wrapped in a
// fallback chain when a fallback provider is configured.
func NewChainFromEnv(logger *slog.Logger, primary, fallback string) (planner.CompletionProvider, error) {
	first, err := NewProviderFromEnv(primary)
	if err != nil {
		return nil, err
	}
	if fallback == "" || fallback == primary {
		return first, nil
	}

	second, err := NewProviderFromEnv(fallback)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	return NewFallbackChain(logger, first, second)
}
