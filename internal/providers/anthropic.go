// Package providers implements planner.CompletionProvider over the LLM
// vendor SDKs, plus a fallback chain and an environment-driven factory.
package providers

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const systemPrompt = "You are a planning engine for a logistics operations assistant. " +
	"You translate operator requests into tool execution plans. " +
	"Respond with the requested JSON only, no prose and no markdown fences."

// AnthropicProvider completes planning prompts through the Anthropic
// Messages API.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates an Anthropic-backed completion provider.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{
		client: anthropic.NewClient(apiKey),
		model:  model,
	}
}

// Name identifies the provider in logs and errors.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends a single-turn planning prompt and returns the raw text
// response.
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.1)
	req := anthropic.MessagesRequest{
		Model: anthropic.Model(p.model),
		MultiSystem: []anthropic.MessageSystemPart{
			{Type: "text", Text: systemPrompt},
		},
		Messages: []anthropic.Message{
			{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(prompt)},
			},
		},
		MaxTokens:   4096,
		Temperature: &temperature,
	}

	resp, err := p.client.CreateMessages(ctx, req)
	if err != nil {
		return "", fmt.Errorf("anthropic completion failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return text, nil
}
