package providers

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIProvider completes planning prompts through the OpenAI chat API.
// With a custom base URL it also serves the OpenAI-compatible vendors
// (DeepSeek, Groq, Ollama).
type OpenAIProvider struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAIProvider creates an OpenAI-compatible completion provider. An
// empty baseURL targets api.openai.com; name is how the provider reports
// itself in logs.
func NewOpenAIProvider(apiKey, model, baseURL, name string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if name == "" {
		name = "openai"
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  model,
		name:   name,
	}
}

// Name identifies the provider in logs and errors.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Complete sends a single-turn planning prompt and returns the raw text
// response.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	temperature := float32(0.1)
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   4096,
		Temperature: &temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}
