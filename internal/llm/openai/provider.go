package openai

import (
	"context"
	"fmt"

	"github.com/Rrens/knowledge-drive/internal/config"
	"github.com/Rrens/knowledge-drive/internal/llm"
	openai "github.com/sashabaranov/go-openai"
)

type Provider struct {
	apiKey string
	model  string
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return openai.GPT4oMini
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

func (p *Provider) Generate(ctx context.Context, req llm.Request, model string) (string, error) {
	if !p.IsConfigured() {
		return "", fmt.Errorf("openai provider is not configured (missing API key)")
	}

	if model == "" {
		model = p.DefaultModel()
	}

	client := openai.NewClient(p.apiKey)

	// The whole context travels as one combined prompt, same as the
	// other providers.
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: llm.BuildPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai generation error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	return resp.Choices[0].Message.Content, nil
}
