package llm

import (
	"context"

	"github.com/rs/zerolog/log"
)

// FallbackReply is substituted for the model's answer whenever the
// generation call fails. The exchange always completes from the user's
// point of view; the failure is only logged.
const FallbackReply = "I'm sorry, I encountered an error while processing your request."

// Client wraps a provider so that every call yields usable text. Callers
// never need a separate error path for generation failures.
type Client struct {
	provider Provider
	model    string
}

// NewClient creates a generation client for the given provider. An empty
// model selects the provider default.
func NewClient(provider Provider, model string) *Client {
	if model == "" {
		model = provider.DefaultModel()
	}
	return &Client{provider: provider, model: model}
}

// Generate answers the query from the supplied knowledge and history
// context. On any failure the fixed fallback reply is returned instead.
func (c *Client) Generate(ctx context.Context, knowledge, history, query string) string {
	req := Request{
		Knowledge: knowledge,
		History:   history,
		Query:     query,
	}

	text, err := c.provider.Generate(ctx, req, c.model)
	if err != nil {
		log.Error().
			Err(err).
			Str("provider", c.provider.Name()).
			Str("model", c.model).
			Msg("generation failed, substituting fallback reply")
		return FallbackReply
	}
	return text
}
