package llm

import "context"

// Request contains the context assembled for one generation call
type Request struct {
	// Knowledge is the concatenated extracted text of every knowledge
	// file, each block delimited and labeled by file name.
	Knowledge string

	// History is the prior transcript serialized as "role: text" lines.
	// This is prompt input only, distinct from the persisted log format.
	History string

	// Query is the new user question.
	Query string
}

// Provider defines the interface for text generation backends
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate answers the query from the supplied context in a single
	// non-streaming request and returns the response text
	Generate(ctx context.Context, req Request, model string) (string, error)
}
