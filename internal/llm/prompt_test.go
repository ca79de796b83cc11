package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(Request{
		Knowledge: "--- START: notes.pdf ---\nthe answer is 42\n--- END: notes.pdf ---",
		History:   "user: hi\nmodel: hello",
		Query:     "what is the answer?",
	})

	assert.Contains(t, prompt, "You are a helpful AI assistant")
	assert.Contains(t, prompt, "--- KNOWLEDGE BASE START ---")
	assert.Contains(t, prompt, "the answer is 42")
	assert.Contains(t, prompt, "--- CHAT HISTORY START ---")
	assert.Contains(t, prompt, "user: hi\nmodel: hello")
	assert.Contains(t, prompt, "NEW QUERY: what is the answer?")

	// Blocks appear in a fixed order: knowledge, history, query.
	kb := strings.Index(prompt, "--- KNOWLEDGE BASE START ---")
	hist := strings.Index(prompt, "--- CHAT HISTORY START ---")
	query := strings.Index(prompt, "NEW QUERY:")
	assert.Less(t, kb, hist)
	assert.Less(t, hist, query)
}

func TestBuildPromptEmptyContext(t *testing.T) {
	prompt := BuildPrompt(Request{Query: "anything?"})

	assert.Contains(t, prompt, "--- KNOWLEDGE BASE START ---\n\n--- KNOWLEDGE BASE END ---")
	assert.Contains(t, prompt, "--- CHAT HISTORY START ---\n\n--- CHAT HISTORY END ---")
	assert.Contains(t, prompt, "NEW QUERY: anything?")
}
