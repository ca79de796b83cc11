package llm

import "fmt"

const systemInstruction = `You are a helpful AI assistant with a specialized knowledge base provided by the user.
- Your knowledge base is provided below, enclosed in "--- START:" and "--- END:" tags.
- The user's previous conversation history is also provided.
- Answer the user's "NEW QUERY" based on the knowledge base and the conversation history.
- If the answer is not in the knowledge base or chat history, say that you don't have information on that topic.
- Be concise and helpful.`

// BuildPrompt combines the fixed system instruction, the delimited
// knowledge-base and chat-history blocks, and the new query into the
// single prompt sent to the provider.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(`%s

--- KNOWLEDGE BASE START ---
%s
--- KNOWLEDGE BASE END ---

--- CHAT HISTORY START ---
%s
--- CHAT HISTORY END ---

NEW QUERY: %s
`, systemInstruction, req.Knowledge, req.History, req.Query)
}
