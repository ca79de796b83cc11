package domain

import (
	"strings"
	"time"
)

const (
	conversationPrefix = "conversation-"
	conversationSuffix = ".log"

	// Singleton log file written by builds that predate multiple
	// conversations. It must never be listed as a knowledge file.
	legacyLogName = "conversation.log"

	// Millisecond-precision ISO 8601, matching the timestamps already
	// embedded in stored artifact names.
	conversationTimeLayout = "2006-01-02T15:04:05.000Z"
)

// Conversation represents one stored chat thread. Name is the display
// name, i.e. the stored name with the prefix and suffix stripped.
type Conversation struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ModifiedTime time.Time `json:"modified_time"`
}

// IsConversationName reports whether a stored item name follows the
// conversation artifact convention. Drive has no metadata extension point
// for a type discriminant, so the name pattern is the only tag; every
// caller must go through this predicate (and IsKnowledgeName) rather than
// matching names itself.
func IsConversationName(name string) bool {
	return strings.HasPrefix(name, conversationPrefix) && strings.HasSuffix(name, conversationSuffix)
}

// IsKnowledgeName reports whether a stored item name denotes a knowledge
// file. Mirrors the listing filter: anything that is not the legacy log
// and does not carry the conversation prefix is knowledge.
func IsKnowledgeName(name string) bool {
	return name != legacyLogName && !strings.Contains(name, conversationPrefix)
}

// NewConversationName derives a stored artifact name from a creation time.
func NewConversationName(t time.Time) string {
	return conversationPrefix + t.UTC().Format(conversationTimeLayout) + conversationSuffix
}

// ConversationDisplayName strips the artifact prefix and suffix.
func ConversationDisplayName(stored string) string {
	return strings.TrimSuffix(strings.TrimPrefix(stored, conversationPrefix), conversationSuffix)
}
