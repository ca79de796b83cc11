package domain

// MessageRole represents the sender of a chat message
type MessageRole string

const (
	RoleUser  MessageRole = "user"
	RoleModel MessageRole = "model"
)

// Valid reports whether the role is one of the two known roles.
// Transcript records with any other role are dropped on load.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// ChatMessage represents one message inside a conversation transcript.
// The ID is generated locally on append or load and is never persisted;
// only the (role, text) sequence survives a serialization round trip.
type ChatMessage struct {
	ID   string      `json:"id"`
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
}
