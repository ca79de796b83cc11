package domain

import "context"

// Store defines the interface for the remote file store holding all
// application-owned artifacts. Implementations surface every failure
// immediately as a typed error; user-facing recovery (alert, abort,
// degrade) is the state manager's job, so there is no retry or backoff
// at this layer.
type Store interface {
	// EnsureRootFolder discovers or creates the well-known root folder
	// and returns its id. Idempotent; the id is memoized for the
	// session. Fails with ErrStorageUnavailable when neither search nor
	// create succeeds.
	EnsureRootFolder(ctx context.Context) (string, error)

	// ListKnowledgeFiles returns the non-conversation items under the
	// root folder, most recently modified first.
	ListKnowledgeFiles(ctx context.Context) ([]KnowledgeFile, error)

	// ListConversations returns the conversation artifacts under the
	// root folder, most recently modified first.
	ListConversations(ctx context.Context) ([]Conversation, error)

	// CreateConversation allocates an empty conversation artifact with
	// the given stored name (metadata-only creation, no content).
	CreateConversation(ctx context.Context, name string) (*Conversation, error)

	// UploadKnowledgeFile creates a knowledge file with content in one
	// multipart request.
	UploadKnowledgeFile(ctx context.Context, name, mimeType string, content []byte) error

	// FileContent fetches an item's raw bytes. A missing or empty body
	// yields an empty slice, not an error.
	FileContent(ctx context.Context, id string) ([]byte, error)

	// ConversationContent fetches a conversation artifact's text.
	ConversationContent(ctx context.Context, id string) (string, error)

	// UpdateConversationContent replaces an artifact's content wholesale.
	UpdateConversationContent(ctx context.Context, id, content string) error

	// Delete hard-deletes an item. No trash semantics.
	Delete(ctx context.Context, id string) error
}
