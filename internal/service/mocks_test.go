package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/knowledge-drive/internal/domain"
)

// MockStore is a mock implementation of domain.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) EnsureRootFolder(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ListKnowledgeFiles(ctx context.Context) ([]domain.KnowledgeFile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KnowledgeFile), args.Error(1)
}

func (m *MockStore) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

func (m *MockStore) CreateConversation(ctx context.Context, name string) (*domain.Conversation, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockStore) UploadKnowledgeFile(ctx context.Context, name, mimeType string, content []byte) error {
	args := m.Called(ctx, name, mimeType, content)
	return args.Error(0)
}

func (m *MockStore) FileContent(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) ConversationContent(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UpdateConversationContent(ctx context.Context, id, content string) error {
	args := m.Called(ctx, id, content)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, knowledge, history, query string) string {
	args := m.Called(ctx, knowledge, history, query)
	return args.String(0)
}

// MockCodec is a mock implementation of DocumentCodec
type MockCodec struct {
	mock.Mock
}

func (m *MockCodec) Encode(text string) ([]byte, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCodec) Extract(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

// mapCache is an in-memory TextCache for tests.
type mapCache struct {
	entries map[string]string
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]string)}
}

func (c *mapCache) Get(_ context.Context, fileID string) (string, bool) {
	text, ok := c.entries[fileID]
	return text, ok
}

func (c *mapCache) Put(_ context.Context, fileID, text string) {
	c.entries[fileID] = text
}

func (c *mapCache) Delete(_ context.Context, fileID string) {
	delete(c.entries, fileID)
}
