// Package service implements the state manager that orchestrates the
// remote store, the document codec, and the generation client into the
// chat workflows the user sees. All remote interaction happens through
// the narrow interfaces below so the workflows stay testable.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/knowledge-drive/internal/chatlog"
	"github.com/Rrens/knowledge-drive/internal/domain"
)

// Generator produces a model reply from assembled context. It never
// fails: on error the implementation substitutes a fixed apology reply.
type Generator interface {
	Generate(ctx context.Context, knowledge, history, query string) string
}

// DocumentCodec converts between plain text and the stored document
// representation.
type DocumentCodec interface {
	Encode(text string) ([]byte, error)
	Extract(data []byte) (string, error)
}

// TextCache caches extracted document text by file id. Implementations
// are fail-soft; errors surface as misses.
type TextCache interface {
	Get(ctx context.Context, fileID string) (string, bool)
	Put(ctx context.Context, fileID, text string)
	Delete(ctx context.Context, fileID string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithCache attaches an extracted-text cache.
func WithCache(c TextCache) Option {
	return func(m *Manager) { m.cache = c }
}

// WithLegacyLogFormat makes the manager persist transcripts in the flat
// sentinel format older clients understand.
func WithLegacyLogFormat(enabled bool) Option {
	return func(m *Manager) { m.legacyLog = enabled }
}

// WithPhaseFunc registers a callback invoked whenever the current
// workflow phase changes. The empty string means idle. The callback
// runs on the workflow goroutine and must not start another workflow.
func WithPhaseFunc(fn func(phase string)) Option {
	return func(m *Manager) { m.onPhase = fn }
}

// WithClock overrides the time source used to derive conversation names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager owns the session state: the knowledge file listing, the
// conversation listing, the active conversation and its transcript.
// Workflows are single-flight; a second workflow started while one is
// running fails immediately with ErrOperationInFlight.
type Manager struct {
	store     domain.Store
	gen       Generator
	codec     DocumentCodec
	cache     TextCache
	legacyLog bool
	onPhase   func(string)
	now       func() time.Time

	// gate serializes workflows. Taken with TryLock so a concurrent
	// caller is rejected rather than queued.
	gate sync.Mutex

	mu            sync.Mutex
	files         []domain.KnowledgeFile
	conversations []domain.Conversation
	activeID      string
	messages      []domain.ChatMessage
	phase         string
}

// NewManager creates a state manager around a store, a generator and a
// document codec.
func NewManager(store domain.Store, gen Generator, codec DocumentCodec, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		gen:   gen,
		codec: codec,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize runs the startup workflow: ensure the root folder exists,
// load both listings, then activate the most recently modified
// conversation or create one if none exist. Any failure before the
// listings are loaded is fatal to the session.
func (m *Manager) Initialize(ctx context.Context) error {
	if err := m.begin("Initializing application..."); err != nil {
		return err
	}
	defer m.end()

	if _, err := m.store.EnsureRootFolder(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	files, err := m.store.ListKnowledgeFiles(ctx)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	convos, err := m.store.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	m.mu.Lock()
	m.files = files
	m.conversations = convos
	m.mu.Unlock()

	if len(convos) > 0 {
		// Listings are most-recently-modified first.
		m.activate(ctx, convos[0].ID)
		return nil
	}
	_, err = m.createAndActivate(ctx)
	return err
}

// ActivateConversation switches the active conversation and loads its
// transcript. A transcript that cannot be fetched or parsed yields an
// empty transcript, not an error; the conversation stays usable.
func (m *Manager) ActivateConversation(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.begin("Loading conversation..."); err != nil {
		return err
	}
	defer m.end()

	m.activate(ctx, id)
	return nil
}

// SendMessage runs the full send workflow: append the user message,
// assemble knowledge and history, generate a reply, append it, and
// persist the transcript. An empty query or no active conversation is
// a no-op. Persistence failure is returned to the caller; both
// appended messages remain in the in-memory transcript.
func (m *Manager) SendMessage(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)

	m.mu.Lock()
	active := m.activeID
	m.mu.Unlock()
	if query == "" || active == "" {
		return nil
	}

	if err := m.begin("AI is thinking..."); err != nil {
		return err
	}
	defer m.end()

	userMsg := domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleUser, Text: query}

	m.mu.Lock()
	prior := append([]domain.ChatMessage(nil), m.messages...)
	m.messages = append(m.messages, userMsg)
	m.mu.Unlock()

	m.setPhase("Reading knowledge base...")
	knowledge := m.collectKnowledge(ctx)
	history := historyText(prior)

	m.setPhase("AI is thinking...")
	reply := m.gen.Generate(ctx, knowledge, history, query)

	modelMsg := domain.ChatMessage{ID: uuid.NewString(), Role: domain.RoleModel, Text: reply}

	m.mu.Lock()
	m.messages = append(m.messages, modelMsg)
	full := append([]domain.ChatMessage(nil), m.messages...)
	m.mu.Unlock()

	m.setPhase("Saving conversation...")
	if err := m.store.UpdateConversationContent(ctx, active, m.marshalLog(full)); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	// Saving bumps the artifact's modified time, which reorders the
	// listing. A refresh failure only leaves the ordering stale.
	m.refreshConversations(ctx)
	return nil
}

// UploadDocument adds a knowledge file. Plain text is converted to the
// stored document format and renamed with a .pdf extension; documents
// already in that format upload as-is. Any other type is rejected
// before touching the store.
func (m *Manager) UploadDocument(ctx context.Context, fileName string, data []byte, mimeType string) error {
	if mimeType != domain.MimeText && mimeType != domain.MimePDF {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, mimeType)
	}

	if err := m.begin(fmt.Sprintf("Uploading %s...", fileName)); err != nil {
		return err
	}
	defer m.end()

	name, content := fileName, data
	if mimeType == domain.MimeText {
		encoded, err := m.codec.Encode(string(data))
		if err != nil {
			return fmt.Errorf("failed to convert %s: %w", fileName, err)
		}
		name = strings.TrimSuffix(fileName, ".txt") + ".pdf"
		content = encoded
		mimeType = domain.MimePDF
	}

	if err := m.store.UploadKnowledgeFile(ctx, name, mimeType, content); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	m.refreshKnowledgeFiles(ctx)
	return nil
}

// DeleteKnowledgeFile removes a knowledge file and its cached text.
func (m *Manager) DeleteKnowledgeFile(ctx context.Context, id string) error {
	if err := m.begin("Deleting file..."); err != nil {
		return err
	}
	defer m.end()

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if m.cache != nil {
		m.cache.Delete(ctx, id)
	}
	m.refreshKnowledgeFiles(ctx)
	return nil
}

// DeleteConversation removes a conversation artifact. Deleting the
// active conversation activates the most recently modified remaining
// one, or creates a fresh conversation when none remain.
func (m *Manager) DeleteConversation(ctx context.Context, id string) error {
	if err := m.begin("Deleting conversation..."); err != nil {
		return err
	}
	defer m.end()

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	m.refreshConversations(ctx)

	m.mu.Lock()
	active := m.activeID
	remaining := append([]domain.Conversation(nil), m.conversations...)
	m.mu.Unlock()

	if active != id {
		return nil
	}
	if len(remaining) > 0 {
		m.activate(ctx, remaining[0].ID)
		return nil
	}
	_, err := m.createAndActivate(ctx)
	return err
}

// CreateConversation creates a new conversation named after the current
// time and makes it active.
func (m *Manager) CreateConversation(ctx context.Context) (*domain.Conversation, error) {
	if err := m.begin("Creating new conversation..."); err != nil {
		return nil, err
	}
	defer m.end()

	return m.createAndActivate(ctx)
}

// Messages returns a copy of the active conversation's transcript.
func (m *Manager) Messages() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ChatMessage(nil), m.messages...)
}

// KnowledgeFiles returns a copy of the knowledge file listing.
func (m *Manager) KnowledgeFiles() []domain.KnowledgeFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.KnowledgeFile(nil), m.files...)
}

// Conversations returns a copy of the conversation listing.
func (m *Manager) Conversations() []domain.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Conversation(nil), m.conversations...)
}

// ActiveConversationID returns the id of the active conversation, or
// the empty string before initialization.
func (m *Manager) ActiveConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// CurrentPhase returns the phase label of the running workflow, or the
// empty string when idle.
func (m *Manager) CurrentPhase() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Manager) begin(phase string) error {
	if !m.gate.TryLock() {
		return domain.ErrOperationInFlight
	}
	m.setPhase(phase)
	return nil
}

func (m *Manager) end() {
	m.setPhase("")
	m.gate.Unlock()
}

func (m *Manager) setPhase(phase string) {
	m.mu.Lock()
	m.phase = phase
	m.mu.Unlock()
	if m.onPhase != nil {
		m.onPhase(phase)
	}
}

// activate loads the transcript for id and makes it the active
// conversation. Fail-soft: an unreadable or unparseable transcript
// becomes an empty one.
func (m *Manager) activate(ctx context.Context, id string) {
	m.setPhase("Loading conversation...")

	m.mu.Lock()
	m.activeID = id
	m.mu.Unlock()

	var msgs []domain.ChatMessage
	content, err := m.store.ConversationContent(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", id).Msg("failed to load transcript, starting empty")
	} else if msgs, err = chatlog.Unmarshal(content); err != nil {
		log.Warn().Err(err).Str("conversation_id", id).Msg("transcript unparseable, starting empty")
		msgs = nil
	}

	m.mu.Lock()
	m.messages = msgs
	m.mu.Unlock()
}

func (m *Manager) createAndActivate(ctx context.Context) (*domain.Conversation, error) {
	m.setPhase("Creating new conversation...")

	name := domain.NewConversationName(m.now())
	convo, err := m.store.CreateConversation(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	m.refreshConversations(ctx)
	m.activate(ctx, convo.ID)
	return convo, nil
}

func (m *Manager) refreshConversations(ctx context.Context) {
	convos, err := m.store.ListConversations(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh conversation listing")
		return
	}
	m.mu.Lock()
	m.conversations = convos
	m.mu.Unlock()
}

func (m *Manager) refreshKnowledgeFiles(ctx context.Context) {
	files, err := m.store.ListKnowledgeFiles(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh knowledge file listing")
		return
	}
	m.mu.Lock()
	m.files = files
	m.mu.Unlock()
}

// collectKnowledge fetches and extracts every knowledge file
// concurrently and joins the results into the knowledge block, in
// listing order. A file that cannot be read contributes empty text so
// a single bad document never blocks the whole conversation.
func (m *Manager) collectKnowledge(ctx context.Context) string {
	m.mu.Lock()
	files := append([]domain.KnowledgeFile(nil), m.files...)
	m.mu.Unlock()

	blocks := make([]string, len(files))
	var wg sync.WaitGroup
	for i, f := range files {
		wg.Add(1)
		go func(i int, f domain.KnowledgeFile) {
			defer wg.Done()
			text, err := m.knowledgeText(ctx, f)
			if err != nil {
				log.Warn().Err(err).Str("file", f.Name).Msg("knowledge file unreadable, skipping")
				return
			}
			blocks[i] = fmt.Sprintf("--- START: %s ---\n%s\n--- END: %s ---", f.Name, text, f.Name)
		}(i, f)
	}
	wg.Wait()

	return strings.Join(blocks, "\n\n")
}

func (m *Manager) knowledgeText(ctx context.Context, f domain.KnowledgeFile) (string, error) {
	if m.cache != nil {
		if text, ok := m.cache.Get(ctx, f.ID); ok {
			return text, nil
		}
	}
	data, err := m.store.FileContent(ctx, f.ID)
	if err != nil {
		return "", err
	}
	text, err := m.codec.Extract(data)
	if err != nil {
		return "", err
	}
	if m.cache != nil {
		m.cache.Put(ctx, f.ID, text)
	}
	return text, nil
}

func (m *Manager) marshalLog(msgs []domain.ChatMessage) string {
	if m.legacyLog {
		return chatlog.MarshalLegacy(msgs)
	}
	return chatlog.Marshal(msgs)
}

func historyText(msgs []domain.ChatMessage) string {
	lines := make([]string, len(msgs))
	for i, msg := range msgs {
		lines[i] = fmt.Sprintf("%s: %s", msg.Role, msg.Text)
	}
	return strings.Join(lines, "\n")
}
