// Package drive implements the remote store over the Google Drive v3 API.
package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Rrens/knowledge-drive/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	listFields   = "files(id, name, mimeType, modifiedTime)"
	createFields = "id, name, modifiedTime"

	knowledgeFilter    = "name != 'conversation.log' and not name contains 'conversation-'"
	conversationFilter = "name contains 'conversation-' and mimeType = 'text/plain'"
)

// Store is a session-scoped adapter for the application's root folder.
// The folder id is memoized on the struct and invalidated when the
// provider reports it gone, so discovery reruns instead of failing the
// rest of the session.
type Store struct {
	svc        *drivev3.Service
	folderName string

	mu       sync.Mutex
	folderID string
}

// NewStore creates a store backed by the given token source. Extra
// client options are appended after the token source, which lets tests
// point the service at a fake endpoint.
func NewStore(ctx context.Context, ts oauth2.TokenSource, folderName string, opts ...option.ClientOption) (*Store, error) {
	if ts == nil {
		return nil, domain.ErrNotAuthenticated
	}

	clientOpts := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := drivev3.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &Store{svc: svc, folderName: folderName}, nil
}

// EnsureRootFolder implements domain.Store.
func (s *Store) EnsureRootFolder(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureRootFolderLocked(ctx)
}

func (s *Store) ensureRootFolderLocked(ctx context.Context) (string, error) {
	if s.folderID != "" {
		return s.folderID, nil
	}

	q := fmt.Sprintf("mimeType='%s' and name='%s' and trashed=false", domain.MimeFolder, s.folderName)
	list, err := s.svc.Files.List().Q(q).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: folder search failed: %v", domain.ErrStorageUnavailable, err)
	}

	// If multiple folders carry the name, the first match is canonical.
	if len(list.Files) > 0 {
		s.folderID = list.Files[0].Id
		return s.folderID, nil
	}

	folder, err := s.svc.Files.Create(&drivev3.File{
		Name:     s.folderName,
		MimeType: domain.MimeFolder,
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: folder create failed: %v", domain.ErrStorageUnavailable, err)
	}

	log.Info().Str("folder_id", folder.Id).Str("name", s.folderName).Msg("created root folder")
	s.folderID = folder.Id
	return s.folderID, nil
}

// withFolder runs fn with the memoized folder id. When fn reports the
// folder missing (deleted externally), the id is invalidated, discovery
// reruns, and fn gets one more attempt.
func (s *Store) withFolder(ctx context.Context, fn func(folderID string) error) error {
	id, err := s.EnsureRootFolder(ctx)
	if err != nil {
		return err
	}

	err = fn(id)
	if !isNotFound(err) {
		return err
	}

	log.Warn().Str("folder_id", id).Msg("root folder vanished, rerunning discovery")
	s.invalidate(id)

	id, err = s.EnsureRootFolder(ctx)
	if err != nil {
		return err
	}
	return fn(id)
}

func (s *Store) invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folderID == id {
		s.folderID = ""
	}
}

// listByFilter lists children of the root folder matching the given
// query fragment, most recently modified first. Only the first page the
// provider returns is consulted.
func (s *Store) listByFilter(ctx context.Context, filter string) ([]*drivev3.File, error) {
	var files []*drivev3.File
	err := s.withFolder(ctx, func(folderID string) error {
		q := fmt.Sprintf("'%s' in parents and (%s) and trashed=false", folderID, filter)
		list, err := s.svc.Files.List().
			Q(q).
			Fields(listFields).
			OrderBy("modifiedTime desc").
			Context(ctx).
			Do()
		if err != nil {
			return mapErr(err)
		}
		files = list.Files
		return nil
	})
	return files, err
}

// ListKnowledgeFiles implements domain.Store.
func (s *Store) ListKnowledgeFiles(ctx context.Context) ([]domain.KnowledgeFile, error) {
	files, err := s.listByFilter(ctx, knowledgeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list knowledge files: %w", err)
	}

	out := make([]domain.KnowledgeFile, 0, len(files))
	for _, f := range files {
		out = append(out, domain.KnowledgeFile{
			ID:       f.Id,
			Name:     f.Name,
			MimeType: f.MimeType,
		})
	}
	return out, nil
}

// ListConversations implements domain.Store.
func (s *Store) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	files, err := s.listByFilter(ctx, conversationFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	out := make([]domain.Conversation, 0, len(files))
	for _, f := range files {
		out = append(out, domain.Conversation{
			ID:           f.Id,
			Name:         domain.ConversationDisplayName(f.Name),
			ModifiedTime: parseModifiedTime(f.ModifiedTime),
		})
	}
	return out, nil
}

// CreateConversation implements domain.Store. Metadata-only creation;
// the artifact starts empty.
func (s *Store) CreateConversation(ctx context.Context, name string) (*domain.Conversation, error) {
	var created *drivev3.File
	err := s.withFolder(ctx, func(folderID string) error {
		f, err := s.svc.Files.Create(&drivev3.File{
			Name:     name,
			MimeType: domain.MimeText,
			Parents:  []string{folderID},
		}).Fields(createFields).Context(ctx).Do()
		if err != nil {
			return mapErr(err)
		}
		created = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return &domain.Conversation{
		ID:           created.Id,
		Name:         domain.ConversationDisplayName(created.Name),
		ModifiedTime: parseModifiedTime(created.ModifiedTime),
	}, nil
}

// UploadKnowledgeFile implements domain.Store. Metadata and content go
// up in one multipart request.
func (s *Store) UploadKnowledgeFile(ctx context.Context, name, mimeType string, content []byte) error {
	err := s.withFolder(ctx, func(folderID string) error {
		_, err := s.svc.Files.Create(&drivev3.File{
			Name:    name,
			Parents: []string{folderID},
		}).Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).Context(ctx).Do()
		return mapErr(err)
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// FileContent implements domain.Store.
func (s *Store) FileContent(ctx context.Context, id string) ([]byte, error) {
	resp, err := s.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", id, mapErr(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", id, err)
	}
	// An empty body is a valid empty file, never an error.
	return data, nil
}

// ConversationContent implements domain.Store.
func (s *Store) ConversationContent(ctx context.Context, id string) (string, error) {
	data, err := s.FileContent(ctx, id)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// UpdateConversationContent implements domain.Store. Full replace, not a
// byte-level patch.
func (s *Store) UpdateConversationContent(ctx context.Context, id, content string) error {
	_, err := s.svc.Files.Update(id, &drivev3.File{}).
		Media(strings.NewReader(content), googleapi.ContentType(domain.MimeText)).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update conversation %s: %w", id, mapErr(err))
	}
	return nil
}

// Delete implements domain.Store. Hard delete, no trash.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.svc.Files.Delete(id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, mapErr(err))
	}
	return nil
}

// mapErr translates googleapi status codes onto the domain taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 401, 403:
			return fmt.Errorf("%w: %v", domain.ErrNotAuthenticated, err)
		case 404:
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
	}
	return err
}

func isNotFound(err error) bool {
	return err != nil && errors.Is(err, domain.ErrNotFound)
}

func parseModifiedTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		log.Warn().Str("modified_time", raw).Msg("unparseable modifiedTime from provider")
		return time.Time{}
	}
	return t
}
