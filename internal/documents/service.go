package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"medisafe-backend/internal/flows"
	"medisafe-backend/internal/shared/storage/object"
	"medisafe-backend/internal/shared/telemetry"
)

const (
	listCacheTTL     = 30 * time.Second
	listCacheCleanup = 5 * time.Minute
)

// Service contains business logic for documents and their stored files.
type Service struct {
	Store object.ObjectStore
	Repo  Repo

	// listCache is the server-side rendition of the original client-held
	// documents cache: short-TTL per-user list reads, dropped on any
	// mutation for that user.
	listCache *gocache.Cache
}

// NewService constructs a document service.
func NewService(store object.ObjectStore, repo Repo) *Service {
	return &Service{
		Store:     store,
		Repo:      repo,
		listCache: gocache.New(listCacheTTL, listCacheCleanup),
	}
}

// UploadFile stores raw bytes and records file metadata. The storage key is
// namespaced by user and timestamp-qualified to avoid collisions.
func (s *Service) UploadFile(ctx context.Context, userId, fileName string, r io.Reader, typeHint string) (File, error) {
	if strings.TrimSpace(userId) == "" || strings.TrimSpace(fileName) == "" {
		return File{}, ErrInvalidInput
	}

	saved, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return File{}, fmt.Errorf("store file: %w", err)
	}

	now := time.Now().UTC()
	f := File{
		ID:           uuid.NewString(),
		UserID:       userId,
		Name:         fileName,
		URL:          saved.PublicURL,
		StorageKey:   saved.StorageKey,
		SizeBytes:    saved.SizeBytes,
		MimeType:     saved.MimeType,
		DocumentType: typeHint,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateFile(ctx, f); err != nil {
		// The stored bytes are unreachable without a metadata row; best-effort cleanup.
		if delErr := s.Store.Delete(ctx, saved.StorageKey); delErr != nil {
			telemetry.Error("file.orphan_bytes", map[string]any{
				"storage_key": saved.StorageKey,
				"user_id":     userId,
				"error":       delErr.Error(),
			})
		}
		return File{}, fmt.Errorf("record file: %w", err)
	}
	return f, nil
}

// Create persists an assembled document record.
func (s *Service) Create(ctx context.Context, doc Document) (Document, error) {
	if strings.TrimSpace(doc.UserID) == "" || strings.TrimSpace(doc.Name) == "" {
		return Document{}, ErrInvalidInput
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.Type = flows.CoerceDocumentType(string(doc.Type))

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now.Truncate(24 * time.Hour)
	}

	if err := s.Repo.CreateDocument(ctx, doc); err != nil {
		return Document{}, err
	}
	s.invalidate(doc.UserID)
	return doc, nil
}

// List returns a user's documents newest-first, joined with file metadata.
func (s *Service) List(ctx context.Context, userId string) ([]Document, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, ErrInvalidInput
	}
	if cached, ok := s.listCache.Get(userId); ok {
		if docs, ok := cached.([]Document); ok {
			return docs, nil
		}
	}
	docs, err := s.Repo.ListByUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	s.listCache.Set(userId, docs, gocache.DefaultExpiration)
	return docs, nil
}

// Get returns a single document, ownership-scoped.
func (s *Service) Get(ctx context.Context, userId, documentId string) (Document, error) {
	if strings.TrimSpace(userId) == "" || strings.TrimSpace(documentId) == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userId, documentId)
}

// Update applies a partial metadata update. A document type outside the
// taxonomy is rejected rather than coerced: the caller chose it explicitly.
func (s *Service) Update(ctx context.Context, userId, documentId string, upd Update) (Document, error) {
	if strings.TrimSpace(userId) == "" || strings.TrimSpace(documentId) == "" {
		return Document{}, ErrInvalidInput
	}
	if upd.Summary == nil && upd.DocumentType == nil {
		return Document{}, ErrInvalidInput
	}
	if upd.DocumentType != nil && !flows.ValidDocumentType(*upd.DocumentType) {
		return Document{}, fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, *upd.DocumentType)
	}

	doc, err := s.Repo.UpdateDocument(ctx, userId, documentId, upd)
	if err != nil {
		return Document{}, err
	}
	s.invalidate(userId)
	return doc, nil
}

// Delete removes a document and best-effort deletes its associated file. The
// document row goes first; a file failure is logged with the orphaned file ID
// for later cleanup but never fails the operation.
func (s *Service) Delete(ctx context.Context, userId, documentId string) error {
	if strings.TrimSpace(userId) == "" || strings.TrimSpace(documentId) == "" {
		return ErrInvalidInput
	}

	fileId, err := s.Repo.DeleteDocument(ctx, userId, documentId)
	if err != nil {
		return err
	}
	s.invalidate(userId)

	if fileId != "" {
		s.deleteFileBestEffort(ctx, userId, documentId, fileId)
	}
	return nil
}

// DeleteAllForUser removes every document and file for a user; stored bytes
// are deleted best-effort.
func (s *Service) DeleteAllForUser(ctx context.Context, userId string) (int, error) {
	if strings.TrimSpace(userId) == "" {
		return 0, ErrInvalidInput
	}
	docCount, files, err := s.Repo.DeleteAllByUser(ctx, userId)
	if err != nil {
		return 0, err
	}
	s.invalidate(userId)

	for _, f := range files {
		if f.StorageKey == "" {
			continue
		}
		if err := s.Store.Delete(ctx, f.StorageKey); err != nil {
			telemetry.Error("file.orphan_bytes", map[string]any{
				"storage_key": f.StorageKey,
				"user_id":     userId,
				"error":       err.Error(),
			})
		}
	}
	return docCount, nil
}

// ClaimGuest reassigns a guest identity's documents and files to an authed user.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return 0, ErrInvalidInput
	}
	moved, err := s.Repo.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return 0, err
	}
	s.invalidate(guestUserID)
	s.invalidate(authedUserID)
	return moved, nil
}

func (s *Service) deleteFileBestEffort(ctx context.Context, userId, documentId, fileId string) {
	f, err := s.Repo.GetFileByID(ctx, userId, fileId)
	if err != nil && !errors.Is(err, ErrNotFound) {
		telemetry.Error("document.file_orphaned", map[string]any{
			"document_id": documentId,
			"file_id":     fileId,
			"user_id":     userId,
			"error":       err.Error(),
		})
		return
	}

	if err := s.Repo.DeleteFile(ctx, userId, fileId); err != nil && !errors.Is(err, ErrNotFound) {
		telemetry.Error("document.file_orphaned", map[string]any{
			"document_id": documentId,
			"file_id":     fileId,
			"user_id":     userId,
			"error":       err.Error(),
		})
		return
	}

	if f.StorageKey != "" {
		if err := s.Store.Delete(ctx, f.StorageKey); err != nil {
			telemetry.Error("file.orphan_bytes", map[string]any{
				"storage_key": f.StorageKey,
				"file_id":     fileId,
				"user_id":     userId,
				"error":       err.Error(),
			})
		}
	}
}

func (s *Service) invalidate(userId string) {
	s.listCache.Delete(userId)
}
