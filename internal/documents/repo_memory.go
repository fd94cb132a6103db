package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo used in dev and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	docs  map[string][]Document // userId -> documents
	files map[string][]File     // userId -> files

	// FailFileDeletes forces DeleteFile to fail, for exercising the
	// best-effort cascade path in tests.
	FailFileDeletes bool
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:  make(map[string][]Document),
		files: make(map[string][]File),
	}
}

// CreateFile stores a file metadata record.
func (r *MemoryRepo) CreateFile(ctx context.Context, f File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.UserID] = append(r.files[f.UserID], f)
	return nil
}

// GetFileByID returns a file owned by the user.
func (r *MemoryRepo) GetFileByID(ctx context.Context, userId, fileId string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.files[userId] {
		if f.ID == fileId {
			return f, nil
		}
	}
	return File{}, ErrNotFound
}

// DeleteFile removes a file record owned by the user.
func (r *MemoryRepo) DeleteFile(ctx context.Context, userId, fileId string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailFileDeletes {
		return errForcedFailure
	}
	files := r.files[userId]
	for i, f := range files {
		if f.ID == fileId {
			r.files[userId] = append(files[:i], files[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// CreateDocument stores a document record.
func (r *MemoryRepo) CreateDocument(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.UserID] = append(r.docs[doc.UserID], doc)
	return nil
}

// GetByID returns a document by ID for a user, with joined file metadata.
func (r *MemoryRepo) GetByID(ctx context.Context, userId, documentId string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs[userId] {
		if doc.ID == documentId {
			return r.joinFileLocked(doc), nil
		}
	}
	return Document{}, ErrNotFound
}

// ListByUser returns a user's documents newest-first with joined file metadata.
func (r *MemoryRepo) ListByUser(ctx context.Context, userId string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]Document, len(r.docs[userId]))
	copy(docs, r.docs[userId])
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	for i := range docs {
		docs[i] = r.joinFileLocked(docs[i])
	}
	return docs, nil
}

// UpdateDocument applies a partial metadata update.
func (r *MemoryRepo) UpdateDocument(ctx context.Context, userId, documentId string, upd Update) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.docs[userId]
	for i := range docs {
		if docs[i].ID != documentId {
			continue
		}
		if upd.Summary != nil {
			docs[i].Summary = *upd.Summary
		}
		if upd.DocumentType != nil {
			docs[i].Type = coerceStoredType(*upd.DocumentType)
		}
		docs[i].UpdatedAt = time.Now().UTC()
		r.docs[userId] = docs
		return r.joinFileLocked(docs[i]), nil
	}
	return Document{}, ErrNotFound
}

// DeleteDocument removes a document and returns its associated file ID, if any.
func (r *MemoryRepo) DeleteDocument(ctx context.Context, userId, documentId string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.docs[userId]
	for i := range docs {
		if docs[i].ID == documentId {
			fileId := docs[i].FileID
			r.docs[userId] = append(docs[:i], docs[i+1:]...)
			return fileId, nil
		}
	}
	return "", ErrNotFound
}

// DeleteAllByUser removes every document and file for a user.
func (r *MemoryRepo) DeleteAllByUser(ctx context.Context, userId string) (int, []File, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docCount := len(r.docs[userId])
	files := r.files[userId]
	delete(r.docs, userId)
	delete(r.files, userId)
	return docCount, files, nil
}

// ClaimGuest reassigns guest-owned documents and files to an authed user.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	moved := len(r.docs[guestUserID])
	for _, doc := range r.docs[guestUserID] {
		doc.UserID = authedUserID
		r.docs[authedUserID] = append(r.docs[authedUserID], doc)
	}
	delete(r.docs, guestUserID)

	for _, f := range r.files[guestUserID] {
		f.UserID = authedUserID
		r.files[authedUserID] = append(r.files[authedUserID], f)
	}
	delete(r.files, guestUserID)

	return moved, nil
}

func (r *MemoryRepo) joinFileLocked(doc Document) Document {
	if doc.FileID == "" {
		return doc
	}
	for _, f := range r.files[doc.UserID] {
		if f.ID == doc.FileID {
			joined := f
			doc.File = &joined
			return doc
		}
	}
	return doc
}

var _ Repo = (*MemoryRepo)(nil)
