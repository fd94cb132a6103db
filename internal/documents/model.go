package documents

import (
	"time"

	"medisafe-backend/internal/flows"
)

// Document represents a classified, summarized health document owned by a user.
type Document struct {
	ID         string
	UserID     string
	FileID     string // optional weak reference to a File
	Name       string
	Type       flows.DocumentType
	Summary    string
	Content    string
	UploadDate time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	File       *File // joined metadata, populated on reads when FileID is set
}

// File describes the stored bytes behind a document.
type File struct {
	ID           string
	UserID       string
	Name         string
	URL          string
	StorageKey   string
	SizeBytes    int64
	MimeType     string
	DocumentType string // optional hint, not authoritative
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Update carries a partial metadata update; nil fields are left unchanged.
type Update struct {
	Summary      *string
	DocumentType *string
}

// coerceStoredType keeps the taxonomy invariant on the read path: whatever
// is in the store, callers only ever see a member of the closed set.
func coerceStoredType(raw string) flows.DocumentType {
	return flows.CoerceDocumentType(raw)
}
