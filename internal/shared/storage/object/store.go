package object

import (
	"context"
	"io"
)

// SavedObject describes a stored binary object.
type SavedObject struct {
	StorageKey string
	PublicURL  string
	SizeBytes  int64
	MimeType   string
}

// ObjectStore defines the contract for saving, retrieving and deleting
// binary objects. Keys are namespaced by user and qualified with a
// millisecond timestamp to avoid collisions.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (SavedObject, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
