package documents

import "context"

// Repo defines persistence operations for documents and files. Every
// operation is scoped by user ID; errors are typed so callers can tell
// not-found apart from transient failure.
type Repo interface {
	CreateFile(ctx context.Context, f File) error
	GetFileByID(ctx context.Context, userId, fileId string) (File, error)
	DeleteFile(ctx context.Context, userId, fileId string) error

	CreateDocument(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userId, documentId string) (Document, error)
	ListByUser(ctx context.Context, userId string) ([]Document, error)
	UpdateDocument(ctx context.Context, userId, documentId string, upd Update) (Document, error)
	DeleteDocument(ctx context.Context, userId, documentId string) (fileId string, err error)

	DeleteAllByUser(ctx context.Context, userId string) (docs int, files []File, err error)
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
