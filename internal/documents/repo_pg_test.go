package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"medisafe-backend/internal/flows"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func documentRow(doc Document) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"d.id", "d.file_id", "d.user_id", "d.name", "d.summary", "d.document_type",
		"d.content", "d.upload_date", "d.created_at", "d.updated_at",
		"f.id", "f.name", "f.url", "f.storage_key", "f.size_bytes", "f.mime_type",
		"f.document_type", "f.created_at", "f.updated_at",
	})
	rows.AddRow(
		doc.ID, doc.FileID, doc.UserID, doc.Name, doc.Summary, string(doc.Type),
		doc.Content, doc.UploadDate, doc.CreatedAt, doc.UpdatedAt,
		nil, nil, nil, nil, nil, nil, nil, nil, nil,
	)
	return rows
}

func TestPGRepoCreateDocument(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	doc := Document{
		ID:         "doc-1",
		FileID:     "file-1",
		UserID:     "user-1",
		Name:       "bloodtest.pdf",
		Summary:    "Counts within range.",
		Type:       flows.TypeLabReport,
		Content:    "Hemoglobin 13.5",
		UploadDate: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			sqlmock.AnyArg(), // file_id
			doc.UserID,
			doc.Name,
			sqlmock.AnyArg(), // summary
			sqlmock.AnyArg(), // document_type
			doc.Content,
			doc.UploadDate,
			doc.CreatedAt,
			doc.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.CreateDocument(context.Background(), doc); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM documents d").
		WithArgs("user-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"d.id"}))

	_, err := repo.GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoGetByIDScansDocument(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	doc := Document{
		ID: "doc-1", FileID: "file-1", UserID: "user-1", Name: "a.pdf",
		Summary: "sum", Type: flows.TypePrescription, Content: "text",
		UploadDate: now, CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery("SELECT (.+) FROM documents d").
		WithArgs("user-1", "doc-1").
		WillReturnRows(documentRow(doc))

	got, err := repo.GetByID(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Type != flows.TypePrescription {
		t.Fatalf("expected Prescription, got %q", got.Type)
	}
	if got.File != nil {
		t.Fatal("expected no joined file for null file columns")
	}
}

func TestPGRepoUpdateDocumentUsesCoalesce(t *testing.T) {
	repo, mock := newMockRepo(t)

	summary := "new summary"
	mock.ExpectExec("UPDATE documents").
		WithArgs(
			sqlmock.AnyArg(), // summary
			sqlmock.AnyArg(), // document_type (null, COALESCE keeps old)
			sqlmock.AnyArg(), // updated_at
			"user-1",
			"doc-1",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	doc := Document{
		ID: "doc-1", UserID: "user-1", Name: "a.pdf", Summary: summary,
		Type: flows.TypeOther, Content: "text",
		UploadDate: now, CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery("SELECT (.+) FROM documents d").
		WithArgs("user-1", "doc-1").
		WillReturnRows(documentRow(doc))

	got, err := repo.UpdateDocument(context.Background(), "user-1", "doc-1", Update{Summary: &summary})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	if got.Summary != summary {
		t.Fatalf("expected updated summary, got %q", got.Summary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateDocumentNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	summary := "s"
	mock.ExpectExec("UPDATE documents").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "user-1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateDocument(context.Background(), "user-1", "missing", Update{Summary: &summary})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteDocumentReturnsFileID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT file_id FROM documents").
		WithArgs("user-1", "doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"file_id"}).AddRow("file-1"))
	mock.ExpectExec("DELETE FROM documents").
		WithArgs("user-1", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	fileId, err := repo.DeleteDocument(context.Background(), "user-1", "doc-1")
	if err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if fileId != "file-1" {
		t.Fatalf("expected file-1, got %q", fileId)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimGuestRunsInTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents SET user_id").
		WithArgs("user-1", "guest:abc").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE files SET user_id").
		WithArgs("user-1", "guest:abc").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	moved, err := repo.ClaimGuest(context.Background(), "guest:abc", "user-1")
	if err != nil {
		t.Fatalf("ClaimGuest: %v", err)
	}
	if moved != 2 {
		t.Fatalf("expected 2 moved docs, got %d", moved)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteAllByUserCollectsFiles(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM files WHERE user_id").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "url", "storage_key", "size_bytes", "mime_type", "created_at", "updated_at",
		}).AddRow("file-1", "user-1", "a.pdf", "http://x/a.pdf", "k/a.pdf", 10, "application/pdf", now, now))
	mock.ExpectExec("DELETE FROM documents WHERE user_id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM files WHERE user_id").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	count, files, err := repo.DeleteAllByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("DeleteAllByUser: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 deleted doc, got %d", count)
	}
	if len(files) != 1 || files[0].StorageKey != "k/a.pdf" {
		t.Fatalf("unexpected files %+v", files)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
