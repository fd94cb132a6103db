package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `
d.id, d.file_id, d.user_id, d.name, d.summary, d.document_type, d.content, d.upload_date, d.created_at, d.updated_at,
f.id, f.name, f.url, f.storage_key, f.size_bytes, f.mime_type, f.document_type, f.created_at, f.updated_at`

// CreateFile inserts a new file metadata row.
func (r *PGRepo) CreateFile(ctx context.Context, f File) error {
	const query = `
INSERT INTO files (id, user_id, name, url, storage_key, size_bytes, mime_type, document_type, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		f.ID,
		f.UserID,
		f.Name,
		f.URL,
		f.StorageKey,
		f.SizeBytes,
		f.MimeType,
		nullString(f.DocumentType),
		f.CreatedAt,
		f.UpdatedAt,
	)
	return err
}

// GetFileByID fetches a file owned by the user.
func (r *PGRepo) GetFileByID(ctx context.Context, userId, fileId string) (File, error) {
	const query = `
SELECT id, user_id, name, url, storage_key, size_bytes, mime_type, document_type, created_at, updated_at
FROM files
WHERE user_id = $1 AND id = $2`

	var f File
	var docType sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userId, fileId).Scan(
		&f.ID,
		&f.UserID,
		&f.Name,
		&f.URL,
		&f.StorageKey,
		&f.SizeBytes,
		&f.MimeType,
		&docType,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return File{}, ErrNotFound
		}
		return File{}, err
	}
	if docType.Valid {
		f.DocumentType = docType.String
	}
	return f, nil
}

// DeleteFile removes a file row owned by the user.
func (r *PGRepo) DeleteFile(ctx context.Context, userId, fileId string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM files WHERE user_id = $1 AND id = $2`, userId, fileId)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateDocument inserts a new document row.
func (r *PGRepo) CreateDocument(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (id, file_id, user_id, name, summary, document_type, content, upload_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		nullString(doc.FileID),
		doc.UserID,
		doc.Name,
		nullString(doc.Summary),
		nullString(string(doc.Type)),
		doc.Content,
		doc.UploadDate,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// GetByID fetches a document with joined file metadata, ownership-scoped.
func (r *PGRepo) GetByID(ctx context.Context, userId, documentId string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents d
LEFT JOIN files f ON f.id = d.file_id AND f.user_id = d.user_id
WHERE d.user_id = $1 AND d.id = $2`

	row := r.DB.QueryRowContext(ctx, query, userId, documentId)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists a user's documents newest-first with joined file metadata.
func (r *PGRepo) ListByUser(ctx context.Context, userId string) ([]Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents d
LEFT JOIN files f ON f.id = d.file_id AND f.user_id = d.user_id
WHERE d.user_id = $1
ORDER BY d.created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// UpdateDocument applies a partial metadata update and returns the new row.
func (r *PGRepo) UpdateDocument(ctx context.Context, userId, documentId string, upd Update) (Document, error) {
	const query = `
UPDATE documents
SET summary = COALESCE($1, summary),
    document_type = COALESCE($2, document_type),
    updated_at = $3
WHERE user_id = $4 AND id = $5`

	res, err := r.DB.ExecContext(
		ctx,
		query,
		nullStringPtr(upd.Summary),
		nullStringPtr(upd.DocumentType),
		time.Now().UTC(),
		userId,
		documentId,
	)
	if err != nil {
		return Document{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return Document{}, ErrNotFound
	}
	return r.GetByID(ctx, userId, documentId)
}

// DeleteDocument removes a document row and returns the associated file ID,
// if any. The file row itself is not touched here; cascading is the
// service's responsibility so a file-delete failure cannot undo this step.
func (r *PGRepo) DeleteDocument(ctx context.Context, userId, documentId string) (string, error) {
	var fileId sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT file_id FROM documents WHERE user_id = $1 AND id = $2`,
		userId, documentId,
	).Scan(&fileId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM documents WHERE user_id = $1 AND id = $2`,
		userId, documentId,
	)
	if err != nil {
		return "", err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return "", ErrNotFound
	}
	if fileId.Valid {
		return fileId.String, nil
	}
	return "", nil
}

// DeleteAllByUser removes every document and file row for a user in one
// transaction and reports what was removed.
func (r *PGRepo) DeleteAllByUser(ctx context.Context, userId string) (int, []File, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT id, user_id, name, url, storage_key, size_bytes, mime_type, created_at, updated_at FROM files WHERE user_id = $1`,
		userId,
	)
	if err != nil {
		return 0, nil, err
	}
	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.URL, &f.StorageKey, &f.SizeBytes, &f.MimeType, &f.CreatedAt, &f.UpdatedAt); err != nil {
			rows.Close()
			return 0, nil, err
		}
		files = append(files, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	docRes, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE user_id = $1`, userId)
	if err != nil {
		return 0, nil, err
	}
	docCount, _ := docRes.RowsAffected()

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE user_id = $1`, userId); err != nil {
		return 0, nil, err
	}

	if err := tx.Commit(); err != nil {
		return 0, nil, err
	}
	return int(docCount), files, nil
}

// ClaimGuest reassigns documents and files owned by a guest identity to an
// authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	docRes, err := tx.ExecContext(ctx, `UPDATE documents SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	docCount, _ := docRes.RowsAffected()

	if _, err := tx.ExecContext(ctx, `UPDATE files SET user_id = $1 WHERE user_id = $2`, authedUserID, guestUserID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(docCount), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var fileId sql.NullString
	var summary sql.NullString
	var docType sql.NullString

	var fID, fName, fURL, fStorageKey, fMime, fDocType sql.NullString
	var fSize sql.NullInt64
	var fCreated, fUpdated sql.NullTime

	err := row.Scan(
		&doc.ID,
		&fileId,
		&doc.UserID,
		&doc.Name,
		&summary,
		&docType,
		&doc.Content,
		&doc.UploadDate,
		&doc.CreatedAt,
		&doc.UpdatedAt,
		&fID,
		&fName,
		&fURL,
		&fStorageKey,
		&fSize,
		&fMime,
		&fDocType,
		&fCreated,
		&fUpdated,
	)
	if err != nil {
		return Document{}, err
	}

	if fileId.Valid {
		doc.FileID = fileId.String
	}
	if summary.Valid {
		doc.Summary = summary.String
	}
	if docType.Valid {
		doc.Type = coerceStoredType(docType.String)
	} else {
		doc.Type = coerceStoredType("")
	}
	if fID.Valid {
		f := &File{
			ID:         fID.String,
			UserID:     doc.UserID,
			Name:       fName.String,
			URL:        fURL.String,
			StorageKey: fStorageKey.String,
			SizeBytes:  fSize.Int64,
			MimeType:   fMime.String,
		}
		if fDocType.Valid {
			f.DocumentType = fDocType.String
		}
		if fCreated.Valid {
			f.CreatedAt = fCreated.Time
		}
		if fUpdated.Valid {
			f.UpdatedAt = fUpdated.Time
		}
		doc.File = f
	}
	return doc, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
