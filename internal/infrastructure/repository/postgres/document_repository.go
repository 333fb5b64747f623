package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

const documentColumns = `id, subfolder_id, category, type, name, storage_url, size_bytes, mime_type, status,
	uploaded_by_id, uploaded_at, expiration_date, submitted_at, reviewed_by_id, reviewed_at, review_notes, updated_at`

type DocumentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
`,
		doc.ID, doc.SubfolderID, string(doc.Category), string(doc.Type), doc.Name, doc.StorageURL, doc.SizeBytes,
		doc.MimeType, string(doc.Status), doc.UploadedByID, doc.UploadedAt, nullableTime(doc.ExpirationDate),
		nullableTime(doc.SubmittedAt), nullableString(doc.ReviewedByID), nullableTime(doc.ReviewedAt),
		nullableString(doc.ReviewNotes), doc.UpdatedAt,
	)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return domain.NotFound("insert document", "subfolder", doc.SubfolderID)
		}
		return domain.Persistence("insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("get document", "document", id)
		}
		return nil, domain.Persistence("scan document", err)
	}
	return doc, nil
}

// LockByIDs locks rows in id order and returns them in the requested order.
func (r *DocumentRepository) LockByIDs(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	docs, err := r.query(ctx, "lock documents", `
SELECT `+documentColumns+`
FROM documents
WHERE id IN (`+placeholders(1, len(ids))+`)
ORDER BY id
FOR UPDATE
`, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Document, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}
	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, domain.NotFound("lock documents", "document", id)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *DocumentRepository) ListBySubfolder(ctx context.Context, subfolderID string) ([]domain.Document, error) {
	return r.query(ctx, "list documents", `
SELECT `+documentColumns+`
FROM documents
WHERE subfolder_id = $1
ORDER BY type, id
`, subfolderID)
}

func (r *DocumentRepository) LockBySubfolder(ctx context.Context, subfolderID string) ([]domain.Document, error) {
	return r.query(ctx, "lock subfolder documents", `
SELECT `+documentColumns+`
FROM documents
WHERE subfolder_id = $1
ORDER BY type, id
FOR UPDATE
`, subfolderID)
}

// Update writes every mutable column only if the row still has the expected status.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document, expected domain.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET name = $2, storage_url = $3, size_bytes = $4, mime_type = $5, status = $6,
	uploaded_by_id = $7, uploaded_at = $8, expiration_date = $9, submitted_at = $10,
	reviewed_by_id = $11, reviewed_at = $12, review_notes = $13, updated_at = $14
WHERE id = $1 AND status = $15
`,
		doc.ID, doc.Name, doc.StorageURL, doc.SizeBytes, doc.MimeType, string(doc.Status),
		doc.UploadedByID, doc.UploadedAt, nullableTime(doc.ExpirationDate), nullableTime(doc.SubmittedAt),
		nullableString(doc.ReviewedByID), nullableTime(doc.ReviewedAt), nullableString(doc.ReviewNotes),
		doc.UpdatedAt, string(expected),
	)
	if err != nil {
		return domain.Persistence("update document", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Persistence("update document rows affected", err)
	}
	if affected == 1 {
		return nil
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM documents WHERE id = $1`, doc.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("update document", "document", doc.ID)
	}
	if err != nil {
		return domain.Persistence("read document status", err)
	}
	return &domain.TransitionError{
		Entity:  "document",
		ID:      doc.ID,
		Current: current,
		Event:   "update",
		Allowed: []string{string(expected)},
	}
}

// ExpireApproved is a single conditional bulk update; rows already EXPIRED are untouched.
func (r *DocumentRepository) ExpireApproved(ctx context.Context, now time.Time) ([]domain.Document, error) {
	docs, err := r.query(ctx, "expire documents", `
UPDATE documents
SET status = $1, updated_at = $3
WHERE status = $2 AND expiration_date IS NOT NULL AND expiration_date < $3
RETURNING `+documentColumns,
		string(domain.StatusExpired), string(domain.StatusApproved), now)
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (r *DocumentRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence(op, err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, domain.Persistence(op, fmt.Errorf("scan document: %w", err))
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence(op, err)
	}
	return out, nil
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc                             domain.Document
		category, docType, status       string
		expiration, submitted, reviewed sql.NullTime
		reviewedBy, notes               sql.NullString
	)
	err := row.Scan(
		&doc.ID, &doc.SubfolderID, &category, &docType, &doc.Name, &doc.StorageURL, &doc.SizeBytes,
		&doc.MimeType, &status, &doc.UploadedByID, &doc.UploadedAt, &expiration, &submitted,
		&reviewedBy, &reviewed, &notes, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Category = domain.Category(category)
	doc.Type = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(status)
	doc.UploadedAt = doc.UploadedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	doc.ExpirationDate = timePtr(expiration)
	doc.SubmittedAt = timePtr(submitted)
	doc.ReviewedAt = timePtr(reviewed)
	doc.ReviewedByID = stringPtr(reviewedBy)
	doc.ReviewNotes = stringPtr(notes)
	return &doc, nil
}
