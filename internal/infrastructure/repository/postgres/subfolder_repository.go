package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

const subfolderColumns = `id, startup_folder_id, category, entity_id, entity_label, is_driver, status,
	submitted_at, additional_notification_emails, created_at, updated_at`

type SubfolderRepository struct {
	db DBTX
}

func NewSubfolderRepository(db DBTX) *SubfolderRepository {
	return &SubfolderRepository{db: db}
}

func (r *SubfolderRepository) Create(ctx context.Context, sf *domain.Subfolder) error {
	emails, err := marshalEmails(sf.AdditionalNotificationEmails)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO subfolders (`+subfolderColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		sf.ID, sf.StartupFolderID, string(sf.Category), sf.EntityID, sf.EntityLabel, sf.IsDriver,
		string(sf.Status), nullableTime(sf.SubmittedAt), emails, sf.CreatedAt, sf.UpdatedAt,
	)
	switch pgErrorCode(err) {
	case "":
	case uniqueViolation:
		return &domain.LinkConflictError{StartupFolderID: sf.StartupFolderID, EntityID: sf.EntityID, Category: sf.Category}
	case foreignKeyViolation:
		return domain.NotFound("insert subfolder", "startup folder", sf.StartupFolderID)
	}
	if err != nil {
		return domain.Persistence("insert subfolder", err)
	}
	return nil
}

func (r *SubfolderRepository) GetByID(ctx context.Context, id string) (*domain.Subfolder, error) {
	return r.one(ctx, "get subfolder", id, `SELECT `+subfolderColumns+` FROM subfolders WHERE id = $1`, id)
}

func (r *SubfolderRepository) LockByID(ctx context.Context, id string) (*domain.Subfolder, error) {
	return r.one(ctx, "lock subfolder", id, `SELECT `+subfolderColumns+` FROM subfolders WHERE id = $1 FOR UPDATE`, id)
}

func (r *SubfolderRepository) FindByEntity(ctx context.Context, startupFolderID string, category domain.Category, entityID string) (*domain.Subfolder, error) {
	return r.one(ctx, "find subfolder by entity", entityID, `
SELECT `+subfolderColumns+`
FROM subfolders
WHERE startup_folder_id = $1 AND category = $2 AND entity_id = $3
`, startupFolderID, string(category), entityID)
}

func (r *SubfolderRepository) ListByStartupFolder(ctx context.Context, startupFolderID string) ([]domain.Subfolder, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+subfolderColumns+`
FROM subfolders
WHERE startup_folder_id = $1
ORDER BY category, entity_label, id
`, startupFolderID)
	if err != nil {
		return nil, domain.Persistence("list subfolders", err)
	}
	defer rows.Close()

	out := make([]domain.Subfolder, 0)
	for rows.Next() {
		sf, err := scanSubfolder(rows)
		if err != nil {
			return nil, domain.Persistence("list subfolders", err)
		}
		out = append(out, *sf)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list subfolders", err)
	}
	return out, nil
}

// Update is conditional on the status the caller read inside the same transaction.
func (r *SubfolderRepository) Update(ctx context.Context, sf *domain.Subfolder, expected domain.SubfolderStatus) error {
	emails, err := marshalEmails(sf.AdditionalNotificationEmails)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE subfolders
SET entity_label = $2, is_driver = $3, status = $4, submitted_at = $5,
	additional_notification_emails = $6, updated_at = $7
WHERE id = $1 AND status = $8
`,
		sf.ID, sf.EntityLabel, sf.IsDriver, string(sf.Status), nullableTime(sf.SubmittedAt),
		emails, sf.UpdatedAt, string(expected),
	)
	if err != nil {
		return domain.Persistence("update subfolder", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Persistence("update subfolder rows affected", err)
	}
	if affected == 1 {
		return nil
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM subfolders WHERE id = $1`, sf.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("update subfolder", "subfolder", sf.ID)
	}
	if err != nil {
		return domain.Persistence("read subfolder status", err)
	}
	return &domain.TransitionError{
		Entity:  "subfolder",
		ID:      sf.ID,
		Current: current,
		Event:   "update",
		Allowed: []string{string(expected)},
	}
}

func (r *SubfolderRepository) one(ctx context.Context, op, id, query string, args ...any) (*domain.Subfolder, error) {
	sf, err := scanSubfolder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "subfolder", id)
		}
		return nil, domain.Persistence(op, err)
	}
	return sf, nil
}

func scanSubfolder(row rowScanner) (*domain.Subfolder, error) {
	var (
		sf               domain.Subfolder
		category, status string
		submitted        sql.NullTime
		emailsRaw        []byte
	)
	err := row.Scan(
		&sf.ID, &sf.StartupFolderID, &category, &sf.EntityID, &sf.EntityLabel, &sf.IsDriver, &status,
		&submitted, &emailsRaw, &sf.CreatedAt, &sf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(emailsRaw, &sf.AdditionalNotificationEmails); err != nil {
		return nil, fmt.Errorf("unmarshal notification emails: %w", err)
	}
	if sf.AdditionalNotificationEmails == nil {
		sf.AdditionalNotificationEmails = []string{}
	}
	sf.Category = domain.Category(category)
	sf.Status = domain.SubfolderStatus(status)
	sf.SubmittedAt = timePtr(submitted)
	sf.CreatedAt = sf.CreatedAt.UTC()
	sf.UpdatedAt = sf.UpdatedAt.UTC()
	return &sf, nil
}

func marshalEmails(emails []string) ([]byte, error) {
	if emails == nil {
		emails = []string{}
	}
	raw, err := json.Marshal(emails)
	if err != nil {
		return nil, fmt.Errorf("marshal notification emails: %w", err)
	}
	return raw, nil
}
