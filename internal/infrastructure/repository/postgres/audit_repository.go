package postgres

import (
	"context"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) RecordStatusChange(ctx context.Context, entry domain.StatusChangeAudit) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO subfolder_status_changes (id, subfolder_id, actor_id, from_status, to_status, reason, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, entry.ID, entry.SubfolderID, entry.ActorID, string(entry.FromStatus), string(entry.ToStatus), entry.Reason, entry.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return domain.NotFound("insert status change", "subfolder", entry.SubfolderID)
		}
		return domain.Persistence("insert status change", err)
	}
	return nil
}

func (r *AuditRepository) ListStatusChanges(ctx context.Context, subfolderID string) ([]domain.StatusChangeAudit, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, subfolder_id, actor_id, from_status, to_status, reason, created_at
FROM subfolder_status_changes
WHERE subfolder_id = $1
ORDER BY created_at, id
`, subfolderID)
	if err != nil {
		return nil, domain.Persistence("list status changes", err)
	}
	defer rows.Close()

	out := make([]domain.StatusChangeAudit, 0)
	for rows.Next() {
		var (
			e        domain.StatusChangeAudit
			from, to string
		)
		if err := rows.Scan(&e.ID, &e.SubfolderID, &e.ActorID, &from, &to, &e.Reason, &e.CreatedAt); err != nil {
			return nil, domain.Persistence("scan status change", err)
		}
		e.FromStatus = domain.SubfolderStatus(from)
		e.ToStatus = domain.SubfolderStatus(to)
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence("list status changes", err)
	}
	return out, nil
}
