package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type StartupFolderRepository struct {
	db DBTX
}

func NewStartupFolderRepository(db DBTX) *StartupFolderRepository {
	return &StartupFolderRepository{db: db}
}

func (r *StartupFolderRepository) Create(ctx context.Context, folder *domain.StartupFolder) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO startup_folders (id, company_id, company_name, name, type, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, folder.ID, folder.CompanyID, folder.CompanyName, folder.Name, string(folder.Type), folder.CreatedAt)
	if err != nil {
		return domain.Persistence("insert startup folder", err)
	}
	return nil
}

func (r *StartupFolderRepository) GetByID(ctx context.Context, id string) (*domain.StartupFolder, error) {
	var (
		folder     domain.StartupFolder
		folderType string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, company_id, company_name, name, type, created_at
FROM startup_folders
WHERE id = $1
`, id).Scan(&folder.ID, &folder.CompanyID, &folder.CompanyName, &folder.Name, &folderType, &folder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("get startup folder", "startup folder", id)
		}
		return nil, domain.Persistence("scan startup folder", err)
	}
	folder.Type = domain.FolderType(folderType)
	folder.CreatedAt = folder.CreatedAt.UTC()
	return &folder, nil
}

// Delete relies on ON DELETE CASCADE for subfolders, documents and audit rows.
func (r *StartupFolderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM startup_folders WHERE id = $1`, id)
	if err != nil {
		return domain.Persistence("delete startup folder", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Persistence("delete startup folder rows affected", err)
	}
	if affected == 0 {
		return domain.NotFound("delete startup folder", "startup folder", id)
	}
	return nil
}
