package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

// UserDirectory reads the users table, which is populated by the identity sync.
type UserDirectory struct {
	db DBTX
}

func NewUserDirectory(db DBTX) *UserDirectory {
	return &UserDirectory{db: db}
}

func (r *UserDirectory) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `SELECT id, email, name FROM users WHERE id = $1`, id).Scan(&u.ID, &u.Email, &u.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("get user", "user", id)
		}
		return nil, domain.Persistence("scan user", err)
	}
	return &u, nil
}
