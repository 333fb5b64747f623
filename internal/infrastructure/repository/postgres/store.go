package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// gooseUpContext is a seam for tests.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

type Store struct {
	*repositories
	db *sql.DB
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *sql.DB) *Store {
	return &Store{repositories: newRepositories(db), db: db}
}

// InTx runs fn inside one transaction; repositories handed to fn share it.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx ports.Repositories) error) error {
	return withTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, newRepositories(tx))
	})
}

// withTx commits on success and rolls back on error or panic; panics are rethrown.
func withTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()
	return fn(ctx, tx)
}

type repositories struct {
	documents  *DocumentRepository
	subfolders *SubfolderRepository
	folders    *StartupFolderRepository
	users      *UserDirectory
	audit      *AuditRepository
}

func newRepositories(db DBTX) *repositories {
	return &repositories{
		documents:  NewDocumentRepository(db),
		subfolders: NewSubfolderRepository(db),
		folders:    NewStartupFolderRepository(db),
		users:      NewUserDirectory(db),
		audit:      NewAuditRepository(db),
	}
}

func (r *repositories) Documents() ports.DocumentRepository           { return r.documents }
func (r *repositories) Subfolders() ports.SubfolderRepository         { return r.subfolders }
func (r *repositories) StartupFolders() ports.StartupFolderRepository { return r.folders }
func (r *repositories) Users() ports.UserDirectory                    { return r.users }
func (r *repositories) Audit() ports.AuditLog                         { return r.audit }

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// placeholders renders "$from, $from+1, ..." for n arguments.
func placeholders(from, n int) string {
	buf := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = append(buf, fmt.Sprintf("$%d", from+i)...)
	}
	return string(buf)
}
