package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

// DocumentRepository persists compliance documents. Update is a compare-and-swap
// on the status the caller read; a lost race is reported as ErrInvalidTransition.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	LockByIDs(ctx context.Context, ids []string) ([]domain.Document, error)
	ListBySubfolder(ctx context.Context, subfolderID string) ([]domain.Document, error)
	LockBySubfolder(ctx context.Context, subfolderID string) ([]domain.Document, error)
	Update(ctx context.Context, doc *domain.Document, expected domain.DocumentStatus) error
	ExpireApproved(ctx context.Context, now time.Time) ([]domain.Document, error)
}

// SubfolderRepository persists subfolders. Create reports a duplicate entity link
// as *domain.LinkConflictError.
type SubfolderRepository interface {
	Create(ctx context.Context, sf *domain.Subfolder) error
	GetByID(ctx context.Context, id string) (*domain.Subfolder, error)
	LockByID(ctx context.Context, id string) (*domain.Subfolder, error)
	FindByEntity(ctx context.Context, startupFolderID string, category domain.Category, entityID string) (*domain.Subfolder, error)
	ListByStartupFolder(ctx context.Context, startupFolderID string) ([]domain.Subfolder, error)
	Update(ctx context.Context, sf *domain.Subfolder, expected domain.SubfolderStatus) error
}

type StartupFolderRepository interface {
	Create(ctx context.Context, folder *domain.StartupFolder) error
	GetByID(ctx context.Context, id string) (*domain.StartupFolder, error)
	Delete(ctx context.Context, id string) error
}

// UserDirectory resolves user contact data managed outside this service.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type AuditLog interface {
	RecordStatusChange(ctx context.Context, entry domain.StatusChangeAudit) error
	ListStatusChanges(ctx context.Context, subfolderID string) ([]domain.StatusChangeAudit, error)
}

type Repositories interface {
	Documents() DocumentRepository
	Subfolders() SubfolderRepository
	StartupFolders() StartupFolderRepository
	Users() UserDirectory
	Audit() AuditLog
}

// Store is the transactional persistence collaborator. Everything fn does through
// tx commits together or not at all.
type Store interface {
	Repositories
	InTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

// NotificationDispatcher delivers review requests. Its failures never undo a submission.
type NotificationDispatcher interface {
	NotifyReviewRequested(ctx context.Context, req domain.ReviewRequest) error
}

// ChangeNotifier announces committed mutations to cache/subscription layers.
type ChangeNotifier interface {
	EntityChanged(ctx context.Context, event domain.ChangeEvent) error
}

// Authorizer is the opaque capability gate consulted before every mutation.
type Authorizer interface {
	CanMutate(ctx context.Context, userID string, action domain.Action) (bool, error)
}

// ObjectStorage stores uploaded files; the workflow only sees the returned reference.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, mimeType string) (domain.StoredObject, error)
	// Delete removes key; a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// WorkflowRecorder receives operation outcomes for metrics.
type WorkflowRecorder interface {
	ObserveOperation(operation string, err error, duration time.Duration)
	ObserveExpired(count int)
	ObserveNotification(err error)
}
