package ports

import (
	"context"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

// DocumentUploader is the inbound contract for creating or replacing a document.
type DocumentUploader interface {
	Upload(ctx context.Context, cmd domain.UploadCommand) (*domain.Document, error)
}

// SubmissionCoordinator moves an open subfolder and its documents into review.
type SubmissionCoordinator interface {
	Submit(ctx context.Context, cmd domain.SubmitCommand) (*domain.SubmissionResult, error)
}

// ReviewEngine disposes submitted documents. Batch calls are all-or-nothing.
type ReviewEngine interface {
	Approve(ctx context.Context, documentID, reviewerID string) (*domain.Document, error)
	Reject(ctx context.Context, documentID, reviewerID, notes string) (*domain.Document, error)
	ApproveBatch(ctx context.Context, documentIDs []string, reviewerID string) ([]domain.Document, error)
	MarkToUpdate(ctx context.Context, documentIDs []string, reviewerID string) ([]domain.Document, error)
	UndoReview(ctx context.Context, documentIDs []string, reviewerID string) ([]domain.Document, error)
}

// ExpirationSweeper flips approved documents past their expiration date to EXPIRED.
type ExpirationSweeper interface {
	Sweep(ctx context.Context, now time.Time) ([]string, error)
	TriggerSweep(ctx context.Context, actorID string, now time.Time) ([]string, error)
}

// FolderProvisioner creates startup folders and links workers/vehicles to them.
type FolderProvisioner interface {
	CreateStartupFolder(ctx context.Context, cmd domain.CreateFolderCommand) (*domain.StartupFolder, []domain.Subfolder, error)
	DeleteStartupFolder(ctx context.Context, folderID, requesterID string) error
	LinkEntity(ctx context.Context, cmd domain.LinkCommand) (*domain.Subfolder, error)
}

// StatusOverrider applies audited administrative subfolder status changes.
type StatusOverrider interface {
	OverrideStatus(ctx context.Context, cmd domain.OverrideCommand) (*domain.Subfolder, error)
}

// ProgressReader is the read model for derived completion.
type ProgressReader interface {
	SubfolderProgress(ctx context.Context, subfolderID string) (*domain.SubfolderProgress, error)
	FolderProgress(ctx context.Context, startupFolderID string) (*domain.FolderProgress, error)
}
