package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

type UploadDocumentUseCase struct {
	workflow
}

func NewUploadDocumentUseCase(deps Deps) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{workflow: newWorkflow(deps)}
}

// Upload creates the DRAFT row for a document type or replaces the file of the existing one.
func (uc *UploadDocumentUseCase) Upload(ctx context.Context, cmd domain.UploadCommand) (doc *domain.Document, err error) {
	const op = "upload document"
	start := time.Now()
	defer func() { uc.observe("upload", start, err) }()

	if err := validateUpload(op, cmd); err != nil {
		return nil, err
	}
	if err := uc.authorize(ctx, op, cmd.UploaderID, domain.ActionUpload); err != nil {
		return nil, err
	}

	now := uc.now()
	if cmd.ExpirationDate != nil && !cmd.ExpirationDate.After(now) {
		return nil, domain.Validation(op, "expiration date %s is not in the future", cmd.ExpirationDate.Format(time.DateOnly))
	}

	var saved domain.Document
	var startupFolderID string
	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		sf, err := tx.Subfolders().LockByID(ctx, cmd.SubfolderID)
		if err != nil {
			return err
		}
		desc, err := uc.descriptor(op, sf.Category)
		if err != nil {
			return err
		}
		if !desc.Allows(cmd.Type) {
			return domain.Validation(op, "document type %q is not part of category %s", cmd.Type, sf.Category)
		}
		if err := sf.CheckEditable(); err != nil {
			return err
		}
		startupFolderID = sf.StartupFolderID

		docs, err := tx.Documents().LockBySubfolder(ctx, sf.ID)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(cmd.Name)
		for i := range docs {
			if docs[i].Type != cmd.Type {
				continue
			}
			existing := docs[i]
			expected := existing.Status
			if err := existing.Reupload(name, cmd.Object, cmd.ExpirationDate, cmd.UploaderID, now); err != nil {
				return err
			}
			if err := tx.Documents().Update(ctx, &existing, expected); err != nil {
				return err
			}
			saved = existing
			return nil
		}

		created := domain.Document{
			ID:          uuid.NewString(),
			SubfolderID: sf.ID,
			Category:    sf.Category,
			Type:        cmd.Type,
			Status:      domain.StatusNotUploaded,
		}
		if err := created.Reupload(name, cmd.Object, cmd.ExpirationDate, cmd.UploaderID, now); err != nil {
			return err
		}
		if err := tx.Documents().Create(ctx, &created); err != nil {
			return err
		}
		saved = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("document_uploaded",
		"document_id", saved.ID,
		"subfolder_id", saved.SubfolderID,
		"type", string(saved.Type),
	)
	uc.emit(ctx, domain.ChangeEvent{
		Kind:            domain.ChangeDocumentUploaded,
		StartupFolderID: startupFolderID,
		SubfolderID:     saved.SubfolderID,
		DocumentIDs:     []string{saved.ID},
		ActorID:         cmd.UploaderID,
		At:              now,
	})
	return &saved, nil
}

func validateUpload(op string, cmd domain.UploadCommand) error {
	if err := requireID(op, "subfolder id", cmd.SubfolderID); err != nil {
		return err
	}
	if strings.TrimSpace(string(cmd.Type)) == "" {
		return domain.Validation(op, "document type is required")
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return domain.Validation(op, "document name is required")
	}
	if strings.TrimSpace(cmd.Object.URL) == "" {
		return domain.Validation(op, "stored object url is required")
	}
	if cmd.Object.SizeBytes < 0 {
		return domain.Validation(op, "stored object size must not be negative")
	}
	return nil
}
