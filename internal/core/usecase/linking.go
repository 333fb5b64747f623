package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
)

type FolderProvisioningUseCase struct {
	workflow
}

func NewFolderProvisioningUseCase(deps Deps) *FolderProvisioningUseCase {
	return &FolderProvisioningUseCase{workflow: newWorkflow(deps)}
}

// CreateStartupFolder creates the folder and, for FULL folders, one DRAFT
// subfolder per folder-scoped category, all in one transaction.
func (uc *FolderProvisioningUseCase) CreateStartupFolder(
	ctx context.Context,
	cmd domain.CreateFolderCommand,
) (folder *domain.StartupFolder, subfolders []domain.Subfolder, err error) {
	const op = "create startup folder"
	start := time.Now()
	defer func() { uc.observe("create_folder", start, err) }()

	if err := requireID(op, "company id", cmd.CompanyID); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, nil, domain.Validation(op, "folder name is required")
	}
	if !cmd.Type.Valid() {
		return nil, nil, domain.Validation(op, "unknown folder type %q", cmd.Type)
	}
	if err := requireSingleLine(op, "folder name", strings.TrimSpace(cmd.Name)); err != nil {
		return nil, nil, err
	}
	if err := requireSingleLine(op, "company name", strings.TrimSpace(cmd.CompanyName)); err != nil {
		return nil, nil, err
	}
	if err := uc.authorize(ctx, op, cmd.RequesterID, domain.ActionCreateFolder); err != nil {
		return nil, nil, err
	}

	now := uc.now()
	created := domain.StartupFolder{
		ID:          uuid.NewString(),
		CompanyID:   strings.TrimSpace(cmd.CompanyID),
		CompanyName: strings.TrimSpace(cmd.CompanyName),
		Name:        strings.TrimSpace(cmd.Name),
		Type:        cmd.Type,
		CreatedAt:   now,
	}
	provisioned := make([]domain.Subfolder, 0)
	if cmd.Type == domain.FolderFull {
		for _, category := range uc.registry.FolderScoped() {
			provisioned = append(provisioned, newSubfolder(created.ID, category, "", "", false, now))
		}
	}

	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		if err := tx.StartupFolders().Create(ctx, &created); err != nil {
			return err
		}
		for i := range provisioned {
			if err := tx.Subfolders().Create(ctx, &provisioned[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("startup_folder_created", "startup_folder_id", created.ID, "type", string(created.Type), "subfolders", len(provisioned))
	uc.emit(ctx, domain.ChangeEvent{
		Kind:            domain.ChangeFolderCreated,
		StartupFolderID: created.ID,
		ActorID:         cmd.RequesterID,
		At:              now,
	})
	return &created, provisioned, nil
}

// DeleteStartupFolder removes the folder together with its subfolders and documents.
func (uc *FolderProvisioningUseCase) DeleteStartupFolder(ctx context.Context, folderID, requesterID string) (err error) {
	const op = "delete startup folder"
	start := time.Now()
	defer func() { uc.observe("delete_folder", start, err) }()

	if err := requireID(op, "startup folder id", folderID); err != nil {
		return err
	}
	if err := uc.authorize(ctx, op, requesterID, domain.ActionDeleteFolder); err != nil {
		return err
	}
	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		return tx.StartupFolders().Delete(ctx, folderID)
	})
	if err != nil {
		return err
	}
	uc.logger.Info("startup_folder_deleted", "startup_folder_id", folderID)
	uc.emit(ctx, domain.ChangeEvent{
		Kind:            domain.ChangeFolderDeleted,
		StartupFolderID: folderID,
		ActorID:         requesterID,
	})
	return nil
}

// LinkEntity creates the subfolder holding a worker's or vehicle's documents.
// Linking the same entity twice into one folder fails with ErrAlreadyLinked.
func (uc *FolderProvisioningUseCase) LinkEntity(ctx context.Context, cmd domain.LinkCommand) (linked *domain.Subfolder, err error) {
	const op = "link entity"
	start := time.Now()
	defer func() { uc.observe("link_entity", start, err) }()

	cmd.EntityID = strings.TrimSpace(cmd.EntityID)
	cmd.EntityLabel = strings.TrimSpace(cmd.EntityLabel)
	if err := requireID(op, "startup folder id", cmd.StartupFolderID); err != nil {
		return nil, err
	}
	if err := requireID(op, "entity id", cmd.EntityID); err != nil {
		return nil, err
	}
	if err := requireSingleLine(op, "entity label", cmd.EntityLabel); err != nil {
		return nil, err
	}
	desc, err := uc.descriptor(op, cmd.Category)
	if err != nil {
		return nil, err
	}
	if !desc.EntityScoped() {
		return nil, domain.Validation(op, "category %s is not linked per entity", cmd.Category)
	}
	if cmd.IsDriver && cmd.Category != domain.CategoryPersonnel {
		return nil, domain.Validation(op, "is_driver applies to %s only", domain.CategoryPersonnel)
	}
	if err := uc.authorize(ctx, op, cmd.RequesterID, domain.ActionLinkEntity); err != nil {
		return nil, err
	}

	now := uc.now()
	sf := newSubfolder(cmd.StartupFolderID, cmd.Category, cmd.EntityID, cmd.EntityLabel, cmd.IsDriver, now)
	err = uc.inTx(ctx, op, func(ctx context.Context, tx ports.Repositories) error {
		folder, err := tx.StartupFolders().GetByID(ctx, cmd.StartupFolderID)
		if err != nil {
			return err
		}
		basicCategory := cmd.Category == domain.CategoryBasic
		if basicCategory != (folder.Type == domain.FolderBasic) {
			return domain.Validation(op, "category %s cannot be linked into a %s folder", cmd.Category, folder.Type)
		}
		existing, err := tx.Subfolders().FindByEntity(ctx, folder.ID, cmd.Category, cmd.EntityID)
		switch {
		case err == nil:
			return &domain.LinkConflictError{StartupFolderID: folder.ID, EntityID: existing.EntityID, Category: cmd.Category}
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}
		return tx.Subfolders().Create(ctx, &sf)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("entity_linked",
		"subfolder_id", sf.ID,
		"startup_folder_id", sf.StartupFolderID,
		"category", string(sf.Category),
		"entity_id", sf.EntityID,
	)
	uc.emit(ctx, domain.ChangeEvent{
		Kind:            domain.ChangeEntityLinked,
		StartupFolderID: sf.StartupFolderID,
		SubfolderID:     sf.ID,
		ActorID:         cmd.RequesterID,
		At:              now,
	})
	return &sf, nil
}

func newSubfolder(folderID string, category domain.Category, entityID, entityLabel string, isDriver bool, now time.Time) domain.Subfolder {
	return domain.Subfolder{
		ID:                           uuid.NewString(),
		StartupFolderID:              folderID,
		Category:                     category,
		EntityID:                     entityID,
		EntityLabel:                  entityLabel,
		IsDriver:                     isDriver,
		Status:                       domain.SubfolderDraft,
		AdditionalNotificationEmails: []string{},
		CreatedAt:                    now,
		UpdatedAt:                    now,
	}
}
