package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
	"github.com/kirillkom/contractor-compliance/internal/core/registry"
)

// ProgressUseCase recomputes completion on every read.
type ProgressUseCase struct {
	repos    ports.Repositories
	registry *registry.Registry
}

func NewProgressUseCase(repos ports.Repositories, reg *registry.Registry) *ProgressUseCase {
	return &ProgressUseCase{repos: repos, registry: reg}
}

func (uc *ProgressUseCase) SubfolderProgress(ctx context.Context, subfolderID string) (*domain.SubfolderProgress, error) {
	if err := requireID("subfolder progress", "subfolder id", subfolderID); err != nil {
		return nil, err
	}
	sf, err := uc.repos.Subfolders().GetByID(ctx, subfolderID)
	if err != nil {
		return nil, err
	}
	progress, err := uc.subfolder(ctx, *sf)
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// FolderProgress is complete when every subfolder is; an empty folder is not.
func (uc *ProgressUseCase) FolderProgress(ctx context.Context, startupFolderID string) (*domain.FolderProgress, error) {
	if err := requireID("folder progress", "startup folder id", startupFolderID); err != nil {
		return nil, err
	}
	folder, err := uc.repos.StartupFolders().GetByID(ctx, startupFolderID)
	if err != nil {
		return nil, err
	}
	subfolders, err := uc.repos.Subfolders().ListByStartupFolder(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	out := domain.FolderProgress{
		Folder:     *folder,
		Subfolders: make([]domain.SubfolderProgress, 0, len(subfolders)),
		Completed:  len(subfolders) > 0,
	}
	for _, sf := range subfolders {
		progress, err := uc.subfolder(ctx, sf)
		if err != nil {
			return nil, err
		}
		out.Completed = out.Completed && progress.Completed
		out.Subfolders = append(out.Subfolders, progress)
	}
	return &out, nil
}

func (uc *ProgressUseCase) subfolder(ctx context.Context, sf domain.Subfolder) (domain.SubfolderProgress, error) {
	desc, err := uc.registry.Lookup(sf.Category)
	if err != nil {
		return domain.SubfolderProgress{}, fmt.Errorf("subfolder %s: %w", sf.ID, err)
	}
	docs, err := uc.repos.Documents().ListBySubfolder(ctx, sf.ID)
	if err != nil {
		return domain.SubfolderProgress{}, err
	}
	return Completion(desc, sf, docs), nil
}
