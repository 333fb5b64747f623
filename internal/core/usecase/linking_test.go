package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

func TestCreateFullFolderProvisionsFolderScopedSubfolders(t *testing.T) {
	f := newFixture(t)
	folder, subfolders, err := f.folders.CreateStartupFolder(context.Background(), domain.CreateFolderCommand{
		CompanyID:   "c-1",
		Name:        "Shutdown",
		Type:        domain.FolderFull,
		RequesterID: adminID,
	})
	if err != nil {
		t.Fatalf("CreateStartupFolder() error = %v", err)
	}
	if len(subfolders) != 1 || subfolders[0].Category != domain.CategorySafetyAndHealth {
		t.Fatalf("unexpected provisioned subfolders: %+v", subfolders)
	}
	if subfolders[0].Status != domain.SubfolderDraft || subfolders[0].StartupFolderID != folder.ID {
		t.Fatalf("unexpected subfolder: %+v", subfolders[0])
	}
	stored, err := f.store.Subfolders().ListByStartupFolder(context.Background(), folder.ID)
	if err != nil {
		t.Fatalf("ListByStartupFolder() error = %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored subfolder, got %d", len(stored))
	}
}

func TestCreateBasicFolderStartsEmpty(t *testing.T) {
	f := newFixture(t)
	_, subfolders, err := f.folders.CreateStartupFolder(context.Background(), domain.CreateFolderCommand{
		CompanyID:   "c-1",
		Name:        "Small job",
		Type:        domain.FolderBasic,
		RequesterID: adminID,
	})
	if err != nil {
		t.Fatalf("CreateStartupFolder() error = %v", err)
	}
	if len(subfolders) != 0 {
		t.Fatalf("expected no subfolders, got %d", len(subfolders))
	}
}

func TestCreateFolderValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		cmd  domain.CreateFolderCommand
	}{
		{"unknown type", domain.CreateFolderCommand{CompanyID: "c-1", Name: "x", Type: "HUGE"}},
		{"missing name", domain.CreateFolderCommand{CompanyID: "c-1", Name: " ", Type: domain.FolderFull}},
		{"multi-line name", domain.CreateFolderCommand{CompanyID: "c-1", Name: "Main site\nBcc: attacker@evil.example", Type: domain.FolderFull}},
		{"multi-line company", domain.CreateFolderCommand{CompanyID: "c-1", CompanyName: "Acme\r\nX-Spam: yes", Name: "x", Type: domain.FolderFull}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cmd.RequesterID = adminID
			_, _, err := f.folders.CreateStartupFolder(context.Background(), tc.cmd)
			requireKind(t, err, domain.ErrValidation)
		})
	}

	folder, _, err := f.folders.CreateStartupFolder(context.Background(), domain.CreateFolderCommand{
		CompanyID: "c-1", Name: "  Main site\n", Type: domain.FolderBasic, RequesterID: adminID,
	})
	if err != nil {
		t.Fatalf("CreateStartupFolder(trailing newline) error = %v", err)
	}
	if folder.Name != "Main site" {
		t.Fatalf("folder name = %q", folder.Name)
	}
}

func TestLinkEntityTwiceReturnsAlreadyLinked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder, _ := f.fullFolder()
	cmd := domain.LinkCommand{
		StartupFolderID: folder.ID,
		EntityID:        "worker-7",
		EntityLabel:     "Jordan Welder",
		Category:        domain.CategoryPersonnel,
		IsDriver:        true,
		RequesterID:     submitterID,
	}

	linked, err := f.folders.LinkEntity(ctx, cmd)
	if err != nil {
		t.Fatalf("LinkEntity() error = %v", err)
	}
	if linked.Status != domain.SubfolderDraft || !linked.IsDriver || linked.EntityLabel != "Jordan Welder" {
		t.Fatalf("unexpected linked subfolder: %+v", linked)
	}

	_, err = f.folders.LinkEntity(ctx, cmd)
	var conflict *domain.LinkConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected LinkConflictError, got %v", err)
	}
	if conflict.EntityID != "worker-7" || conflict.StartupFolderID != folder.ID {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}

	all, err := f.store.Subfolders().ListByStartupFolder(ctx, folder.ID)
	if err != nil {
		t.Fatalf("ListByStartupFolder() error = %v", err)
	}
	personnel := 0
	for _, sf := range all {
		if sf.Category == domain.CategoryPersonnel {
			personnel++
		}
	}
	if personnel != 1 {
		t.Fatalf("expected exactly one personnel subfolder, got %d", personnel)
	}
}

func TestDriverRequirementsApplyToLinkedWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder, _ := f.fullFolder()
	linked, err := f.folders.LinkEntity(ctx, domain.LinkCommand{
		StartupFolderID: folder.ID,
		EntityID:        "worker-1",
		Category:        domain.CategoryPersonnel,
		IsDriver:        true,
		RequesterID:     submitterID,
	})
	if err != nil {
		t.Fatalf("LinkEntity() error = %v", err)
	}

	progress, err := f.progress.SubfolderProgress(ctx, linked.ID)
	if err != nil {
		t.Fatalf("SubfolderProgress() error = %v", err)
	}
	if len(progress.Checklist) != 2 || len(progress.Missing) != 2 {
		t.Fatalf("expected id card and driver license on checklist, got %+v", progress.Checklist)
	}
}

func TestLinkEntityRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	full, _ := f.fullFolder()
	basic, _, err := f.folders.CreateStartupFolder(ctx, domain.CreateFolderCommand{
		CompanyID: "c-1", Name: "basic", Type: domain.FolderBasic, RequesterID: adminID,
	})
	if err != nil {
		t.Fatalf("CreateStartupFolder() error = %v", err)
	}

	cases := []struct {
		name string
		cmd  domain.LinkCommand
		kind error
	}{
		{"folder-scoped category", domain.LinkCommand{StartupFolderID: full.ID, EntityID: "w", Category: domain.CategorySafetyAndHealth}, domain.ErrValidation},
		{"unknown category", domain.LinkCommand{StartupFolderID: full.ID, EntityID: "w", Category: "PETS"}, domain.ErrValidation},
		{"driver outside personnel", domain.LinkCommand{StartupFolderID: basic.ID, EntityID: "w", Category: domain.CategoryBasic, IsDriver: true}, domain.ErrValidation},
		{"basic into full", domain.LinkCommand{StartupFolderID: full.ID, EntityID: "w", Category: domain.CategoryBasic}, domain.ErrValidation},
		{"personnel into basic", domain.LinkCommand{StartupFolderID: basic.ID, EntityID: "w", Category: domain.CategoryPersonnel}, domain.ErrValidation},
		{"missing entity", domain.LinkCommand{StartupFolderID: full.ID, EntityID: " ", Category: domain.CategoryPersonnel}, domain.ErrValidation},
		{"multi-line label", domain.LinkCommand{StartupFolderID: full.ID, EntityID: "w", EntityLabel: "Jo\nBcc: x@evil.example", Category: domain.CategoryPersonnel}, domain.ErrValidation},
		{"unknown folder", domain.LinkCommand{StartupFolderID: "missing", EntityID: "w", Category: domain.CategoryPersonnel}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cmd.RequesterID = submitterID
			_, err := f.folders.LinkEntity(ctx, tc.cmd)
			requireKind(t, err, tc.kind)
		})
	}

	if _, err := f.folders.LinkEntity(ctx, domain.LinkCommand{
		StartupFolderID: basic.ID, EntityID: "w", Category: domain.CategoryBasic, RequesterID: submitterID,
	}); err != nil {
		t.Fatalf("LinkEntity(basic) error = %v", err)
	}
}

func TestDeleteStartupFolderCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folder, sf := f.fullFolder()
	doc := f.uploadType(sf.ID, typeA)

	if err := f.folders.DeleteStartupFolder(ctx, folder.ID, adminID); err != nil {
		t.Fatalf("DeleteStartupFolder() error = %v", err)
	}
	if _, err := f.store.Documents().GetByID(ctx, doc.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected document removed, got %v", err)
	}
	err := f.folders.DeleteStartupFolder(ctx, folder.ID, adminID)
	requireKind(t, err, domain.ErrNotFound)
}

func TestDeleteStartupFolderRequiresPermission(t *testing.T) {
	f := newFixture(t)
	folder, _ := f.fullFolder()
	f.authz.denied = map[domain.Action]bool{domain.ActionDeleteFolder: true}

	err := f.folders.DeleteStartupFolder(context.Background(), folder.ID, submitterID)
	requireKind(t, err, domain.ErrPermissionDenied)
}
