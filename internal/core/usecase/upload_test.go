package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

func TestUploadCreatesDraftRow(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	expires := f.now.AddDate(1, 0, 0)

	doc, err := f.upload.Upload(context.Background(), domain.UploadCommand{
		SubfolderID:    sf.ID,
		Type:           typeA,
		Name:           " risk-matrix.pdf ",
		Object:         domain.StoredObject{URL: "s3://bucket/a.pdf", SizeBytes: 1024, MimeType: "application/pdf"},
		ExpirationDate: &expires,
		UploaderID:     submitterID,
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ID == "" || doc.Status != domain.StatusDraft {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Name != "risk-matrix.pdf" || doc.StorageURL != "s3://bucket/a.pdf" || doc.SizeBytes != 1024 {
		t.Fatalf("unexpected file fields: %+v", doc)
	}
	if doc.Category != domain.CategorySafetyAndHealth || doc.SubfolderID != sf.ID {
		t.Fatalf("unexpected ownership: %+v", doc)
	}
	if !doc.UploadedAt.Equal(f.now) || doc.UploadedByID != submitterID {
		t.Fatalf("unexpected upload stamp: %+v", doc)
	}
	last := f.changes.events[len(f.changes.events)-1]
	if last.Kind != domain.ChangeDocumentUploaded || last.SubfolderID != sf.ID {
		t.Fatalf("unexpected change event: %+v", last)
	}
}

func TestUploadReplacesDraftInPlace(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	first := f.uploadType(sf.ID, typeA)
	f.tick(time.Minute)

	second, err := f.upload.Upload(context.Background(), domain.UploadCommand{
		SubfolderID: sf.ID,
		Type:        typeA,
		Name:        "v2.pdf",
		Object:      domain.StoredObject{URL: "file:///tmp/v2.pdf", SizeBytes: 7},
		UploaderID:  submitterID,
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same row, got %s and %s", first.ID, second.ID)
	}
	if got := f.document(first.ID); got.Name != "v2.pdf" || !got.UploadedAt.Equal(f.now) {
		t.Fatalf("row not replaced: %+v", got)
	}
}

func TestUploadRejectsTypeOutsideCategory(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()

	_, err := f.upload.Upload(context.Background(), domain.UploadCommand{
		SubfolderID: sf.ID,
		Type:        "PASSPORT",
		Name:        "p.pdf",
		Object:      domain.StoredObject{URL: "file:///tmp/p.pdf"},
		UploaderID:  submitterID,
	})
	requireKind(t, err, domain.ErrValidation)
}

func TestUploadAcceptsOptionalType(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	doc := f.uploadType(sf.ID, "TYPE_OPTIONAL")
	if doc.Status != domain.StatusDraft {
		t.Fatalf("status = %s", doc.Status)
	}
}

func TestUploadRefusedWhileSubfolderUnderReview(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	f.uploadType(sf.ID, typeA)
	f.submitSubfolder(sf.ID)

	_, err := f.upload.Upload(context.Background(), domain.UploadCommand{
		SubfolderID: sf.ID,
		Type:        typeC,
		Name:        "c.pdf",
		Object:      domain.StoredObject{URL: "file:///tmp/c.pdf"},
		UploaderID:  submitterID,
	})
	var te *domain.TransitionError
	if !errors.As(err, &te) || te.Entity != "subfolder" {
		t.Fatalf("expected subfolder TransitionError, got %v", err)
	}
}

func TestUploadRefusesPastExpiration(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	past := f.now.AddDate(0, 0, -1)

	_, err := f.upload.Upload(context.Background(), domain.UploadCommand{
		SubfolderID:    sf.ID,
		Type:           typeA,
		Name:           "a.pdf",
		Object:         domain.StoredObject{URL: "file:///tmp/a.pdf"},
		ExpirationDate: &past,
		UploaderID:     submitterID,
	})
	requireKind(t, err, domain.ErrValidation)
}

func TestUploadValidation(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	valid := domain.UploadCommand{
		SubfolderID: sf.ID,
		Type:        typeA,
		Name:        "a.pdf",
		Object:      domain.StoredObject{URL: "file:///tmp/a.pdf"},
		UploaderID:  submitterID,
	}
	cases := map[string]func(*domain.UploadCommand){
		"missing subfolder": func(c *domain.UploadCommand) { c.SubfolderID = "" },
		"missing type":      func(c *domain.UploadCommand) { c.Type = "" },
		"missing name":      func(c *domain.UploadCommand) { c.Name = " " },
		"missing url":       func(c *domain.UploadCommand) { c.Object.URL = "" },
		"negative size":     func(c *domain.UploadCommand) { c.Object.SizeBytes = -1 },
		"missing uploader":  func(c *domain.UploadCommand) { c.UploaderID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cmd := valid
			mutate(&cmd)
			_, err := f.upload.Upload(context.Background(), cmd)
			requireKind(t, err, domain.ErrValidation)
		})
	}
}

func TestUploadUnknownSubfolder(t *testing.T) {
	f := newFixture(t)
	_, err := f.upload.Upload(context.Background(), domain.UploadCommand{
		SubfolderID: "missing",
		Type:        typeA,
		Name:        "a.pdf",
		Object:      domain.StoredObject{URL: "file:///tmp/a.pdf"},
		UploaderID:  submitterID,
	})
	requireKind(t, err, domain.ErrNotFound)
}
