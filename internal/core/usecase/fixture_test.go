package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/registry"
	"github.com/kirillkom/contractor-compliance/internal/infrastructure/repository/memory"
)

const (
	typeA domain.DocumentType = "TYPE_A"
	typeB domain.DocumentType = "TYPE_B"
	typeC domain.DocumentType = "TYPE_C"

	submitterID = "u-submitter"
	reviewerID  = "u-reviewer"
	adminID     = "u-admin"

	twoHours = 2 * time.Hour
)

type authorizerFake struct {
	denied map[domain.Action]bool
	err    error
	calls  []domain.Action
}

func (f *authorizerFake) CanMutate(_ context.Context, _ string, action domain.Action) (bool, error) {
	f.calls = append(f.calls, action)
	if f.err != nil {
		return false, f.err
	}
	return !f.denied[action], nil
}

type notifierFake struct {
	mu          sync.Mutex
	requests    []domain.ReviewRequest
	err         error
	hadDeadline bool
}

func (f *notifierFake) NotifyReviewRequested(ctx context.Context, req domain.ReviewRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, f.hadDeadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

type changesFake struct {
	events []domain.ChangeEvent
	err    error
}

func (f *changesFake) EntityChanged(_ context.Context, event domain.ChangeEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func (f *changesFake) kinds() []domain.ChangeKind {
	out := make([]domain.ChangeKind, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

type recorderFake struct {
	operations    map[string][]error
	expired       int
	notifications []error
}

func (f *recorderFake) ObserveOperation(operation string, err error, _ time.Duration) {
	if f.operations == nil {
		f.operations = make(map[string][]error)
	}
	f.operations[operation] = append(f.operations[operation], err)
}

func (f *recorderFake) ObserveExpired(count int) { f.expired += count }

func (f *recorderFake) ObserveNotification(err error) {
	f.notifications = append(f.notifications, err)
}

type fixture struct {
	t        *testing.T
	store    *memory.Store
	registry *registry.Registry
	authz    *authorizerFake
	notifier *notifierFake
	changes  *changesFake
	recorder *recorderFake
	now      time.Time

	upload   *UploadDocumentUseCase
	submit   *SubmitSubfolderUseCase
	review   *ReviewDocumentsUseCase
	sweep    *ExpirationSweepUseCase
	folders  *FolderProvisioningUseCase
	override *OverrideStatusUseCase
	progress *ProgressUseCase
}

// newFixture wires every use case over one in-memory store. SAFETY_AND_HEALTH
// requires TYPE_A, TYPE_B and TYPE_C and notifies hse@site.example.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg, err := registry.New(
		registry.Descriptor{
			Category:   domain.CategorySafetyAndHealth,
			Label:      "Safety and Health",
			Required:   []domain.DocumentType{typeA, typeB, typeC},
			Optional:   []domain.DocumentType{"TYPE_OPTIONAL"},
			Recipients: []string{"hse@site.example"},
		},
		registry.Descriptor{
			Category:       domain.CategoryPersonnel,
			Label:          "Personnel",
			Entity:         domain.EntityWorker,
			Required:       []domain.DocumentType{registry.TypeIDCard},
			DriverRequired: []domain.DocumentType{registry.TypeDriverLicense},
			Recipients:     []string{"people@site.example"},
		},
		registry.Descriptor{
			Category: domain.CategoryBasic,
			Label:    "Basic",
			Entity:   domain.EntityWorker,
			Required: []domain.DocumentType{registry.TypeIDCard},
		},
	)
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}

	f := &fixture{
		t: t,
		store: memory.NewStore(
			domain.User{ID: submitterID, Email: "Submitter@Contractor.example", Name: "Sam Submitter"},
			domain.User{ID: reviewerID, Email: "reviewer@site.example", Name: "Riley Reviewer"},
			domain.User{ID: adminID, Email: "admin@site.example", Name: "Alex Admin"},
		),
		registry: reg,
		authz:    &authorizerFake{},
		notifier: &notifierFake{},
		changes:  &changesFake{},
		recorder: &recorderFake{},
		now:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	deps := Deps{
		Store:      f.store,
		Registry:   reg,
		Authorizer: f.authz,
		Changes:    f.changes,
		Recorder:   f.recorder,
		Now:        func() time.Time { return f.now },
	}
	f.upload = NewUploadDocumentUseCase(deps)
	f.submit = NewSubmitSubfolderUseCase(deps, f.notifier, time.Second)
	f.review = NewReviewDocumentsUseCase(deps)
	f.sweep = NewExpirationSweepUseCase(deps)
	f.folders = NewFolderProvisioningUseCase(deps)
	f.override = NewOverrideStatusUseCase(deps)
	f.progress = NewProgressUseCase(f.store, reg)
	return f
}

func (f *fixture) tick(d time.Duration) { f.now = f.now.Add(d) }

// fullFolder creates a FULL folder and returns its SAFETY_AND_HEALTH subfolder.
func (f *fixture) fullFolder() (*domain.StartupFolder, domain.Subfolder) {
	f.t.Helper()
	folder, subfolders, err := f.folders.CreateStartupFolder(context.Background(), domain.CreateFolderCommand{
		CompanyID:   "c-1",
		CompanyName: "Acme Contractors",
		Name:        "Turnaround 2026",
		Type:        domain.FolderFull,
		RequesterID: adminID,
	})
	if err != nil {
		f.t.Fatalf("CreateStartupFolder() error = %v", err)
	}
	for _, sf := range subfolders {
		if sf.Category == domain.CategorySafetyAndHealth {
			return folder, sf
		}
	}
	f.t.Fatalf("no SAFETY_AND_HEALTH subfolder provisioned")
	return nil, domain.Subfolder{}
}

func (f *fixture) uploadType(subfolderID string, docType domain.DocumentType) *domain.Document {
	f.t.Helper()
	doc, err := f.upload.Upload(context.Background(), domain.UploadCommand{
		SubfolderID: subfolderID,
		Type:        docType,
		Name:        string(docType) + ".pdf",
		Object:      domain.StoredObject{URL: "file:///tmp/" + string(docType), SizeBytes: 42, MimeType: "application/pdf"},
		UploaderID:  submitterID,
	})
	if err != nil {
		f.t.Fatalf("Upload(%s) error = %v", docType, err)
	}
	return doc
}

func (f *fixture) document(id string) domain.Document {
	f.t.Helper()
	doc, err := f.store.Documents().GetByID(context.Background(), id)
	if err != nil {
		f.t.Fatalf("GetByID(%s) error = %v", id, err)
	}
	return *doc
}

func (f *fixture) subfolder(id string) domain.Subfolder {
	f.t.Helper()
	sf, err := f.store.Subfolders().GetByID(context.Background(), id)
	if err != nil {
		f.t.Fatalf("subfolder GetByID(%s) error = %v", id, err)
	}
	return *sf
}

func (f *fixture) submitSubfolder(id string, extra ...string) *domain.SubmissionResult {
	f.t.Helper()
	res, err := f.submit.Submit(context.Background(), domain.SubmitCommand{SubfolderID: id, RequesterID: submitterID, ExtraEmails: extra})
	if err != nil {
		f.t.Fatalf("Submit() error = %v", err)
	}
	return res
}

func requireKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
