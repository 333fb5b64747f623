package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

func approvedWithExpiry(t *testing.T, f *fixture, expires time.Time) (domain.Subfolder, *domain.Document) {
	t.Helper()
	ctx := context.Background()
	_, sf := f.fullFolder()
	doc, err := f.upload.Upload(ctx, domain.UploadCommand{
		SubfolderID:    sf.ID,
		Type:           typeA,
		Name:           "permit.pdf",
		Object:         domain.StoredObject{URL: "file:///tmp/permit.pdf"},
		ExpirationDate: &expires,
		UploaderID:     submitterID,
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	f.submitSubfolder(sf.ID)
	if _, err := f.review.Approve(ctx, doc.ID, reviewerID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	return sf, doc
}

func TestSweepExpiresOnceAndIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expires := f.now.AddDate(0, 0, 30)
	sf, doc := approvedWithExpiry(t, f, expires)
	notificationsBefore := len(f.notifier.requests)

	ids, err := f.sweep.Sweep(ctx, expires.Add(time.Hour))
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != doc.ID {
		t.Fatalf("expired ids = %v, want [%s]", ids, doc.ID)
	}
	if got := f.document(doc.ID).Status; got != domain.StatusExpired {
		t.Fatalf("status = %s, want EXPIRED", got)
	}
	if f.recorder.expired != 1 {
		t.Fatalf("expired metric = %d", f.recorder.expired)
	}
	last := f.changes.events[len(f.changes.events)-1]
	if last.Kind != domain.ChangeDocumentsExpired || last.SubfolderID != sf.ID {
		t.Fatalf("unexpected change event: %+v", last)
	}
	if len(f.notifier.requests) != notificationsBefore {
		t.Fatalf("sweep must not send review requests")
	}

	for _, later := range []time.Duration{time.Hour, 48 * time.Hour} {
		again, err := f.sweep.Sweep(ctx, expires.Add(later))
		if err != nil {
			t.Fatalf("Sweep() error = %v", err)
		}
		if len(again) != 0 {
			t.Fatalf("second sweep expired %v", again)
		}
	}
}

func TestSweepBeforeExpirationIsNoop(t *testing.T) {
	f := newFixture(t)
	expires := f.now.AddDate(0, 0, 30)
	_, doc := approvedWithExpiry(t, f, expires)

	ids, err := f.sweep.Sweep(context.Background(), expires.Add(-time.Minute))
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected nothing expired, got %v", ids)
	}
	if got := f.document(doc.ID).Status; got != domain.StatusApproved {
		t.Fatalf("status = %s", got)
	}
}

func TestExpiredDocumentCanBeReuploaded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	expires := f.now.AddDate(0, 0, 30)
	sf, doc := approvedWithExpiry(t, f, expires)
	if _, err := f.sweep.Sweep(ctx, expires.Add(time.Hour)); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	_, err := f.override.OverrideStatus(ctx, domain.OverrideCommand{
		SubfolderID: sf.ID, Target: domain.SubfolderExpired, Reason: "permit lapsed", ActorID: adminID,
	})
	if err != nil {
		t.Fatalf("OverrideStatus() error = %v", err)
	}

	f.now = expires.Add(2 * time.Hour)
	renewed := f.uploadType(sf.ID, typeA)
	if renewed.ID != doc.ID || renewed.Status != domain.StatusDraft {
		t.Fatalf("unexpected renewed document: %+v", renewed)
	}
}

func TestTriggerSweepRequiresPermission(t *testing.T) {
	f := newFixture(t)
	f.authz.denied = map[domain.Action]bool{domain.ActionSweep: true}

	_, err := f.sweep.TriggerSweep(context.Background(), submitterID, f.now)
	requireKind(t, err, domain.ErrPermissionDenied)

	f.authz.denied = nil
	ids, err := f.sweep.TriggerSweep(context.Background(), adminID, f.now)
	if err != nil {
		t.Fatalf("TriggerSweep() error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("unexpected expired ids %v", ids)
	}
}
