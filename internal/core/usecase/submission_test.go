package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

func TestSubmitMovesDocumentsAndNotifiesRecipients(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	a := f.uploadType(sf.ID, typeA)
	b := f.uploadType(sf.ID, typeB)
	f.tick(twoHours)

	res := f.submitSubfolder(sf.ID)

	for _, id := range []string{a.ID, b.ID} {
		doc := f.document(id)
		if doc.Status != domain.StatusSubmitted {
			t.Fatalf("document %s status = %s, want SUBMITTED", id, doc.Status)
		}
		if doc.SubmittedAt == nil || !doc.SubmittedAt.Equal(f.now) {
			t.Fatalf("document %s submitted_at = %v, want %v", id, doc.SubmittedAt, f.now)
		}
	}
	stored := f.subfolder(sf.ID)
	if stored.Status != domain.SubfolderSubmitted {
		t.Fatalf("subfolder status = %s, want SUBMITTED", stored.Status)
	}
	if stored.SubmittedAt == nil || !stored.SubmittedAt.Equal(f.now) {
		t.Fatalf("subfolder submitted_at = %v", stored.SubmittedAt)
	}
	if !reflect.DeepEqual(stored.AdditionalNotificationEmails, []string{"submitter@contractor.example"}) {
		t.Fatalf("additional emails = %v", stored.AdditionalNotificationEmails)
	}

	if len(f.notifier.requests) != 1 {
		t.Fatalf("expected one review request, got %d", len(f.notifier.requests))
	}
	req := f.notifier.requests[0]
	wantRecipients := []string{"hse@site.example", "submitter@contractor.example"}
	if !reflect.DeepEqual(req.Recipients, wantRecipients) {
		t.Fatalf("recipients = %v, want %v", req.Recipients, wantRecipients)
	}
	if req.CompanyName != "Acme Contractors" || req.Requester.ID != submitterID {
		t.Fatalf("unexpected review request: %+v", req)
	}
	if !f.notifier.hadDeadline {
		t.Fatalf("expected notification context with deadline")
	}
	if !res.NotificationSent || !reflect.DeepEqual(res.Recipients, wantRecipients) || len(res.Documents) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(f.recorder.notifications) != 1 || f.recorder.notifications[0] != nil {
		t.Fatalf("expected one successful notification metric, got %v", f.recorder.notifications)
	}
	if got := f.changes.kinds(); got[len(got)-1] != domain.ChangeSubfolderSubmitted {
		t.Fatalf("last change event = %v", got)
	}
}

func TestSubmitMergesEmails(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	f.uploadType(sf.ID, typeA)

	f.submitSubfolder(sf.ID, "  Extra@Example.com ", "SUBMITTER@contractor.example", "extra@example.com")

	got := f.subfolder(sf.ID).AdditionalNotificationEmails
	want := []string{"extra@example.com", "submitter@contractor.example"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("emails = %v, want %v", got, want)
	}
}

func TestSubmitRejectsInvalidEmailWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	a := f.uploadType(sf.ID, typeA)

	_, err := f.submit.Submit(context.Background(), domain.SubmitCommand{
		SubfolderID: sf.ID,
		RequesterID: submitterID,
		ExtraEmails: []string{"not-an-address"},
	})
	requireKind(t, err, domain.ErrValidation)

	if got := f.subfolder(sf.ID).Status; got != domain.SubfolderDraft {
		t.Fatalf("subfolder status = %s, want DRAFT", got)
	}
	if got := f.document(a.ID).Status; got != domain.StatusDraft {
		t.Fatalf("document status = %s, want DRAFT", got)
	}
	if len(f.notifier.requests) != 0 {
		t.Fatalf("expected no notification")
	}
}

func TestSubmitTwiceFailsWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	f.uploadType(sf.ID, typeA)
	f.submitSubfolder(sf.ID)
	first := f.subfolder(sf.ID)
	f.tick(twoHours)

	_, err := f.submit.Submit(context.Background(), domain.SubmitCommand{SubfolderID: sf.ID, RequesterID: submitterID})
	var te *domain.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.Current != string(domain.SubfolderSubmitted) {
		t.Fatalf("current = %s", te.Current)
	}
	again := f.subfolder(sf.ID)
	if !again.SubmittedAt.Equal(*first.SubmittedAt) {
		t.Fatalf("submitted_at changed from %v to %v", first.SubmittedAt, again.SubmittedAt)
	}
	if len(f.notifier.requests) != 1 {
		t.Fatalf("expected a single notification, got %d", len(f.notifier.requests))
	}
}

func TestSubmitNotificationFailureKeepsSubmission(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp relay down")
	_, sf := f.fullFolder()
	a := f.uploadType(sf.ID, typeA)

	res, err := f.submit.Submit(context.Background(), domain.SubmitCommand{SubfolderID: sf.ID, RequesterID: submitterID})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.NotificationSent {
		t.Fatalf("expected NotificationSent=false")
	}
	if got := f.subfolder(sf.ID).Status; got != domain.SubfolderSubmitted {
		t.Fatalf("subfolder status = %s", got)
	}
	if got := f.document(a.ID).Status; got != domain.StatusSubmitted {
		t.Fatalf("document status = %s", got)
	}
	if len(f.recorder.notifications) != 1 || f.recorder.notifications[0] == nil {
		t.Fatalf("expected failed notification metric, got %v", f.recorder.notifications)
	}
}

func TestSubmitBlockedByDocumentNeedingUpdate(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	a := f.uploadType(sf.ID, typeA)
	b := f.uploadType(sf.ID, typeB)
	f.submitSubfolder(sf.ID)
	ctx := context.Background()
	if _, err := f.review.Approve(ctx, a.ID, reviewerID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := f.review.MarkToUpdate(ctx, []string{a.ID}, reviewerID); err != nil {
		t.Fatalf("MarkToUpdate() error = %v", err)
	}
	reopen(t, f, sf.ID)

	_, err := f.submit.Submit(ctx, domain.SubmitCommand{SubfolderID: sf.ID, RequesterID: submitterID})
	var te *domain.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.ID != a.ID || te.Current != string(domain.StatusToUpdate) {
		t.Fatalf("unexpected transition error: %+v", te)
	}
	if got := f.subfolder(sf.ID).Status; got != domain.SubfolderRejected {
		t.Fatalf("subfolder status = %s, want REJECTED after rollback", got)
	}
	if got := f.document(b.ID).Status; got != domain.StatusSubmitted {
		t.Fatalf("document b status = %s, want SUBMITTED untouched", got)
	}
}

func TestSubmitRequiresPermission(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()
	f.authz.denied = map[domain.Action]bool{domain.ActionSubmit: true}

	_, err := f.submit.Submit(context.Background(), domain.SubmitCommand{SubfolderID: sf.ID, RequesterID: submitterID})
	requireKind(t, err, domain.ErrPermissionDenied)
	if got := f.recorder.operations["submit"]; len(got) != 1 || got[0] == nil {
		t.Fatalf("expected failed submit metric, got %v", got)
	}
}

func TestSubmitUnknownRequester(t *testing.T) {
	f := newFixture(t)
	_, sf := f.fullFolder()

	_, err := f.submit.Submit(context.Background(), domain.SubmitCommand{SubfolderID: sf.ID, RequesterID: "ghost"})
	requireKind(t, err, domain.ErrNotFound)
}

// Reviewer approves A and rejects B; the subfolder is reopened, B re-uploaded
// and resubmitted while A stays APPROVED.
func TestResubmissionNeverRegressesApprovedDocuments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, sf := f.fullFolder()
	a := f.uploadType(sf.ID, typeA)
	b := f.uploadType(sf.ID, typeB)
	f.submitSubfolder(sf.ID)

	if _, err := f.review.Approve(ctx, a.ID, reviewerID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := f.review.Reject(ctx, b.ID, reviewerID, "ilegible"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	reopen(t, f, sf.ID)

	f.tick(twoHours)
	reuploaded := f.uploadType(sf.ID, typeB)
	if reuploaded.ID != b.ID {
		t.Fatalf("re-upload created a new row %s, want %s", reuploaded.ID, b.ID)
	}
	if reuploaded.Status != domain.StatusDraft || reuploaded.SubmittedAt != nil {
		t.Fatalf("re-uploaded document = %+v", reuploaded)
	}

	f.tick(twoHours)
	f.submitSubfolder(sf.ID)

	if got := f.document(a.ID); got.Status != domain.StatusApproved {
		t.Fatalf("document a status = %s, want APPROVED", got.Status)
	} else if got.ReviewedByID == nil || *got.ReviewedByID != reviewerID {
		t.Fatalf("document a lost its reviewer")
	}
	if got := f.document(b.ID).Status; got != domain.StatusSubmitted {
		t.Fatalf("document b status = %s, want SUBMITTED", got)
	}
	if len(f.notifier.requests) != 2 {
		t.Fatalf("expected two review requests, got %d", len(f.notifier.requests))
	}
}

func reopen(t *testing.T, f *fixture, subfolderID string) {
	t.Helper()
	_, err := f.override.OverrideStatus(context.Background(), domain.OverrideCommand{
		SubfolderID: subfolderID,
		Target:      domain.SubfolderRejected,
		Reason:      "documents need another pass",
		ActorID:     adminID,
	})
	if err != nil {
		t.Fatalf("OverrideStatus() error = %v", err)
	}
}
