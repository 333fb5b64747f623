package domain

import (
	"sort"
	"strings"
	"time"
)

type DocumentEvent string

const (
	EventUpload       DocumentEvent = "upload"
	EventSubmit       DocumentEvent = "submit"
	EventApprove      DocumentEvent = "approve"
	EventReject       DocumentEvent = "reject"
	EventMarkToUpdate DocumentEvent = "mark_to_update"
	EventUndoReview   DocumentEvent = "undo_review"
	EventExpire       DocumentEvent = "expire"
)

// documentTransitions is the complete reachable-state graph of a document.
var documentTransitions = map[DocumentEvent]map[DocumentStatus]DocumentStatus{
	EventUpload: {
		StatusNotUploaded: StatusDraft,
		StatusDraft:       StatusDraft,
		StatusRejected:    StatusDraft,
		StatusToUpdate:    StatusDraft,
		StatusExpired:     StatusDraft,
	},
	EventSubmit: {
		StatusDraft:     StatusSubmitted,
		StatusRejected:  StatusSubmitted,
		StatusSubmitted: StatusSubmitted,
		StatusApproved:  StatusApproved,
	},
	EventApprove: {
		StatusSubmitted: StatusApproved,
	},
	EventReject: {
		StatusSubmitted: StatusRejected,
	},
	EventMarkToUpdate: {
		StatusApproved: StatusToUpdate,
		StatusRejected: StatusToUpdate,
		StatusToUpdate: StatusToUpdate,
	},
	EventUndoReview: {
		StatusApproved: StatusSubmitted,
		StatusRejected: StatusSubmitted,
		StatusToUpdate: StatusSubmitted,
	},
	EventExpire: {
		StatusApproved: StatusExpired,
	},
}

// NextDocumentStatus resolves event against the guard table.
func NextDocumentStatus(documentID string, current DocumentStatus, event DocumentEvent) (DocumentStatus, error) {
	edges, ok := documentTransitions[event]
	if ok {
		if next, ok := edges[current]; ok {
			return next, nil
		}
	}
	return "", &TransitionError{
		Entity:  "document",
		ID:      documentID,
		Current: string(current),
		Event:   string(event),
		Allowed: stringsOf(AllowedDocumentSources(event)),
	}
}

func AllowedDocumentSources(event DocumentEvent) []DocumentStatus {
	edges := documentTransitions[event]
	out := make([]DocumentStatus, 0, len(edges))
	for from := range edges {
		out = append(out, from)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (d *Document) apply(event DocumentEvent, now time.Time) error {
	next, err := NextDocumentStatus(d.ID, d.Status, event)
	if err != nil {
		return err
	}
	d.Status = next
	d.UpdatedAt = now
	return nil
}

// Reupload replaces the file of an existing document and returns it to DRAFT.
func (d *Document) Reupload(name string, obj StoredObject, expiration *time.Time, uploaderID string, now time.Time) error {
	if err := d.apply(EventUpload, now); err != nil {
		return err
	}
	d.Name = name
	d.StorageURL = obj.URL
	d.SizeBytes = obj.SizeBytes
	d.MimeType = obj.MimeType
	d.ExpirationDate = expiration
	d.UploadedByID = uploaderID
	d.UploadedAt = now
	d.SubmittedAt = nil
	return nil
}

// Submit locks the document for review. Approved documents keep their status
// and only get the new submission stamp.
func (d *Document) Submit(now time.Time) error {
	if err := d.apply(EventSubmit, now); err != nil {
		return err
	}
	submitted := now
	d.SubmittedAt = &submitted
	return nil
}

func (d *Document) Approve(reviewerID string, now time.Time) error {
	if err := d.apply(EventApprove, now); err != nil {
		return err
	}
	d.stampReview(reviewerID, now)
	d.ReviewNotes = nil
	return nil
}

func (d *Document) Reject(reviewerID, notes string, now time.Time) error {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return Validation("reject document", "review notes are required for document %s", d.ID)
	}
	if err := d.apply(EventReject, now); err != nil {
		return err
	}
	d.stampReview(reviewerID, now)
	d.ReviewNotes = &notes
	return nil
}

func (d *Document) MarkToUpdate(now time.Time) error {
	return d.apply(EventMarkToUpdate, now)
}

func (d *Document) UndoReview(now time.Time) error {
	if err := d.apply(EventUndoReview, now); err != nil {
		return err
	}
	d.clearReview()
	return nil
}

func (d *Document) Expire(now time.Time) error {
	if !d.ExpiredAt(now) {
		return &TransitionError{
			Entity:  "document",
			ID:      d.ID,
			Current: string(d.Status),
			Event:   string(EventExpire),
			Allowed: []string{string(StatusApproved) + " past expiration date"},
		}
	}
	return d.apply(EventExpire, now)
}

func (d *Document) stampReview(reviewerID string, now time.Time) {
	reviewer := reviewerID
	reviewed := now
	d.ReviewedByID = &reviewer
	d.ReviewedAt = &reviewed
}

// CheckEditable guards uploads against subfolders that are under review or accepted.
func (s *Subfolder) CheckEditable() error {
	if s.Status.Editable() {
		return nil
	}
	return &TransitionError{
		Entity:  "subfolder",
		ID:      s.ID,
		Current: string(s.Status),
		Event:   string(EventUpload),
		Allowed: stringsOf([]SubfolderStatus{SubfolderDraft, SubfolderRejected, SubfolderExpired}),
	}
}

func (s *Subfolder) CheckSubmittable() error {
	if s.Status.Submittable() {
		return nil
	}
	return &TransitionError{
		Entity:  "subfolder",
		ID:      s.ID,
		Current: string(s.Status),
		Event:   string(EventSubmit),
		Allowed: stringsOf([]SubfolderStatus{SubfolderDraft, SubfolderRejected}),
	}
}

// CheckUndoable refuses to put reviewed documents back under review in a DRAFT subfolder.
func (s *Subfolder) CheckUndoable() error {
	if s.Status != SubfolderDraft {
		return nil
	}
	return &TransitionError{
		Entity:  "subfolder",
		ID:      s.ID,
		Current: string(s.Status),
		Event:   string(EventUndoReview),
		Allowed: stringsOf([]SubfolderStatus{
			SubfolderSubmitted, SubfolderApproved, SubfolderRejected, SubfolderExpired, SubfolderCompleted,
		}),
	}
}

// MarkSubmitted moves the subfolder to SUBMITTED and replaces its notification list.
func (s *Subfolder) MarkSubmitted(emails []string, now time.Time) error {
	if err := s.CheckSubmittable(); err != nil {
		return err
	}
	submitted := now
	s.Status = SubfolderSubmitted
	s.SubmittedAt = &submitted
	s.AdditionalNotificationEmails = emails
	s.UpdatedAt = now
	return nil
}

// OverrideState carries the derived facts an administrative override is checked against.
type OverrideState struct {
	Completed bool
	// LockedDocuments counts documents in SUBMITTED or APPROVED.
	LockedDocuments int
}

func (s *Subfolder) Override(target SubfolderStatus, state OverrideState, now time.Time) error {
	if !target.Valid() {
		return Validation("override subfolder status", "unknown subfolder status %q", target)
	}
	refuse := func(allowed ...string) error {
		return &TransitionError{
			Entity:  "subfolder",
			ID:      s.ID,
			Current: string(s.Status),
			Event:   "override:" + string(target),
			Allowed: allowed,
		}
	}
	switch {
	case target == s.Status:
		return refuse("any status other than " + string(target))
	case s.Status == SubfolderCompleted && target != SubfolderExpired:
		return refuse(string(SubfolderCompleted) + " only to " + string(SubfolderExpired))
	case target == SubfolderCompleted && !state.Completed:
		return refuse("subfolders with every required document approved")
	case target == SubfolderDraft && state.LockedDocuments > 0:
		return refuse("subfolders without submitted or approved documents")
	}
	s.Status = target
	s.UpdatedAt = now
	return nil
}
