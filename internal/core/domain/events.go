package domain

import "time"

type ChangeKind string

const (
	ChangeDocumentUploaded    ChangeKind = "document.uploaded"
	ChangeSubfolderSubmitted  ChangeKind = "subfolder.submitted"
	ChangeDocumentsReviewed   ChangeKind = "documents.reviewed"
	ChangeDocumentsExpired    ChangeKind = "documents.expired"
	ChangeSubfolderOverridden ChangeKind = "subfolder.status_overridden"
	ChangeEntityLinked        ChangeKind = "subfolder.linked"
	ChangeFolderCreated       ChangeKind = "startup_folder.created"
	ChangeFolderDeleted       ChangeKind = "startup_folder.deleted"
)

// ChangeEvent tells consumers which aggregates to refresh after a committed mutation.
type ChangeEvent struct {
	Kind            ChangeKind `json:"kind"`
	StartupFolderID string     `json:"startup_folder_id,omitempty"`
	SubfolderID     string     `json:"subfolder_id,omitempty"`
	DocumentIDs     []string   `json:"document_ids,omitempty"`
	ActorID         string     `json:"actor_id,omitempty"`
	At              time.Time  `json:"at"`
}

// ReviewRequest is the payload handed to the notification collaborator after a submission.
type ReviewRequest struct {
	SubfolderID     string    `json:"subfolder_id"`
	StartupFolderID string    `json:"startup_folder_id"`
	Category        Category  `json:"category"`
	CategoryLabel   string    `json:"category_label"`
	CompanyName     string    `json:"company_name"`
	FolderLabel     string    `json:"folder_label"`
	Requester       User      `json:"requester"`
	Recipients      []string  `json:"recipients"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type Action string

const (
	ActionUpload         Action = "document.upload"
	ActionSubmit         Action = "subfolder.submit"
	ActionApprove        Action = "document.approve"
	ActionReject         Action = "document.reject"
	ActionMarkToUpdate   Action = "document.mark_to_update"
	ActionUndoReview     Action = "document.undo_review"
	ActionOverrideStatus Action = "subfolder.override_status"
	ActionLinkEntity     Action = "startup_folder.link_entity"
	ActionCreateFolder   Action = "startup_folder.create"
	ActionDeleteFolder   Action = "startup_folder.delete"
	ActionSweep          Action = "documents.expiration_sweep"
)
