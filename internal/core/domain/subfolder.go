package domain

import "time"

type SubfolderStatus string

const (
	SubfolderDraft     SubfolderStatus = "DRAFT"
	SubfolderSubmitted SubfolderStatus = "SUBMITTED"
	SubfolderApproved  SubfolderStatus = "APPROVED"
	SubfolderRejected  SubfolderStatus = "REJECTED"
	SubfolderExpired   SubfolderStatus = "EXPIRED"
	SubfolderCompleted SubfolderStatus = "COMPLETED"
)

func (s SubfolderStatus) Valid() bool {
	switch s {
	case SubfolderDraft, SubfolderSubmitted, SubfolderApproved, SubfolderRejected, SubfolderExpired, SubfolderCompleted:
		return true
	default:
		return false
	}
}

// Editable reports whether documents may be uploaded or replaced.
func (s SubfolderStatus) Editable() bool {
	return s == SubfolderDraft || s == SubfolderRejected || s == SubfolderExpired
}

// Submittable reports whether the subfolder may enter SUBMITTED.
func (s SubfolderStatus) Submittable() bool {
	return s == SubfolderDraft || s == SubfolderRejected
}

type Subfolder struct {
	ID                           string          `json:"id"`
	StartupFolderID              string          `json:"startup_folder_id"`
	Category                     Category        `json:"category"`
	EntityID                     string          `json:"entity_id,omitempty"`
	EntityLabel                  string          `json:"entity_label,omitempty"`
	IsDriver                     bool            `json:"is_driver"`
	Status                       SubfolderStatus `json:"status"`
	SubmittedAt                  *time.Time      `json:"submitted_at,omitempty"`
	AdditionalNotificationEmails []string        `json:"additional_notification_emails"`
	CreatedAt                    time.Time       `json:"created_at"`
	UpdatedAt                    time.Time       `json:"updated_at"`
}

type StatusChangeAudit struct {
	ID          string          `json:"id"`
	SubfolderID string          `json:"subfolder_id"`
	ActorID     string          `json:"actor_id"`
	FromStatus  SubfolderStatus `json:"from_status"`
	ToStatus    SubfolderStatus `json:"to_status"`
	Reason      string          `json:"reason"`
	CreatedAt   time.Time       `json:"created_at"`
}
