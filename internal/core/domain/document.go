package domain

import "time"

type DocumentStatus string

const (
	// StatusNotUploaded is virtual: a required type with no document row.
	StatusNotUploaded DocumentStatus = "NOT_UPLOADED"
	StatusDraft       DocumentStatus = "DRAFT"
	StatusSubmitted   DocumentStatus = "SUBMITTED"
	StatusApproved    DocumentStatus = "APPROVED"
	StatusRejected    DocumentStatus = "REJECTED"
	StatusToUpdate    DocumentStatus = "TO_UPDATE"
	StatusExpired     DocumentStatus = "EXPIRED"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusNotUploaded, StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusToUpdate, StatusExpired:
		return true
	default:
		return false
	}
}

type Document struct {
	ID             string         `json:"id"`
	SubfolderID    string         `json:"folder_id"`
	Category       Category       `json:"category"`
	Type           DocumentType   `json:"type"`
	Name           string         `json:"name"`
	StorageURL     string         `json:"storage_url"`
	SizeBytes      int64          `json:"size_bytes"`
	MimeType       string         `json:"mime_type"`
	Status         DocumentStatus `json:"status"`
	UploadedByID   string         `json:"uploaded_by_id"`
	UploadedAt     time.Time      `json:"uploaded_at"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty"`
	ReviewedByID   *string        `json:"reviewed_by_id,omitempty"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty"`
	ReviewNotes    *string        `json:"review_notes,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// StoredObject is what the storage collaborator hands back after accepting bytes.
type StoredObject struct {
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// ExpiredAt reports whether an approved document has passed its expiration date.
func (d Document) ExpiredAt(now time.Time) bool {
	return d.Status == StatusApproved && d.ExpirationDate != nil && d.ExpirationDate.Before(now)
}

func (d *Document) clearReview() {
	d.ReviewedByID = nil
	d.ReviewedAt = nil
	d.ReviewNotes = nil
}
