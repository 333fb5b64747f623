package domain

import "time"

type UploadCommand struct {
	SubfolderID    string
	Type           DocumentType
	Name           string
	Object         StoredObject
	ExpirationDate *time.Time
	UploaderID     string
}

type SubmitCommand struct {
	SubfolderID string   `json:"-"`
	RequesterID string   `json:"-"`
	ExtraEmails []string `json:"extra_emails"`
}

type SubmissionResult struct {
	Subfolder        Subfolder  `json:"subfolder"`
	Documents        []Document `json:"documents"`
	Recipients       []string   `json:"recipients"`
	NotificationSent bool       `json:"notification_sent"`
}

type LinkCommand struct {
	StartupFolderID string   `json:"-"`
	EntityID        string   `json:"entity_id"`
	EntityLabel     string   `json:"entity_label"`
	Category        Category `json:"category"`
	IsDriver        bool     `json:"is_driver"`
	RequesterID     string   `json:"-"`
}

type CreateFolderCommand struct {
	CompanyID   string     `json:"company_id"`
	CompanyName string     `json:"company_name"`
	Name        string     `json:"name"`
	Type        FolderType `json:"type"`
	RequesterID string     `json:"-"`
}

type OverrideCommand struct {
	SubfolderID string          `json:"-"`
	Target      SubfolderStatus `json:"status"`
	Reason      string          `json:"reason"`
	ActorID     string          `json:"-"`
}
