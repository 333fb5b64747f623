package domain

type ChecklistItem struct {
	Type       DocumentType   `json:"type"`
	Required   bool           `json:"required"`
	Status     DocumentStatus `json:"status"`
	DocumentID string         `json:"document_id,omitempty"`
}

type SubfolderProgress struct {
	Subfolder Subfolder       `json:"subfolder"`
	Checklist []ChecklistItem `json:"checklist"`
	Missing   []DocumentType  `json:"missing"`
	Completed bool            `json:"completed"`
}

type FolderProgress struct {
	Folder     StartupFolder       `json:"folder"`
	Subfolders []SubfolderProgress `json:"subfolders"`
	Completed  bool                `json:"completed"`
}
