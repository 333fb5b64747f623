package domain

import "time"

type FolderType string

const (
	FolderBasic FolderType = "BASIC"
	FolderFull  FolderType = "FULL"
)

func (t FolderType) Valid() bool {
	return t == FolderBasic || t == FolderFull
}

type StartupFolder struct {
	ID          string     `json:"id"`
	CompanyID   string     `json:"company_id"`
	CompanyName string     `json:"company_name"`
	Name        string     `json:"name"`
	Type        FolderType `json:"type"`
	CreatedAt   time.Time  `json:"created_at"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}
