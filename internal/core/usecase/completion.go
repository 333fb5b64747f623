package usecase

import (
	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/registry"
)

// IsCompleted reports whether every required type of the subfolder has an
// APPROVED document. It is computed from the documents passed in and never cached.
func IsCompleted(desc registry.Descriptor, sf domain.Subfolder, docs []domain.Document) bool {
	return Completion(desc, sf, docs).Completed
}

// Completion derives the checklist view of a subfolder from its current documents.
func Completion(desc registry.Descriptor, sf domain.Subfolder, docs []domain.Document) domain.SubfolderProgress {
	byType := make(map[domain.DocumentType]domain.Document, len(docs))
	for _, d := range docs {
		if d.SubfolderID != "" && d.SubfolderID != sf.ID {
			continue
		}
		byType[d.Type] = d
	}

	required := desc.RequiredFor(sf)
	progress := domain.SubfolderProgress{
		Subfolder: sf,
		Checklist: make([]domain.ChecklistItem, 0, len(required)),
		Missing:   make([]domain.DocumentType, 0),
		Completed: true,
	}
	listed := make(map[domain.DocumentType]struct{}, len(required))
	for _, t := range required {
		listed[t] = struct{}{}
		item := domain.ChecklistItem{Type: t, Required: true, Status: domain.StatusNotUploaded}
		if d, ok := byType[t]; ok {
			item.Status = d.Status
			item.DocumentID = d.ID
		}
		if item.Status != domain.StatusApproved {
			progress.Completed = false
			progress.Missing = append(progress.Missing, t)
		}
		progress.Checklist = append(progress.Checklist, item)
	}
	for _, t := range desc.Optional {
		d, ok := byType[t]
		if !ok {
			continue
		}
		if _, dup := listed[t]; dup {
			continue
		}
		progress.Checklist = append(progress.Checklist, domain.ChecklistItem{Type: t, Status: d.Status, DocumentID: d.ID})
	}
	return progress
}
