// Package xlsx renders folder progress as a spreadsheet for offline review.
package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

const (
	summarySheet   = "Summary"
	checklistSheet = "Checklist"
)

var checklistHeader = []any{"Category", "Entity", "Subfolder status", "Document type", "Required", "Document status", "Document ID"}

type Exporter struct {
	now func() time.Time
}

func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

func (e *Exporter) WriteFolderProgress(w io.Writer, progress *domain.FolderProgress) error {
	if progress == nil {
		return fmt.Errorf("xlsx export: progress is nil")
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("xlsx export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(checklistSheet); err != nil {
		return fmt.Errorf("xlsx export: add sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx export: style: %w", err)
	}

	folder := progress.Folder
	summary := [][]any{
		{"Folder", folder.Name},
		{"Company", folder.CompanyName},
		{"Type", string(folder.Type)},
		{"Completed", yesNo(progress.Completed)},
		{"Subfolders", len(progress.Subfolders)},
		{"Generated at", e.now().UTC().Format(time.RFC3339)},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("xlsx export: style summary: %w", err)
	}

	rows := [][]any{checklistHeader}
	for _, sp := range progress.Subfolders {
		sf := sp.Subfolder
		entity := sf.EntityLabel
		if entity == "" {
			entity = sf.EntityID
		}
		for _, item := range sp.Checklist {
			rows = append(rows, []any{
				string(sf.Category),
				entity,
				string(sf.Status),
				string(item.Type),
				yesNo(item.Required),
				string(item.Status),
				item.DocumentID,
			})
		}
	}
	if err := writeRows(f, checklistSheet, rows); err != nil {
		return err
	}
	if err := f.SetCellStyle(checklistSheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("xlsx export: style header: %w", err)
	}
	if err := f.SetColWidth(checklistSheet, "A", "G", 22); err != nil {
		return fmt.Errorf("xlsx export: column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx export: write: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx export: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
