package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/validator"
)

const (
	summarySheet    = "Summary"
	violationsSheet = "Violations"
	topErrorRows    = 10
)

// BuildWorkbook renders a completed run into an xlsx workbook: a Summary
// sheet with the run counters and top error frequencies, and a Violations
// sheet with one row per violation. The caller owns closing the file.
func BuildWorkbook(run *domain.ValidationRun, docs []domain.RunDocument) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("naming summary sheet: %w", err)
	}
	if _, err := f.NewSheet(violationsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("adding violations sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeSummarySheet(f, run, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeViolationsSheet(f, docs, headerStyle); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, run *domain.ValidationRun, headerStyle int) error {
	w := &sheetWriter{f: f, sheet: summarySheet}

	w.setRow(1, "Run", run.ID.String())
	w.setRow(2, "Source", string(run.Source))
	w.setRow(3, "Status", string(run.Status))
	w.setRow(4, "Created", run.CreatedAt.Format(time.RFC3339))

	w.setRow(6, "Invoices", run.TotalCount)
	w.setRow(7, "Valid", run.ValidCount)
	w.setRow(8, "Invalid", run.InvalidCount)

	// The error breakdown comes from the stored report so the workbook
	// matches what the API serves.
	var report validator.Report
	if len(run.Report) > 0 && json.Unmarshal(run.Report, &report) == nil {
		top := report.Summary.TopErrors(topErrorRows)
		if len(top) > 0 {
			w.setRow(10, "Rule", "Invoices affected")
			w.style(1, 10, 2, 10, headerStyle)
			for i, entry := range top {
				w.setRow(11+i, entry.RuleID, entry.Count)
			}
		}
	}

	if w.err == nil {
		w.err = f.SetColWidth(summarySheet, "A", "A", 24)
	}
	if w.err == nil {
		w.err = f.SetColWidth(summarySheet, "B", "B", 40)
	}
	if w.err != nil {
		return fmt.Errorf("writing summary sheet: %w", w.err)
	}
	return nil
}

func writeViolationsSheet(f *excelize.File, docs []domain.RunDocument, headerStyle int) error {
	w := &sheetWriter{f: f, sheet: violationsSheet}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	w.setRow(1, header...)
	w.style(1, 1, len(Columns), 1, headerStyle)

	row := 2
	for i := range docs {
		for _, values := range documentRows(&docs[i]) {
			cells := make([]interface{}, len(Columns))
			for j, c := range Columns {
				cells[j] = values[c]
			}
			w.setRow(row, cells...)
			row++
		}
	}

	if w.err == nil {
		w.err = f.SetColWidth(violationsSheet, "B", "C", 22)
	}
	if w.err == nil {
		w.err = f.SetColWidth(violationsSheet, "D", "D", 26)
	}
	if w.err == nil {
		w.err = f.SetColWidth(violationsSheet, "H", "H", 60)
	}
	if w.err != nil {
		return fmt.Errorf("writing violations sheet: %w", w.err)
	}
	return nil
}

// sheetWriter accumulates cell writes against one sheet and keeps the first
// error, so callers check once at the end.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(col, row int, value interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, value)
}

func (w *sheetWriter) setRow(row int, values ...interface{}) {
	for i, v := range values {
		w.set(i+1, row, v)
	}
}

func (w *sheetWriter) style(fromCol, fromRow, toCol, toRow, styleID int) {
	if w.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, fromRow)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, toRow)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, from, to, styleID)
}
