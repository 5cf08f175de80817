package exporter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// Workbook mirrors tables into one xlsx file. An existing workbook is
// reopened so that sheets written by other commands are kept.
type Workbook struct {
	path  string
	file  *excelize.File
	dirty bool
}

// OpenWorkbook opens path, or starts a new workbook when it does not exist.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		return &Workbook{path: path, file: f}, nil
	}
	return &Workbook{path: path, file: excelize.NewFile()}, nil
}

// AddTable writes t to its sheet, replacing any previous content.
func (w *Workbook) AddTable(t Table) error {
	sheet := t.Sheet
	if idx, err := w.file.GetSheetIndex(sheet); err == nil && idx >= 0 {
		if err := w.file.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("failed to replace sheet %s: %w", sheet, err)
		}
	}
	idx, err := w.file.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := w.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	if err := w.styleHeader(sheet, len(t.Headers)); err != nil {
		return err
	}

	for i, record := range t.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(record))
		for j, v := range record {
			if j == 0 {
				row[j] = v
				continue
			}
			row[j] = parseCell(v)
		}
		if err := w.file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i, sheet, err)
		}
	}

	w.file.SetActiveSheet(idx)
	w.dirty = true
	return nil
}

func (w *Workbook) styleHeader(sheet string, cols int) error {
	if cols == 0 {
		return nil
	}
	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, "A1", last, style)
}

// Sheets lists the sheets currently in the workbook.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// Save writes the workbook if any table was added and closes it.
func (w *Workbook) Save() (bool, error) {
	defer w.file.Close()
	if !w.dirty {
		return false, nil
	}

	if idx, err := w.file.GetSheetIndex(defaultSheet); err == nil && idx >= 0 && len(w.file.GetSheetList()) > 1 {
		rows, err := w.file.GetRows(defaultSheet)
		if err == nil && len(rows) == 0 {
			if err := w.file.DeleteSheet(defaultSheet); err != nil {
				return false, err
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := w.file.SaveAs(w.path); err != nil {
		return false, fmt.Errorf("failed to save workbook: %w", err)
	}
	return true, nil
}
