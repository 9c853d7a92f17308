package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the on-disk representation of a table.
type ExportFormat string

const (
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
	FormatJSON  ExportFormat = "json"
)

// FormatForPath picks the export format from the destination extension.
// Unknown extensions fall back to CSV, the native format of the pipeline.
func FormatForPath(path string) ExportFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatExcel
	case ".json":
		return FormatJSON
	default:
		return FormatCSV
	}
}

// Export persists the table to path in the format implied by its
// extension, overwriting any previous content.
func Export(path string, t *Table) error {
	switch FormatForPath(path) {
	case FormatExcel:
		return exportExcel(path, t)
	case FormatJSON:
		return exportJSON(path, t)
	default:
		return WriteCSV(path, t)
	}
}

const excelSheet = "Sheet1"

func exportExcel(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(t.Header))
	for i, name := range t.Header {
		header[i] = name
	}
	if err := f.SetSheetRow(excelSheet, "A1", &header); err != nil {
		return fmt.Errorf("write excel header: %w", err)
	}

	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("excel cell for row %d: %w", i, err)
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(excelSheet, cell, &cells); err != nil {
			return fmt.Errorf("write excel row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save excel file: %w", err)
	}
	return nil
}

func exportJSON(path string, t *Table) error {
	rows := make([]map[string]string, 0, t.Len())
	for _, row := range t.Rows {
		obj := make(map[string]string, len(t.Header))
		for i, name := range t.Header {
			obj[name] = row[i]
		}
		rows = append(rows, obj)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	payload := map[string]interface{}{
		"exported_at": time.Now().Format(time.RFC3339),
		"total":       t.Len(),
		"rows":        rows,
	}
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return f.Close()
}
