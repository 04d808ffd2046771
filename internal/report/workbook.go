package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vvka-141/pgdash/pkg/pgdash"
	"github.com/xuri/excelize/v2"
)

// Sheet names are limited to 31 characters and may not contain these.
const (
	maxSheetName      = 31
	invalidSheetChars = `:\/?*[]`
)

// colourScale shades numeric columns low to high.
var colourScale = excelize.ConditionalFormatOptions{
	Type:     "3_color_scale",
	Criteria: "=",
	MinType:  "min",
	MidType:  "percentile",
	MidValue: "50",
	MaxType:  "max",
	MinColor: "#AAAAFF",
	MidColor: "#FFFFAA",
	MaxColor: "#AAFFAA",
}

// WorkbookWriter implements pgdash.SpreadsheetEmitter.
type WorkbookWriter struct{}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

// EmitWorkbook writes one sheet per table to path, replacing any existing file.
// Each sheet has a bold frozen header row and an autofilter; columns after
// the first get a three-colour scale. Sheets without rows keep their header.
func (w *WorkbookWriter) EmitWorkbook(sheets []pgdash.Sheet, path string) (err error) {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s: %w", path, pgdash.ErrEmptyResult)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool)
	for i, sheet := range sheets {
		name := uniqueSheetName(sheet.Name, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
		if err := writeSheet(f, name, sheet.Table, header); err != nil {
			return fmt.Errorf("sheet %s: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, table *pgdash.Table, headerStyle int) error {
	if table == nil || len(table.Columns) == 0 {
		return nil
	}

	names := table.ColumnNames()
	headerRow := make([]interface{}, len(names))
	for i, n := range names {
		headerRow[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return err
	}

	for r, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for c, v := range row {
			cells[c] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(names))
	if err != nil {
		return err
	}
	lastRow := len(table.Rows) + 1

	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, fmt.Sprintf("A1:%s%d", lastCol, lastRow), nil); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return err
	}

	if len(table.Rows) == 0 {
		return nil
	}
	for c := 2; c <= len(names); c++ {
		col, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return err
		}
		rng := fmt.Sprintf("%s2:%s%d", col, col, lastRow)
		if err := f.SetConditionalFormat(sheet, rng, []excelize.ConditionalFormatOptions{colourScale}); err != nil {
			return err
		}
	}
	return nil
}

// cellValue maps a table cell to a value excelize writes natively.
// Timestamps are written as text so the sheet shows what the store holds.
func cellValue(v any) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return pgdash.FormatValue(x)
	default:
		return x
	}
}

func uniqueSheetName(name string, index int, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidSheetChars, r) {
			return '_'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if clean == "" {
		clean = fmt.Sprintf("Sheet%d", index+1)
	}
	if len(clean) > maxSheetName {
		clean = clean[:maxSheetName]
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		base := clean
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = base + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

var _ pgdash.SpreadsheetEmitter = (*WorkbookWriter)(nil)
