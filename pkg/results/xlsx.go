package results

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// WriteXLSX writes t as a single-sheet workbook with the header in the first
// row. Cells are written as text so number literals survive unchanged.
func (t Table) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if idx, err := f.GetSheetIndex(xlsxSheet); err != nil || idx == -1 {
		idx, err := f.NewSheet(xlsxSheet)
		if err != nil {
			return fmt.Errorf("results: create sheet: %w", err)
		}
		f.SetActiveSheet(idx)
	}

	for i, name := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(xlsxSheet, cell, name); err != nil {
			return fmt.Errorf("results: write header: %w", err)
		}
	}
	for r, row := range t.Rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(xlsxSheet, cell, value); err != nil {
				return fmt.Errorf("results: write row %d: %w", r+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("results: write workbook: %w", err)
	}
	return nil
}
