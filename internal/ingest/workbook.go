package ingest

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook returns the active sheet of an xlsx document as rows of cell values.
// Numeric cells come back as float64, empty cells as nil and everything else as string.
func ReadWorkbook(r io.Reader) ([][]any, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no active sheet")
	}

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	rows := make([][]any, len(raw))
	for i, cols := range raw {
		row := make([]any, len(cols))
		for j, v := range cols {
			row[j] = typedCell(f, sheet, j+1, i+1, v)
		}
		rows[i] = row
	}
	return rows, nil
}

func typedCell(f *excelize.File, sheet string, col, row int, raw string) any {
	if raw == "" {
		return nil
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			return n
		}
	}
	return raw
}
