// =============================================================================
// CSV to XML Converter - XLSX Sheet Parser
// =============================================================================
//
// This module reads one worksheet of an XLSX workbook into a types.Table, so
// spreadsheets exported with dot-path headers convert the same way CSV files
// do.
//
// SHEET LAYOUT:
//
//   | Column A    | Column B    | Column C |
//   |-------------|-------------|----------|
//   | person.name | person.age  | city     |   <- header row (row 1)
//   | Ana         | 30          | Lyon     |   <- data rows
//
//   - The first row is the header row
//   - Cells are read as their formatted text
//   - Trailing empty cells are missing from excelize rows; they are padded
//     with ""
//   - Rows with cells beyond the last header fail the parse
//   - Completely empty rows are skipped
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/csv2xml/internal/types"
)

var (
	// ErrNoSheet is returned when the workbook has no sheet by the requested name.
	ErrNoSheet = errors.New("worksheet not found")

	// ErrEmptySheet is returned when the sheet has no header row.
	ErrEmptySheet = errors.New("worksheet has no header row")

	// ErrFieldCount is returned for rows wider than the header row.
	ErrFieldCount = errors.New("row has more cells than the header row")
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads sheetName from the workbook at filePath. An empty
// sheetName selects the first sheet.
func ParseFile(filePath, sheetName string) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseSheet(f, sheetName)
	if err != nil {
		return nil, err
	}
	table.Source = filePath

	return table, nil
}

// parseSheet converts the rows of one sheet.
func parseSheet(f *excelize.File, sheetName string) (*types.Table, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("%w: workbook has no sheets", ErrNoSheet)
		}
	} else if idx, err := f.GetSheetIndex(sheetName); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q (sheets: %s)", ErrNoSheet, sheetName, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	// Leading empty rows are skipped too; the header is the first row with
	// content.
	start := 0
	for start < len(rows) && isRowEmpty(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, ErrEmptySheet
	}

	headers := make([]string, len(rows[start]))
	for i, cell := range rows[start] {
		headers[i] = strings.TrimSpace(cell)
	}

	table := &types.Table{
		Headers: headers,
		Rows:    []types.Row{},
	}

	for i := start + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		if len(row) > len(headers) {
			return nil, fmt.Errorf("%w: sheet %q row %d has %d cells, header has %d",
				ErrFieldCount, sheetName, i+1, len(row), len(headers))
		}

		// excelize trims trailing empty cells; pad them back as "".
		values := make(types.Row, len(headers))
		copy(values, row)
		table.Rows = append(table.Rows, values)
	}

	return table, nil
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// SheetNames lists the sheets of the workbook at filePath in workbook order.
func SheetNames(filePath string) ([]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}
