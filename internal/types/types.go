// =============================================================================
// CSV to XML Converter - Shared Types
// =============================================================================
//
// This package contains the tabular types shared by the ingestion modules and
// the row mapper, to avoid import cycles. Types defined here are used by:
//   - csvparser
//   - xlsxparser
//   - mapper
//   - converter
//
// =============================================================================

package types

// Row holds the raw cell text of one data row, positionally aligned with
// Table.Headers. Empty cells are stored as "". A row shorter than the header
// list has null-equivalent cells past its end.
//
// Rows are positional rather than keyed by header so that repeated headers
// keep every column's value.
type Row []string

// Cell returns the value of column i and whether the row has that column.
func (r Row) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// Table is parsed tabular input: an ordered header list plus the data rows in
// input order.
type Table struct {
	// Headers contains the column headers in file order.
	Headers []string

	// Rows contains the data rows, one value per header.
	Rows []Row

	// Source is the path (or name) the table was read from. Used for logging
	// and error messages only.
	Source string
}

// RowCount returns the number of data rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Headers)
}
