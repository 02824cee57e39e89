// =============================================================================
// CSV to XML Converter - CSV Parser Module
// =============================================================================
//
// This module reads semicolon-delimited CSV files into a types.Table.
//
// FORMAT:
//   - The delimiter is fixed to ';'
//   - Fields may be quoted with '"' (RFC 4180); stray quotes are tolerated
//   - The first record is the header row
//   - Every data row must have exactly as many fields as the header
//   - Blank lines are skipped
//   - Cell values are kept verbatim; empty cells become ""
//
// ENCODING:
//   Input bytes are decoded from Settings.Encoding (default UTF-8). A UTF-8
//   byte order mark in front of the first header is dropped.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/csv2xml/internal/charset"
	"github.com/ginjaninja78/csv2xml/internal/types"
)

// Delimiter separates fields.
const Delimiter = ';'

var (
	// ErrEmptyInput is returned when the input has no header record.
	ErrEmptyInput = errors.New("CSV input has no header row")

	// ErrFieldCount is returned when a row's field count differs from the header's.
	ErrFieldCount = errors.New("row does not match header column count")
)

// Settings contains settings for parsing CSV input.
type Settings struct {
	// Encoding is the character encoding of the input.
	// Default: "UTF-8"
	Encoding string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile opens and parses the CSV file at filePath.
func ParseFile(filePath string, settings Settings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := Parse(bufio.NewReader(file), settings)
	if err != nil {
		return nil, err
	}
	table.Source = filePath

	return table, nil
}

// Parse reads CSV from r.
func Parse(r io.Reader, settings Settings) (*types.Table, error) {
	cs, err := charset.Lookup(settings.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to set up input decoding: %w", err)
	}

	csvReader := csv.NewReader(cs.NewReader(r))
	configureReader(csvReader)

	headerRecord, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	table := &types.Table{
		Headers: cleanHeaders(headerRecord),
		Rows:    []types.Row{},
	}

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, csv.ErrFieldCount) {
			return nil, fmt.Errorf("%w: %w", ErrFieldCount, err)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		table.Rows = append(table.Rows, toRow(record))
	}

	return table, nil
}

// configureReader sets the fixed dialect.
func configureReader(reader *csv.Reader) {
	reader.Comma = Delimiter

	// The header record fixes the field count for every later record.
	reader.FieldsPerRecord = 0

	reader.LazyQuotes = true

	// Leading spaces are part of the value.
	reader.TrimLeadingSpace = false

	reader.ReuseRecord = false
}

// cleanHeaders trims surrounding whitespace from each header. Empty headers
// are kept as "" and rejected later by header validation.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// toRow copies a record into a row. Columns stay positional, so repeated
// header names keep one value each.
func toRow(record []string) types.Row {
	row := make(types.Row, len(record))
	copy(row, record)
	return row
}
