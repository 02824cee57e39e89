// =============================================================================
// CSV to XML Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the entire
// conversion pipeline for a single file, from input parsing to XML output.
//
// CONVERSION PIPELINE:
//   1. Parse the input file (CSV, or XLSX by extension)
//   2. Resolve the row tag and every column path
//   3. Validate the header set (errors stop here, warnings are logged); names
//      must be writable in the output encoding
//   4. Build the element tree, one row element per input row
//   5. Render the XML document to a temporary file
//   6. Rename the temporary file over the output path
//
// CONCURRENCY:
//   A Converter handles exactly one file and shares no state, so the batch
//   command runs many of them at once.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/csv2xml/internal/charset"
	"github.com/ginjaninja78/csv2xml/internal/csvparser"
	"github.com/ginjaninja78/csv2xml/internal/mapper"
	"github.com/ginjaninja78/csv2xml/internal/tree"
	"github.com/ginjaninja78/csv2xml/internal/types"
	"github.com/ginjaninja78/csv2xml/internal/xlsxparser"
	"github.com/ginjaninja78/csv2xml/internal/xmlwriter"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the generated XML file.
	// This is empty if processing failed or ran dry.
	OutputFile string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// Rows is the number of data rows read.
	Rows int

	// Columns is the number of header columns.
	Columns int

	// Elements is the number of elements in the generated document.
	Elements int

	// RowTag is the row element name that was used.
	RowTag string

	// Warnings is the number of header validation warnings.
	Warnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options controls a single conversion.
type Options struct {
	mapper.Options

	// InputEncoding is the character encoding of CSV input.
	InputEncoding string

	// OutputEncoding is the character encoding of the XML output.
	OutputEncoding string

	// Indent is written once per nesting level. Empty means the default of
	// two spaces; see Compact.
	Indent string

	// Compact writes the document without indentation or line breaks.
	Compact bool

	// NoDeclaration omits the <?xml ...?> declaration.
	NoDeclaration bool

	// Sheet selects the XLSX worksheet. Empty means the first sheet.
	Sheet string

	// DryRun runs the whole pipeline but writes nothing.
	DryRun bool
}

// Logger is an interface for logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Converter handles the conversion of a single input file to XML.
type Converter struct {
	inputPath  string
	outputPath string
	options    Options
	logger     Logger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance. A nil logger discards all output.
func New(inputPath, outputPath string, options Options, logger Logger) *Converter {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Converter{
		inputPath:  inputPath,
		outputPath: outputPath,
		options:    options,
		logger:     logger,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file. ctx is checked between
// steps; a cancelled run leaves no output behind.
func (c *Converter) Run(ctx context.Context) Result {
	startTime := time.Now()
	result := Result{FilePath: c.inputPath}

	finish := func(err error) Result {
		result.Error = err
		result.Success = err == nil
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	c.logger.Info("Processing file", "input", c.inputPath)

	// =========================================================================
	// STEP 1: PARSE INPUT
	// =========================================================================

	table, err := c.load()
	if err != nil {
		return finish(fmt.Errorf("failed to parse input: %w", err))
	}

	result.Stats.Rows = table.RowCount()
	result.Stats.Columns = table.ColumnCount()
	c.logger.Debug("Parsed input", "rows", table.RowCount(), "columns", table.ColumnCount())

	if err := ctx.Err(); err != nil {
		return finish(err)
	}

	// =========================================================================
	// STEP 2: RESOLVE AND VALIDATE HEADERS
	// =========================================================================

	mapping, err := c.mapperOptions()
	if err != nil {
		return finish(err)
	}

	plan := mapper.NewPlan(table.Headers, mapping)
	result.Stats.RowTag = plan.RowTag

	validation := plan.Validate()
	result.Stats.Warnings = validation.WarningCount
	for _, w := range validation.Warnings() {
		c.logger.Warn("Header warning", "column", w.Column, "header", w.Header, "rule", w.Rule, "message", w.Message)
	}
	c.logger.Debug("Resolved row tag", "row_tag", plan.RowTag)

	// =========================================================================
	// STEP 3: BUILD THE DOCUMENT
	// =========================================================================

	root, err := plan.Map(table)
	if err != nil {
		return finish(err)
	}

	result.Stats.Elements = root.Count()

	if err := ctx.Err(); err != nil {
		return finish(err)
	}

	// =========================================================================
	// STEP 4: WRITE OUTPUT
	// =========================================================================

	if c.options.DryRun {
		if err := xmlwriter.Render(io.Discard, root, c.writerOptions()); err != nil {
			return finish(fmt.Errorf("failed to generate XML: %w", err))
		}
		c.logger.Info("Dry run complete", "input", c.inputPath, "rows", result.Stats.Rows)
		return finish(nil)
	}

	if err := c.writeOutput(root); err != nil {
		return finish(fmt.Errorf("failed to write output: %w", err))
	}

	result.OutputFile = c.outputPath
	c.logger.Info("Wrote output", "output", c.outputPath, "rows", result.Stats.Rows)

	return finish(nil)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// load parses the input file, choosing the parser by extension.
func (c *Converter) load() (*types.Table, error) {
	if IsSpreadsheet(c.inputPath) {
		return xlsxparser.ParseFile(c.inputPath, c.options.Sheet)
	}
	return csvparser.ParseFile(c.inputPath, csvparser.Settings{Encoding: c.options.InputEncoding})
}

// IsSpreadsheet reports whether path names an XLSX workbook.
func IsSpreadsheet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// mapperOptions adds the output encoding check to the mapping options.
func (c *Converter) mapperOptions() (mapper.Options, error) {
	options := c.options.Options

	cs, err := charset.Lookup(c.options.OutputEncoding)
	if err != nil {
		return options, fmt.Errorf("failed to set up output encoding: %w", err)
	}
	if !cs.IsUTF8() {
		options.Validation.Encodable = cs.CanEncode
	}
	return options, nil
}

func (c *Converter) writerOptions() xmlwriter.Options {
	options := xmlwriter.DefaultOptions()
	switch {
	case c.options.Compact:
		options.Indent = ""
	case c.options.Indent != "":
		options.Indent = c.options.Indent
	}
	options.IncludeXMLDeclaration = !c.options.NoDeclaration
	if c.options.OutputEncoding != "" {
		options.Encoding = c.options.OutputEncoding
	}
	return options
}

// writeOutput renders into a temporary file next to the output path and
// renames it into place, so readers never see a partial document.
func (c *Converter) writeOutput(root *tree.Node) error {
	dir := filepath.Dir(c.outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(c.outputPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := xmlwriter.Render(tmp, root, c.writerOptions()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, c.outputPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return nil
}

// =============================================================================
// DEFAULT LOGGER
// =============================================================================

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
