// =============================================================================
// CSV to XML Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which converts one input file.
//
// COMMAND USAGE:
//   csv2xml convert INPUT [flags]
//
// FLAGS:
//   -o, --output       : Output XML file (default "output.xml")
//   --root-tag         : Document element name
//   --row-tag          : Row element name (default: inferred from headers)
//   --keep-empty       : Write empty cells as empty elements
//   --encoding         : Output character encoding
//   --input-encoding   : CSV input character encoding
//   --sheet            : XLSX worksheet name
//   --indent           : Indentation per nesting level ("" for compact output)
//   --no-declaration   : Omit the <?xml ...?> declaration
//   --dry-run          : Run the conversion without writing the output file
//
// Flags override the configuration file.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/csv2xml/internal/config"
	"github.com/ginjaninja78/csv2xml/internal/converter"
	"github.com/ginjaninja78/csv2xml/internal/mapper"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	outputPath    string
	rootTag       string
	rowTag        string
	keepEmpty     bool
	encoding      string
	inputEncoding string
	sheetName     string
	indent        string
	noDeclaration bool
	dryRun        bool
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert INPUT",
	Short: "Convert a single CSV or XLSX file to XML",
	Long: `The convert command reads INPUT, maps every row to a nested XML element
according to the dot-path headers, and writes the document to the output file.

Headers are validated before anything is written. Invalid element names,
empty path segments and columns that would need an element to be both a leaf
and a container are errors; duplicate paths are reported as warnings and the
rightmost column wins.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlagOverrides(cmd, cfg); err != nil {
			return err
		}
		return runConvert(cmd.Context(), cfg, args[0], outputPath, dryRun, logger, cmd.OutOrStdout())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "output.xml", "Output XML file")
	flags.BoolVar(&dryRun, "dry-run", false, "Run the conversion without writing the output file")
	addDocumentFlags(convertCmd)
	flags.BoolVar(&keepEmpty, "keep-empty", false, "Write empty cells as empty elements")
	flags.StringVar(&encoding, "encoding", "", "Output character encoding (default from config, utf-8)")
	flags.StringVar(&indent, "indent", "", "Indentation per nesting level; empty writes compact output (default from config, two spaces)")
	flags.BoolVar(&noDeclaration, "no-declaration", false, "Omit the XML declaration")
}

// addDocumentFlags registers the flags that affect how input is read and
// mapped. They are shared with the validate command.
func addDocumentFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&rootTag, "root-tag", "", "Document element name (default from config, root)")
	flags.StringVar(&rowTag, "row-tag", "", "Row element name (default: inferred from headers)")
	flags.StringVar(&inputEncoding, "input-encoding", "", "CSV input character encoding (default from config, utf-8)")
	flags.StringVar(&sheetName, "sheet", "", "XLSX worksheet name (default: first sheet)")
}

// applyFlagOverrides copies every explicitly set flag into c and checks the
// result again.
func applyFlagOverrides(cmd *cobra.Command, c *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("root-tag") {
		c.RootTag = rootTag
	}
	if changed("row-tag") {
		c.RowTag = rowTag
	}
	if changed("keep-empty") {
		c.KeepEmpty = keepEmpty
	}
	if changed("encoding") {
		c.OutputEncoding = encoding
	}
	if changed("input-encoding") {
		c.InputEncoding = inputEncoding
	}
	if changed("sheet") {
		c.Sheet = sheetName
	}
	if changed("indent") {
		c.Indent = indent
	}
	if changed("no-declaration") {
		c.XMLDeclaration = !noDeclaration
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// converterOptions translates the configuration into converter options. An
// empty indent means compact output.
func converterOptions(c *config.Config, dryRun bool) converter.Options {
	return converter.Options{
		Options: mapper.Options{
			RootTag:   c.RootTag,
			RowTag:    c.RowTag,
			KeepEmpty: c.KeepEmpty,
		},
		InputEncoding:  c.InputEncoding,
		OutputEncoding: c.OutputEncoding,
		Indent:         c.Indent,
		Compact:        c.Indent == "",
		NoDeclaration:  !c.XMLDeclaration,
		Sheet:          c.Sheet,
		DryRun:         dryRun,
	}
}

// =============================================================================
// CONVERSION
// =============================================================================

func runConvert(ctx context.Context, c *config.Config, input, output string, dryRun bool, log *slog.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result := converter.New(input, output, converterOptions(c, dryRun), log.With("file", input)).Run(ctx)
	if !result.Success {
		return result.Error
	}

	if dryRun {
		fmt.Fprintf(out, "Dry run: %d row(s) from %s would be written to %s\n", result.Stats.Rows, input, output)
		return nil
	}

	fmt.Fprintf(out, "Wrote XML to %s\n", result.OutputFile)
	return nil
}
