// =============================================================================
// CSV to XML Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which reads an input file and
// reports how its headers map to elements without writing any XML.
//
// COMMAND USAGE:
//   csv2xml validate INPUT [flags]
//
// OUTPUT:
//   Sheet: People (sheets: People, Other)      <- XLSX input only
//   Row tag: person
//     1  person.name          -> name
//     2  person.address.city  -> address/city
//
//   No validation errors.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/csv2xml/internal/charset"
	"github.com/ginjaninja78/csv2xml/internal/config"
	"github.com/ginjaninja78/csv2xml/internal/converter"
	"github.com/ginjaninja78/csv2xml/internal/csvparser"
	"github.com/ginjaninja78/csv2xml/internal/mapper"
	"github.com/ginjaninja78/csv2xml/internal/types"
	"github.com/ginjaninja78/csv2xml/internal/validation"
	"github.com/ginjaninja78/csv2xml/internal/xlsxparser"
)

// strict promotes warnings to errors.
var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate INPUT",
	Short: "Check an input file's headers without writing XML",
	Long: `The validate command reads INPUT, resolves the row tag and the element path
of every header, and prints all validation findings. It exits with an error
when any finding is an error (or, with --strict, a warning).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyFlagOverrides(cmd, cfg); err != nil {
			return err
		}
		return runValidate(cfg, args[0], strict, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	addDocumentFlags(validateCmd)
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
}

func runValidate(c *config.Config, input string, strict bool, out io.Writer) error {
	table, err := readTable(c, input)
	if err != nil {
		return fmt.Errorf("failed to parse input: %w", err)
	}

	options := mapper.Options{
		RootTag:    c.RootTag,
		RowTag:     c.RowTag,
		Validation: validation.Options{TreatWarningsAsErrors: strict},
	}

	// Element names must be writable in the output encoding.
	cs, err := charset.Lookup(c.OutputEncoding)
	if err != nil {
		return fmt.Errorf("failed to set up output encoding: %w", err)
	}
	if !cs.IsUTF8() {
		options.Validation.Encodable = cs.CanEncode
	}

	plan := mapper.NewPlan(table.Headers, options)

	if converter.IsSpreadsheet(input) {
		sheets, err := xlsxparser.SheetNames(input)
		if err != nil {
			return err
		}
		sheet := c.Sheet
		if sheet == "" && len(sheets) > 0 {
			sheet = sheets[0]
		}
		fmt.Fprintf(out, "Sheet: %s (sheets: %s)\n", sheet, strings.Join(sheets, ", "))
	}

	fmt.Fprintf(out, "Row tag: %s\n", plan.RowTag)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, col := range plan.Columns {
		fmt.Fprintf(tw, "  %d\t%s\t-> %s\n", i+1, col.Header, strings.Join(col.Path, "/"))
	}
	tw.Flush()

	result := plan.Validate()

	fmt.Fprintf(out, "\n%s\n", validation.FormatErrors(result.Findings))
	fmt.Fprintf(out, "%d row(s) read.\n", table.RowCount())

	return result.Err()
}

// readTable parses input the same way the converter does.
func readTable(c *config.Config, input string) (*types.Table, error) {
	if converter.IsSpreadsheet(input) {
		return xlsxparser.ParseFile(input, c.Sheet)
	}
	return csvparser.ParseFile(input, csvparser.Settings{Encoding: c.InputEncoding})
}
