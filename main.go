// =============================================================================
// CSV to XML Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the CSV to XML Converter CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   csv2xml convert INPUT   - Convert a single CSV or XLSX file
//   csv2xml validate INPUT  - Check an input's headers without writing XML
//   csv2xml process         - Convert every file in the input directory
//   csv2xml version         - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, header mapping, tree building, XML output
//   - pkg/           : Batch file management utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/csv2xml/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
