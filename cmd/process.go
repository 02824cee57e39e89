// =============================================================================
// CSV to XML Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every input file
// found in the input directory.
//
// COMMAND USAGE:
//   csv2xml process [flags]
//
// FLAGS:
//   --dry-run     : Simulate processing without writing output files
//   --summary     : Write a processing summary file to the output directory
//
// PROCESSING PIPELINE:
//   1. Discover CSV and XLSX files in the input directory
//   2. Name each output file from output_name_format
//   3. Convert the files concurrently (at most max_concurrency at once)
//   4. Archive successfully converted inputs
//   5. Write an error log for failures and print a summary
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/csv2xml/internal/config"
	"github.com/ginjaninja78/csv2xml/internal/converter"
	"github.com/ginjaninja78/csv2xml/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// batchDryRun simulates processing without writing output files.
var batchDryRun bool

// writeSummary writes a summary file next to the outputs.
var writeSummary bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert every CSV and XLSX file in the input directory",
	Long: `The process command scans the input directory for CSV and XLSX files and
converts each of them to XML using the settings of the configuration file.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others.

On successful processing:
  - The generated XML is placed in the output directory
  - The input is moved to the archive directory, when one is configured

On error:
  - An error log is created in the output directory
  - The input remains in the input directory
  - The command exits with an error once all files are done`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context(), cfg, batchDryRun, writeSummary, logger, cmd.OutOrStdout())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&batchDryRun,
		"dry-run",
		false,
		"Simulate processing without writing output files",
	)

	processCmd.Flags().BoolVar(
		&writeSummary,
		"summary",
		false,
		"Write a processing summary file to the output directory",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// job is one input file and the output path chosen for it.
type job struct {
	input  string
	output string
}

func runProcess(ctx context.Context, c *config.Config, dryRun, summaryFile bool, log *slog.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	summary := utils.ProcessingSummary{
		RunID:     uuid.New().String(),
		StartTime: time.Now(),
	}
	log = log.With("run_id", summary.RunID)

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(c.InputDir, c.OutputDir, c.ArchiveDir)
	fm.UseTimestampSubdirs = c.ArchiveByDate
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	inputFiles, err := fm.DiscoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	fmt.Fprintln(out, "=== CSV to XML Converter ===")

	if len(inputFiles) == 0 {
		fmt.Fprintf(out, "No CSV or XLSX files found in %s.\n", c.InputDir)
		return nil
	}

	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))
	log.Info("Starting batch", "files", len(inputFiles), "max_concurrency", c.MaxConcurrency)

	// =========================================================================
	// STEP 2: NAME OUTPUTS
	// =========================================================================
	// Names are fixed before any conversion starts so that two inputs never
	// write the same file.

	results := make([]converter.Result, len(inputFiles))
	jobs := make([]*job, len(inputFiles))
	claimed := make(map[string]string, len(inputFiles))

	for i, input := range inputFiles {
		output := fm.OutputPathFor(input, c.OutputNameFormat)
		if prev, ok := claimed[output]; ok {
			results[i] = converter.Result{
				FilePath: input,
				Error:    fmt.Errorf("output file %s is already produced by %s", output, filepath.Base(prev)),
			}
			continue
		}
		claimed[output] = input
		jobs[i] = &job{input: input, output: output}
	}

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	options := converterOptions(c, dryRun)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.MaxConcurrency)

	for i, j := range jobs {
		if j == nil {
			continue
		}
		g.Go(func() error {
			conv := converter.New(j.input, j.output, options, log.With("file", j.input))
			results[i] = conv.Run(gctx)
			// Failures are reported per file; only cancellation stops the batch.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: ARCHIVE AND COLLECT RESULTS
	// =========================================================================

	var errorEntries []utils.ErrorLogEntry

	for _, result := range results {
		name := filepath.Base(result.FilePath)

		if !result.Success {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			errorEntries = append(errorEntries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     name,
				ErrorType:    "conversion",
				ErrorMessage: result.Error.Error(),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			continue
		}

		info := utils.ProcessedFileInfo{
			InputFile:   result.FilePath,
			OutputFile:  result.OutputFile,
			RowTag:      result.Stats.RowTag,
			Rows:        result.Stats.Rows,
			Elements:    result.Stats.Elements,
			ProcessTime: result.Stats.ProcessingTime,
		}

		if !dryRun {
			archived, err := fm.ArchiveInputFile(result.FilePath)
			if err != nil {
				// The output is already written; keep the run successful.
				log.Warn("Failed to archive input", "file", result.FilePath, "error", err)
			} else if archived != result.FilePath {
				info.ArchivePath = archived
			}
		}

		summary.SuccessfulFiles++
		summary.TotalRows += result.Stats.Rows
		summary.TotalElements += result.Stats.Elements
		summary.TotalWarnings += result.Stats.Warnings
		summary.ProcessedFiles = append(summary.ProcessedFiles, info)

		if dryRun {
			fmt.Fprintf(out, "  ✓ %s (%d row(s), dry run)\n", name, result.Stats.Rows)
		} else {
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, result.OutputFile)
		}
	}

	summary.TotalFiles = len(inputFiles)
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 5: PRINT SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	log.Info("Finished batch", "successful", summary.SuccessfulFiles, "failed", summary.FailedFiles)

	if !dryRun {
		if summaryFile {
			path, err := utils.WriteSummaryLog(summary, c.OutputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Summary written to %s\n", path)
		}

		logPath, err := utils.WriteErrorLog(errorEntries, c.OutputDir)
		if err != nil {
			return err
		}
		if logPath != "" {
			fmt.Fprintf(out, "\nErrors have been logged to %s\n", logPath)
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}

	return nil
}
