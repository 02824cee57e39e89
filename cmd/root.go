// =============================================================================
// CSV to XML Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (csv2xml)
//   ├── convertCmd  (csv2xml convert INPUT)
//   ├── processCmd  (csv2xml process)
//   ├── validateCmd (csv2xml validate INPUT)
//   └── versionCmd  (csv2xml version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/csv2xml/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg is the loaded configuration, set before any subcommand runs.
var cfg *config.Config

// logger writes structured logs to stderr.
var logger = slog.Default()

// skipSetup marks commands that run without configuration.
const skipSetup = "skip-setup"

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "csv2xml",
	Short: "CSV to XML Converter - Turn dot-path CSV headers into nested XML",
	Long: `CSV to XML Converter reads semicolon-delimited CSV (or XLSX) files whose
headers are dot-separated element paths and writes one nested XML element per
row.

  person.name;person.address.city      <root>
  Ana;Lyon                        ->     <person>
                                           <name>Ana</name>
                                           <address><city>Lyon</city></address>
                                         </person>
                                       </root>

Example Usage:
  csv2xml convert people.csv -o people.xml   # Convert a single file
  csv2xml validate people.csv                # Check headers without writing
  csv2xml process                            # Convert every file in input_dir
  csv2xml process --config ./my.yaml         # Use a custom configuration file`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// An interrupt cancels the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentPreRunE = setup
}

// setup loads the configuration and builds the logger. The default config
// file may be absent; a file named with --config must exist.
func setup(cmd *cobra.Command, args []string) error {
	if _, ok := cmd.Annotations[skipSetup]; ok {
		return nil
	}

	loaded, err := config.Load(cfgFile, !cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	level, err := loaded.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	cfg = loaded
	logger = newLogger(level)
	logger.Debug("Loaded configuration", "config", cfgFile)

	return nil
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
