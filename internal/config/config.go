// =============================================================================
// CSV to XML Converter - Configuration Module
// =============================================================================
//
// This module loads the YAML configuration file. Every setting has a
// default, so the file is optional; command-line flags override whatever the
// file says.
//
// EXAMPLE (config.yaml):
//
//   root_tag: people
//   keep_empty: false
//   output_encoding: utf-8
//   indent: ""                # compact output
//   xml_declaration: true
//   input_dir: ./input
//   output_dir: ./output
//   archive_dir: ./input_archive
//   archive_by_date: true
//   output_name_format: "{name}_{timestamp}.xml"
//   max_concurrency: 4
//   log_level: info
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/csv2xml/internal/charset"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// DOCUMENT SETTINGS
	// =========================================================================

	// RootTag is the document element name.
	// Default: "root"
	RootTag string `yaml:"root_tag"`

	// RowTag is the element name for each row. Empty means: infer it from
	// the headers' shared first segment, falling back to "record".
	RowTag string `yaml:"row_tag"`

	// KeepEmpty writes empty cells as empty elements instead of skipping them.
	// Default: false
	KeepEmpty bool `yaml:"keep_empty"`

	// =========================================================================
	// INPUT / OUTPUT FORMAT
	// =========================================================================

	// InputEncoding is the character encoding of CSV input.
	// Default: "utf-8"
	InputEncoding string `yaml:"input_encoding"`

	// OutputEncoding is the character encoding of the XML output.
	// Default: "utf-8"
	OutputEncoding string `yaml:"output_encoding"`

	// Indent is written once per nesting level. Only spaces and tabs. An
	// explicit empty string writes compact output on a single line.
	// Default: "  "
	Indent string `yaml:"indent"`

	// XMLDeclaration writes the <?xml ...?> declaration.
	// Default: true
	XMLDeclaration bool `yaml:"xml_declaration"`

	// Sheet selects the worksheet of XLSX input. Empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// =========================================================================
	// BATCH SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated XML files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives input files after a successful conversion. Empty
	// leaves inputs in place.
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveByDate files archived inputs under YYYY/MM/DD subdirectories
	// of ArchiveDir.
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// OutputNameFormat names output files. Placeholders:
	//   {name}      - input file name without extension
	//   {uuid}      - a random UUID
	//   {timestamp} - current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - current date (YYYYMMDD)
	//   {time}      - current time (HHMMSS)
	// Default: "{name}.xml"
	OutputNameFormat string `yaml:"output_name_format"`

	// MaxConcurrency is the maximum number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Indent:         "  ",
		XMLDeclaration: true,
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at configPath. When optional is true a
// missing file yields the defaults instead of an error.
func Load(configPath string, optional bool) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration data over the defaults, so keys missing
// from the file keep their default, then validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets default values for options left empty. Indent and
// XMLDeclaration are not touched: empty and false are valid choices for
// them.
func applyDefaults(cfg *Config) {
	if cfg.RootTag == "" {
		cfg.RootTag = "root"
	}
	if cfg.InputEncoding == "" {
		cfg.InputEncoding = "utf-8"
	}
	if cfg.OutputEncoding == "" {
		cfg.OutputEncoding = "utf-8"
	}
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{name}.xml"
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks the settings that defaults cannot fix.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("indent may only contain spaces and tabs, got %q", c.Indent)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := charset.Lookup(c.InputEncoding); err != nil {
		return fmt.Errorf("input_encoding: %w", err)
	}
	if _, err := charset.Lookup(c.OutputEncoding); err != nil {
		return fmt.Errorf("output_encoding: %w", err)
	}
	return nil
}

// Level converts LogLevel to a slog level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return level, nil
}
