package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/config"
	"github.com/jonathan/unihan-tabular/internal/logging"
	"github.com/jonathan/unihan-tabular/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Download, normalize and export the UNIHAN database",
	Long: `Downloads Unihan.zip (unless a valid copy is cached), extracts the source files
holding the selected fields, folds them into one record per character and writes
the records to the destination.

Values are decoded into structured data for json and yaml output unless
--no-expand is given; csv output always holds the raw values.

Configuration can be loaded from a JSON or YAML file using --config. Command-line
arguments override config file values.`,
	RunE: runBuild,
}

var (
	buildConfigPath     string
	buildSource         string
	buildUnicodeVersion string
	buildZipPath        string
	buildWorkDir        string
	buildDestination    string
	buildFormat         string
	buildFields         []string
	buildInputFiles     []string
	buildNoExpand       bool
	buildNoPrune        bool
	buildNFC            bool
	buildWorkers        int
	buildOnDecodeError  string
	buildDatabaseURL    string
	buildValidateOutput bool
	buildVerbose        bool
)

func init() {
	// Config file flag (processed first)
	buildCmd.Flags().StringVar(&buildConfigPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")

	buildCmd.Flags().StringVarP(&buildSource, "source", "s", "", "URL or path of Unihan.zip (default "+config.DefaultSource+")")
	buildCmd.Flags().StringVar(&buildUnicodeVersion, "unicode-version", "", "Build from the Unihan.zip of a Unicode version such as 15.1.0 (mutually exclusive with --source)")
	buildCmd.Flags().StringVarP(&buildZipPath, "zip-path", "z", "", "Path Unihan.zip is downloaded to")
	buildCmd.Flags().StringVarP(&buildWorkDir, "work-dir", "w", "", "Directory the source files are extracted to")
	buildCmd.Flags().StringVarP(&buildDestination, "destination", "d", "", "Output file; {ext} is replaced by the format")
	buildCmd.Flags().StringVarP(&buildFormat, "format", "F", "", "Output format: csv, json or yaml (default csv)")
	buildCmd.Flags().StringSliceVarP(&buildFields, "fields", "f", nil, "Fields to export (default: all fields of the input files)")
	buildCmd.Flags().StringSliceVarP(&buildInputFiles, "input-files", "i", nil, "Source files to read (default: the files holding the fields)")
	buildCmd.Flags().BoolVar(&buildNoExpand, "no-expand", false, "Keep raw string values instead of decoding them")
	buildCmd.Flags().BoolVar(&buildNoPrune, "no-prune", false, "Keep empty values after decoding")
	buildCmd.Flags().BoolVar(&buildNFC, "nfc", false, "Store values in Unicode normalization form C instead of as read")
	buildCmd.Flags().IntVar(&buildWorkers, "workers", 0, "Decoding workers (default: number of CPUs)")
	buildCmd.Flags().StringVar(&buildOnDecodeError, "on-decode-error", "", "What to do with undecodable values: abort or skip (default abort)")
	buildCmd.Flags().StringVar(&buildDatabaseURL, "db-url", "", "PostgreSQL connection URL to store the records in (optional, defaults to DATABASE_URL env var)")
	buildCmd.Flags().BoolVar(&buildValidateOutput, "validate-output", false, "Check json output against the record schema")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Print a build summary")

	rootCmd.AddCommand(buildCmd)
}

// buildConfig merges the config file, explicitly set flags and defaults,
// in that order of precedence from lowest to highest: defaults < file < flags.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if buildConfigPath != "" {
		loadedCfg, err := config.LoadConfig(buildConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = buildSource
	}
	if flags.Changed("unicode-version") {
		cfg.UnicodeVersion = buildUnicodeVersion
	}
	if flags.Changed("zip-path") {
		cfg.ZipPath = buildZipPath
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = buildWorkDir
	}
	if flags.Changed("destination") {
		cfg.Destination = buildDestination
	}
	if flags.Changed("format") {
		cfg.Format = buildFormat
	}
	if flags.Changed("fields") {
		cfg.Fields = buildFields
	}
	if flags.Changed("input-files") {
		cfg.InputFiles = buildInputFiles
	}
	if flags.Changed("no-expand") {
		cfg.NoExpand = buildNoExpand
	}
	if flags.Changed("no-prune") {
		cfg.NoPrune = buildNoPrune
	}
	if flags.Changed("nfc") {
		cfg.NFC = buildNFC
	}
	if flags.Changed("workers") {
		cfg.Workers = buildWorkers
	}
	if flags.Changed("on-decode-error") {
		cfg.OnDecodeError = buildOnDecodeError
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = buildDatabaseURL
	}
	if flags.Changed("validate-output") {
		cfg.ValidateOutput = buildValidateOutput
	}
	if flags.Changed("verbose") {
		cfg.Verbose = buildVerbose
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = logFormat
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())

	// Step 4: Validate the merged configuration
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

	result, err := pipeline.Run(cmd.Context(), pipeline.RunOptions{
		Config: cfg,
		Out:    cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(result.Records), result.Output)
	return nil
}
