package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/config"
	"github.com/jonathan/unihan-tabular/internal/db"
	"github.com/jonathan/unihan-tabular/internal/normalize"
	"github.com/jonathan/unihan-tabular/internal/observability"
	"github.com/jonathan/unihan-tabular/internal/pipeline"
	"github.com/jonathan/unihan-tabular/internal/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup CHAR|CODEPOINT",
	Short: "Show the UNIHAN record of one character",
	Long: `Shows the record of a character given either as the character itself or as a
U+XXXX codepoint.

By default the record is built from Unihan.zip. With --from-db it is read from
the latest completed run stored in the database (or the run given by --run-id).`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

var (
	lookupSource      string
	lookupZipPath     string
	lookupWorkDir     string
	lookupFields      []string
	lookupInputFiles  []string
	lookupNoExpand    bool
	lookupJSON        bool
	lookupFromDB      bool
	lookupDatabaseURL string
	lookupRunID       string
)

func init() {
	lookupCmd.Flags().StringVarP(&lookupSource, "source", "s", "", "URL or path of Unihan.zip")
	lookupCmd.Flags().StringVarP(&lookupZipPath, "zip-path", "z", "", "Path Unihan.zip is downloaded to")
	lookupCmd.Flags().StringVarP(&lookupWorkDir, "work-dir", "w", "", "Directory the source files are extracted to")
	lookupCmd.Flags().StringSliceVarP(&lookupFields, "fields", "f", nil, "Fields to show (default: all)")
	lookupCmd.Flags().StringSliceVarP(&lookupInputFiles, "input-files", "i", nil, "Source files to read")
	lookupCmd.Flags().BoolVar(&lookupNoExpand, "no-expand", false, "Show raw string values")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Print the record as JSON")
	lookupCmd.Flags().BoolVar(&lookupFromDB, "from-db", false, "Read the record from the database instead of Unihan.zip")
	lookupCmd.Flags().StringVar(&lookupDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	lookupCmd.Flags().StringVar(&lookupRunID, "run-id", "", "Stored run to read from (default: latest completed run)")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	codepoint, err := normalize.ResolveCharacter(args[0])
	if err != nil {
		return err
	}

	if lookupFromDB {
		return lookupStored(cmd, codepoint)
	}

	cfg := config.Config{
		Source:     lookupSource,
		ZipPath:    lookupZipPath,
		WorkDir:    lookupWorkDir,
		Format:     "json",
		Fields:     lookupFields,
		InputFiles: lookupInputFiles,
		NoExpand:   lookupNoExpand,
	}
	defaults := config.Defaults()
	// Lookups never write output or store
	defaults.Destination = ""
	defaults.DatabaseURL = ""
	cfg = cfg.MergeWithDefaults(defaults)
	if err := cfg.Validate(); err != nil {
		return err
	}

	result, err := pipeline.Run(cmd.Context(), pipeline.RunOptions{Config: cfg, Out: cmd.OutOrStdout()})
	if err != nil {
		return err
	}

	for i := range result.Records {
		if result.Records[i].Codepoint == codepoint {
			return printLookup(cmd, &result.Records[i])
		}
	}
	return fmt.Errorf("no UNIHAN data for %s", codepoint)
}

func lookupStored(cmd *cobra.Command, codepoint string) error {
	databaseURL := lookupDatabaseURL
	if databaseURL == "" {
		databaseURL = config.Defaults().DatabaseURL
	}
	if databaseURL == "" {
		return fmt.Errorf("--from-db requires --db-url or DATABASE_URL")
	}

	runID := uuid.Nil
	if lookupRunID != "" {
		parsed, err := uuid.Parse(lookupRunID)
		if err != nil {
			return fmt.Errorf("invalid run ID: %w", err)
		}
		runID = parsed
	}

	database, err := db.Connect(cmd.Context(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	character, err := database.GetCharacter(cmd.Context(), runID, codepoint)
	if err != nil {
		return err
	}
	if character == nil {
		return fmt.Errorf("no stored data for %s", codepoint)
	}

	if lookupJSON {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(character.Record))
		return err
	}

	var values map[string]any
	if err := json.Unmarshal(character.Record, &values); err != nil {
		return fmt.Errorf("failed to decode stored record: %w", err)
	}
	delete(values, types.FieldCodepoint)
	delete(values, types.FieldChar)
	fields := slices.Sorted(maps.Keys(values))
	rec := types.NewRecord(character.Codepoint, character.Char, fields)
	for _, key := range fields {
		rec.Set(key, values[key])
	}
	return printLookup(cmd, &rec)
}

func printLookup(cmd *cobra.Command, rec *types.Record) error {
	if lookupJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRecord(rec)
	return nil
}
