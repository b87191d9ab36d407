package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/config"
	"github.com/jonathan/unihan-tabular/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect builds stored in the database",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored builds, newest first",
	RunE:  runRunsList,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete a stored build and its characters",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

var (
	runsDatabaseURL string
	runsLimit       int
)

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func connectRuns(cmd *cobra.Command) (*db.DB, error) {
	databaseURL := runsDatabaseURL
	if databaseURL == "" {
		databaseURL = config.Defaults().DatabaseURL
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL required: use --db-url or set DATABASE_URL")
	}
	database, err := db.Connect(cmd.Context(), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	database, err := connectRuns(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tFORMAT\tRECORDS\tCREATED\tSOURCE")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID, r.Status, r.Format, r.RecordCount, r.CreatedAt.Format("2006-01-02 15:04"), r.Source)
	}
	return w.Flush()
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	runID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run ID: %w", err)
	}

	database, err := connectRuns(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteRun(cmd.Context(), runID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", runID)
	return nil
}
