package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/fetch"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the Unicode versions Unihan.zip can be built from",
	RunE:  runVersions,
}

var (
	versionsIndexURL string
	versionsLatest   bool
)

func init() {
	versionsCmd.Flags().StringVar(&versionsIndexURL, "index-url", fetch.PublicIndexURL, "Directory index listing the published versions")
	versionsCmd.Flags().BoolVar(&versionsLatest, "latest", false, "Only print the newest version")

	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, _ []string) error {
	versions, err := fetch.ListVersions(cmd.Context(), versionsIndexURL, nil)
	if err != nil {
		return fmt.Errorf("failed to list versions: %w", err)
	}
	if len(versions) == 0 {
		return fmt.Errorf("no versions found at %s", versionsIndexURL)
	}
	if versionsLatest {
		versions = versions[:1]
	}

	out := cmd.OutOrStdout()
	for _, v := range versions {
		_, _ = fmt.Fprintln(out, v)
	}
	return nil
}
