package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/grammar"
	"github.com/jonathan/unihan-tabular/internal/manifest"
	"github.com/jonathan/unihan-tabular/internal/observability"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields of each UNIHAN source file",
	Long: `Lists the fields each source file in Unihan.zip contributes.

With --plain, prints one field per line with its source file and value grammar.`,
	RunE: runFields,
}

var (
	fieldsInputFiles []string
	fieldsPlain      bool
)

func init() {
	fieldsCmd.Flags().StringSliceVarP(&fieldsInputFiles, "input-files", "i", nil, "Only list the fields of these source files")
	fieldsCmd.Flags().BoolVar(&fieldsPlain, "plain", false, "Print one tab separated line per field")

	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, _ []string) error {
	m := manifest.Default
	if len(fieldsInputFiles) > 0 {
		sub, err := m.Filter(fieldsInputFiles)
		if err != nil {
			return err
		}
		m = sub
	}

	out := cmd.OutOrStdout()
	if !fieldsPlain {
		observability.NewPrinter(out).PrintFields(m)
		return nil
	}

	for _, file := range m.Files() {
		for _, field := range m[file] {
			kind := "unknown"
			if g, ok := grammar.Lookup(field); ok {
				kind = g.Kind.String()
			}
			_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", file, field, kind)
		}
	}
	return nil
}
