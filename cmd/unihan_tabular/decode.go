package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/grammar"
)

var decodeCmd = &cobra.Command{
	Use:   "decode FIELD VALUE",
	Short: "Decode one raw field value and print it as JSON",
	Long: `Decodes a raw UNIHAN value with the grammar of FIELD and prints the
structured result as JSON, for example:

  unihan_tabular decode kTotalStrokes "12 13"
  unihan_tabular decode kHanyuPinyin "10019.020:tiàn"`,
	Args: cobra.ExactArgs(2),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	value, err := grammar.Decode(args[0], args[1])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
