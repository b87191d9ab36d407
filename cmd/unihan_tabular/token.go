package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/config"
	"github.com/jonathan/unihan-tabular/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token SUBJECT",
	Short: "Issue a bearer token for the write endpoints of the query API",
	Long: `Issues an HS256 token signed with JWT_SECRET for SUBJECT. The token expires
after JWT_EXPIRATION_HOURS (default 24).`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewTokenConfig()
	if err != nil {
		return err
	}
	token, err := server.NewTokenService(cfg).GenerateToken(args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
