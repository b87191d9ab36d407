package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/unihan-tabular/internal/config"
	"github.com/jonathan/unihan-tabular/internal/db"
	"github.com/jonathan/unihan-tabular/internal/logging"
	"github.com/jonathan/unihan-tabular/internal/server"
	"github.com/jonathan/unihan-tabular/internal/server/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP query API",
	Long: `Starts an HTTP server answering lookups against builds stored in PostgreSQL.

Endpoints:
  GET    /health              Health check
  GET    /fields              Fields per source file
  POST   /decode              Decode one raw value
  GET    /runs                Stored builds
  GET    /runs/{id}           One stored build
  DELETE /runs/{id}           Delete a build (token required)
  GET    /characters/{char}   Stored record of a character or U+XXXX codepoint
  POST   /builds/stream       Run a build, streaming progress as SSE (token required)

Write endpoints require a bearer token from "unihan_tabular token" and are
disabled unless JWT_SECRET is set.`,
	RunE: runServe,
}

var (
	servePort        int
	serveDatabaseURL string
	serveConfigPath  string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Build configuration file used for builds started over HTTP")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := logging.FromContext(ctx)

	var build config.Config
	if serveConfigPath != "" {
		loaded, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		build = *loaded
	}
	if serveDatabaseURL != "" {
		build.DatabaseURL = serveDatabaseURL
	}
	build = build.MergeWithDefaults(config.Defaults())
	if err := build.Validate(); err != nil {
		return err
	}

	var store server.Store
	if build.DatabaseURL != "" {
		database, err := db.Connect(ctx, build.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return err
		}
		store = database
	} else {
		logger.Warn("no database configured, run and character endpoints are unavailable")
	}

	var tokens *server.TokenService
	if tokenCfg, err := config.NewTokenConfig(); err == nil {
		tokens = server.NewTokenService(tokenCfg)
	} else {
		logger.Warn("write endpoints disabled", "reason", err.Error())
	}

	srv := server.New(server.Config{
		Port:      servePort,
		Build:     build,
		RateLimit: ratelimit.LoadConfig(),
		Tokens:    tokens,
	}, store)
	return srv.Start(ctx)
}
