// ABOUTME: Root Cobra command for sweat CLI.
// ABOUTME: Loads config, applies flag overrides, and sets up the structured logger.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/harperreed/sweat/internal/config"
	"github.com/harperreed/sweat/internal/storage"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	profile    string
	dataDir    string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sweat",
	Short:         "Workout export ingestion and query tool",
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	Long: `Sweat loads fitness-tracker workout exports into a workout_summary table
and answers questions about them.

QUICK START:

  $ sweat init                       # Create the database and table
  $ sweat import export.csv          # Import a workout export (safe to re-run)
  $ sweat list --activity run        # See recent runs
  $ sweat summary --period month     # Monthly averages
  $ sweat query "SELECT COUNT(*) FROM workout_summary"

PROFILES:

  local    SQLite at ~/.local/share/sweat/<schema>.db (default)
  remote   PostgreSQL; the schema setting names the database

  $ sweat config set profile remote
  $ sweat config set user postgres
  $ SWEAT_DB_PASSWORD=secret sweat import export.csv

IMPORTS ARE INCREMENTAL:

  Rows whose workout id is already stored are skipped, so importing the same
  export twice inserts nothing the second time. Every import is recorded;
  see 'sweat history'.

MCP INTEGRATION:

  Run 'sweat mcp' to start a read-only Model Context Protocol server:

  {
    "mcpServers": {
      "sweat": { "command": "sweat", "args": ["mcp"] }
    }
  }`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(verbose)
		slog.SetDefault(logger)

		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			return fmt.Errorf("invalid environment: %w", err)
		}

		if profile != "" {
			cfg.Profile = profile
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(debug bool) *slog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "sweat",
	})
	return slog.New(handler)
}

// openStore opens the configured store. Callers must Close it.
func openStore(ctx context.Context, create bool) (storage.Store, error) {
	store, err := cfg.OpenStore(ctx, config.OpenOptions{CreateDatabase: create})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.GetProfile(), err)
	}
	logger.Debug("opened store", "profile", cfg.GetProfile(), "schema", cfg.GetSchema())
	return store, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/sweat/config.json)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "store profile: local or remote")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory for the local profile")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
