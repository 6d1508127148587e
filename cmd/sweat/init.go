// ABOUTME: CLI command for initializing the workout store.
// ABOUTME: Creates the database if needed and ensures the schema exists.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and workout_summary table",
	Long: `Create the configured database (if missing) and the workout_summary and
import_runs tables. Running it again is harmless.

EXAMPLES:

  sweat init                    # Local SQLite database
  sweat init --profile remote   # PostgreSQL database named by the schema setting`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx, true)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}

		color.Green("✓ Initialized %s store %q", cfg.GetProfile(), cfg.GetSchema())
		if cfg.GetProfile() == config.ProfileLocal {
			fmt.Printf("  %s\n", color.New(color.Faint).Sprint(cfg.SQLitePath()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
