// ABOUTME: CLI commands for viewing and editing the config file.
// ABOUTME: Shows the effective settings with the password redacted.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change settings",
	Long: `View or change the settings in ~/.config/sweat/config.json.

KEYS:

  profile      local (SQLite, default) or remote (PostgreSQL)
  host, port   PostgreSQL server (default localhost:5432)
  user         PostgreSQL user (required for remote)
  password     PostgreSQL password (prefer SWEAT_DB_PASSWORD)
  sslmode      PostgreSQL sslmode
  schema       Database name, or SQLite file name (default sweat)
  data_dir     Directory for the local database
  input_file   Export used when 'sweat import' gets no argument

ENVIRONMENT:

  SWEAT_PROFILE, SWEAT_DB_HOST, SWEAT_DB_PORT, SWEAT_DB_USER,
  SWEAT_DB_PASSWORD, SWEAT_DB_SCHEMA, SWEAT_DB_SSLMODE, SWEAT_DATA_DIR
  override the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		fmt.Println(color.New(color.Faint).Sprintf("profile %s, store %s", cfg.GetProfile(), storeLocation(cfg)))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}

		// Edit the file as stored so environment overrides are not persisted.
		fileCfg, err := config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := fileCfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := fileCfg.Validate(); err != nil {
			return err
		}
		if err := fileCfg.SaveTo(path); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		color.Green("✓ Set %s", args[0])
		return nil
	},
}

func storeLocation(c *config.Config) string {
	if c.GetProfile() == config.ProfileRemote {
		return c.Redacted().PostgresDSN()
	}
	return c.SQLitePath()
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
