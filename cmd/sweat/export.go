// ABOUTME: CLI command for exporting workouts.
// ABOUTME: Supports JSON, YAML, Markdown, and CSV export formats.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportActivity string
	exportSince    string
	exportUntil    string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export workouts",
	Long: `Export stored workouts in various formats.

FORMATS:

  json       Workouts plus the import run log
  yaml       Same document as YAML (human-readable)
  markdown   Markdown table of workouts (for notes/sharing)
  csv        workout_summary columns, one row per workout

OPTIONS:

  --output, -o   Write to file instead of stdout
  --activity     Only include this activity type
  --since        Only include workouts on or after this date (YYYY-MM-DD)
  --until        Only include workouts on or before this date (YYYY-MM-DD)

EXAMPLES:

  sweat export json                       # Export everything as JSON
  sweat export json -o backup.json        # Save to file
  sweat export csv --activity run         # Runs as CSV
  sweat export markdown --since 2024-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown", "csv"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := storage.ParseFormat(args[0])
		if err != nil {
			return err
		}
		filter, err := buildFilter(exportActivity, exportSince, exportUntil)
		if err != nil {
			return err
		}

		store, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		data, err := storage.GatherExport(ctx, store, filter)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var buf bytes.Buffer
		if err := storage.Export(&buf, data, format); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported %d workouts to %s", len(data.Workouts), exportOutput)
			return nil
		}

		_, err = os.Stdout.Write(buf.Bytes())
		return err
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVarP(&exportActivity, "activity", "a", "", "filter by activity type")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include workouts since date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportUntil, "until", "", "only include workouts until date (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd)
}
