// ABOUTME: CLI command for the import run log.
// ABOUTME: Shows recent runs with their counts and outcome.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/models"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent import runs",
	Long: `Show recent imports, newest first, with rows read, dropped, skipped, and
inserted. Failed runs show their error below the table.

EXAMPLES:

  sweat history          # Last 10 runs
  sweat history -n 50    # Last 50 runs`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		runs, err := store.ListRuns(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list import runs: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No imports recorded.")
			return nil
		}

		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				r.ID.String()[:8],
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				truncate(r.Source, 24),
				string(r.Status),
				strconv.Itoa(r.RowsRead),
				strconv.Itoa(r.DroppedZeroDuration + r.DroppedInvalidDate),
				strconv.Itoa(r.SkippedExisting + r.DuplicatesInBatch),
				strconv.FormatInt(r.RowsInserted, 10),
				strconv.FormatInt(r.TotalRows, 10),
				r.Duration().Round(time.Millisecond).String(),
			})
		}
		fmt.Println(renderTable(
			[]string{"run", "started", "source", "status", "read", "dropped", "skipped", "inserted", "total", "took"},
			rows,
		))

		for _, r := range runs {
			if r.Status == models.RunFailed && r.Error != nil {
				fmt.Printf("%s %s\n", color.RedString(r.ID.String()[:8]), *r.Error)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "max number of runs")
	rootCmd.AddCommand(historyCmd)
}
