// ABOUTME: CLI command for workout statistics.
// ABOUTME: Prints the overall overview and per-period averages.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/summary"
	"github.com/spf13/cobra"
)

var (
	summaryPeriod   string
	summaryActivity string
	summarySince    string
	summaryUntil    string
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"stats"},
	Short:   "Show workout statistics",
	Long: `Show total workouts and average distance, duration, and calories, followed
by the same figures grouped by period. Absent measurements are left out of the
averages. Weeks start on Monday.

PERIODS:

  day, week (default), month, year

EXAMPLES:

  sweat summary                          # Weekly breakdown of everything
  sweat summary --period month           # Monthly breakdown
  sweat summary --activity run --since 2024-01-01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		period, err := summary.ParsePeriod(summaryPeriod)
		if err != nil {
			return err
		}
		filter, err := buildFilter(summaryActivity, summarySince, summaryUntil)
		if err != nil {
			return err
		}

		store, err := openStore(ctx, false)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		workouts, err := store.ListWorkouts(ctx, filter)
		if err != nil {
			return fmt.Errorf("failed to list workouts: %w", err)
		}

		if len(workouts) == 0 {
			fmt.Println("No workouts found.")
			return nil
		}

		stats := summary.Overview(workouts)
		bold := color.New(color.Bold)
		_, _ = bold.Println("Overview")
		fmt.Printf("  %s %d\n", padRight("workouts", 14), stats.TotalWorkouts)
		fmt.Printf("  %s %s\n", padRight("avg distance", 14), formatOptional(stats.AvgDistance))
		fmt.Printf("  %s %s\n", padRight("avg duration", 14), formatOptional(stats.AvgDuration))
		fmt.Printf("  %s %s\n", padRight("avg calories", 14), formatOptional(stats.AvgCalories))
		fmt.Printf("  %s %s\n", padRight("fastest pace", 14), formatOptional(stats.FastestPace))
		fmt.Println()

		buckets := summary.Aggregate(workouts, period, nil, nil)
		rows := make([][]string, 0, len(buckets))
		for _, b := range buckets {
			rows = append(rows, []string{
				b.Start.Format("2006-01-02"),
				strconv.Itoa(b.TotalWorkouts),
				formatOptional(b.AvgDistance),
				formatOptional(b.AvgDuration),
				formatOptional(b.AvgCalories),
				formatOptional(b.FastestSpeed),
			})
		}
		fmt.Println(renderTable(
			[]string{string(period), "workouts", "avg distance", "avg duration", "avg calories", "fastest"},
			rows,
		))
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryPeriod, "period", "p", "week", "aggregation period: day, week, month, year")
	summaryCmd.Flags().StringVarP(&summaryActivity, "activity", "a", "", "filter by activity type")
	summaryCmd.Flags().StringVar(&summarySince, "since", "", "only workouts on or after this date (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&summaryUntil, "until", "", "only workouts on or before this date (YYYY-MM-DD)")
	rootCmd.AddCommand(summaryCmd)
}
