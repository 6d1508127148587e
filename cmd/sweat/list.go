// ABOUTME: CLI command for listing stored workouts.
// ABOUTME: Supports filtering by activity and date range and limiting results.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/models"
	"github.com/harperreed/sweat/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listActivity string
	listSince    string
	listUntil    string
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List stored workouts",
	Long: `List workouts from workout_summary, newest first.

OUTPUT FORMAT:

  Each line shows: DATE  ACTIVITY  DURATION  DISTANCE  CALORIES  WORKOUT_ID

  Absent measurements are shown as "-".

EXAMPLES:

  sweat list                           # Last 20 workouts
  sweat list --activity run            # Only runs (case-insensitive)
  sweat list --since 2024-01-01 -n 100 # Up to 100 workouts since January`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		filter, err := buildFilter(listActivity, listSince, listUntil)
		if err != nil {
			return err
		}
		filter.Limit = listLimit

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

		faint := color.New(color.Faint)
		for _, w := range workouts {
			fmt.Printf("%s %s %s %s %s %s\n",
				faint.Sprint(w.WorkoutDate.Format("2006-01-02")),
				padRight(truncate(derefOr(w.ActivityType, "-"), 16), 16),
				padRight(formatDuration(w.DurationSec), 9),
				padRight(formatMiles(w.DistanceMi), 9),
				padRight(formatKcal(w.KcalBurned), 9),
				workoutIDLabel(w, faint))
		}

		return nil
	},
}

// buildFilter turns the shared --activity/--since/--until flags into a filter.
func buildFilter(activity, since, until string) (storage.WorkoutFilter, error) {
	var filter storage.WorkoutFilter
	if activity != "" {
		filter.ActivityType = &activity
	}
	if since != "" {
		t, err := parseTime(since)
		if err != nil {
			return filter, fmt.Errorf("invalid --since: %s (use YYYY-MM-DD)", since)
		}
		filter.Since = &t
	}
	if until != "" {
		t, err := parseTime(until)
		if err != nil {
			return filter, fmt.Errorf("invalid --until: %s (use YYYY-MM-DD)", until)
		}
		filter.Until = &t
	}
	return filter, nil
}

// parseTime parses a user-supplied date or timestamp as UTC.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s", s)
}

func workoutIDLabel(w *models.Workout, faint *color.Color) string {
	if !w.IsResolved() {
		return color.YellowString(w.WorkoutID)
	}
	return faint.Sprint(w.WorkoutID)
}

func formatDuration(sec *float64) string {
	if sec == nil {
		return "-"
	}
	d := time.Duration(*sec * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatMiles(mi *float64) string {
	if mi == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f mi", *mi)
}

func formatKcal(kcal *int64) string {
	if kcal == nil {
		return "-"
	}
	return fmt.Sprintf("%d kcal", *kcal)
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	listCmd.Flags().StringVarP(&listActivity, "activity", "a", "", "filter by activity type")
	listCmd.Flags().StringVar(&listSince, "since", "", "only workouts on or after this date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listUntil, "until", "", "only workouts on or before this date (YYYY-MM-DD)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "max number of results")
	rootCmd.AddCommand(listCmd)
}
