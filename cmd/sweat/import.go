// ABOUTME: CLI command for importing a workout export CSV.
// ABOUTME: Runs the clean/enrich/load pipeline and prints the run counts.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/sweat/internal/config"
	"github.com/harperreed/sweat/internal/observability"
	"github.com/harperreed/sweat/internal/pipeline"
	"github.com/harperreed/sweat/internal/storage"
	"github.com/spf13/cobra"
)

var (
	importDryRun      bool
	importMetricsFile string
)

var importCmd = &cobra.Command{
	Use:   "import [csv]",
	Short: "Import a workout export CSV",
	Long: `Import a workout export into workout_summary.

The export is cleaned (zero-duration and undated rows are dropped), each row's
workout id is taken from its link, and only workouts not already stored are
inserted. All inserts happen in one transaction: on any store error nothing is
written and the failing row is reported.

Without an argument the input_file config setting is used.

Imports against the same store must not run at the same time: the check for
stored ids and the insert are separate steps.

OPTIONS:

  --dry-run        Show what would be inserted without writing anything
  --metrics-file   Write Prometheus metrics for the run to this file

EXAMPLES:

  sweat import export.csv
  sweat import export.csv --dry-run
  sweat import --metrics-file /var/lib/node_exporter/sweat.prom`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		path := cfg.InputFile
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no export given (pass a CSV path or config set input_file)")
		}
		path = config.ExpandPath(path)

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open export: %w", err)
		}
		defer func() { _ = f.Close() }()

		var store storage.Store
		store, err = openStore(ctx, !importDryRun)
		switch {
		case err == nil:
			defer func() { _ = store.Close() }()
		case importDryRun && storage.IsMissingDatabase(err):
			logger.Info("database does not exist yet, planning against an empty store", "schema", cfg.GetSchema())
		default:
			return err
		}

		var metrics *observability.Metrics
		if importMetricsFile != "" {
			metrics = observability.NewMetrics()
		}

		runner := &pipeline.Runner{
			Store:   store,
			Logger:  logger,
			Metrics: metrics,
			DryRun:  importDryRun,
		}
		report, runErr := runner.Run(ctx, filepath.Base(path), f)

		if metrics != nil && !importDryRun {
			if err := metrics.WriteTextfile(importMetricsFile); err != nil {
				logger.Warn("could not write metrics file", "path", importMetricsFile, "error", err)
			}
		}

		if runErr != nil {
			return fmt.Errorf("import failed: %w", runErr)
		}

		printReport(report)
		return nil
	},
}

func printReport(report *pipeline.Report) {
	run := report.Run
	faint := color.New(color.Faint)

	if report.DryRun {
		color.Yellow("Dry run: nothing written")
	} else {
		color.Green("✓ Imported %s", run.Source)
	}

	fmt.Printf("  %s %d\n", padRight("rows read", 22), run.RowsRead)
	fmt.Printf("  %s %d\n", padRight("dropped zero duration", 22), run.DroppedZeroDuration)
	fmt.Printf("  %s %d\n", padRight("dropped invalid date", 22), run.DroppedInvalidDate)
	fmt.Printf("  %s %d\n", padRight("unresolved ids", 22), run.UnresolvedIDs)
	fmt.Printf("  %s %d\n", padRight("skipped existing", 22), run.SkippedExisting)
	fmt.Printf("  %s %d\n", padRight("duplicates in batch", 22), run.DuplicatesInBatch)

	if report.DryRun {
		if report.Load != nil {
			fmt.Printf("  %s %d\n", padRight("would insert", 22), len(report.Load.Candidates))
		}
		return
	}

	fmt.Printf("  %s %d\n", padRight("inserted", 22), run.RowsInserted)
	fmt.Printf("  %s %d\n", padRight("total rows", 22), run.TotalRows)
	fmt.Printf("  %s\n", faint.Sprintf("run %s in %s", run.ID.String()[:8], run.Duration().Round(time.Millisecond)))
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report what would be inserted without writing")
	importCmd.Flags().StringVar(&importMetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	rootCmd.AddCommand(importCmd)
}
