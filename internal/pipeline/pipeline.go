// ABOUTME: Runner wiring CSV read, clean, enrich, and incremental load into one import.
// ABOUTME: Every real run is recorded in the import run log, failed or not.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/harperreed/sweat/internal/ingest"
	"github.com/harperreed/sweat/internal/models"
	"github.com/harperreed/sweat/internal/observability"
	"github.com/harperreed/sweat/internal/storage"
)

// Runner executes the import pipeline against a borrowed store. A dry run may
// have a nil Store, in which case nothing counts as stored.
type Runner struct {
	Store   storage.Store
	Logger  *slog.Logger
	Metrics *observability.Metrics
	DryRun  bool
}

// Report is what a run did.
type Report struct {
	Run    *models.ImportRun
	Clean  ingest.CleanStats
	Load   *LoadResult
	DryRun bool
}

// Run imports the export read from in. source names the export in the run log.
func (r *Runner) Run(ctx context.Context, source string, in io.Reader) (*Report, error) {
	logger := r.logger().With("source", source)
	run := models.NewImportRun(source)
	report := &Report{Run: run, DryRun: r.DryRun}

	err := r.run(ctx, logger, in, report)
	if r.DryRun {
		if err != nil {
			logFailedRows(logger, err)
		}
		return report, err
	}

	run.Finish(err)
	if recErr := r.Store.RecordRun(ctx, run); recErr != nil {
		logger.Warn("could not record import run", "run_id", run.ID, "error", recErr)
	}
	r.Metrics.ObserveRun(run)

	if err != nil {
		logger.Error("import failed", "run_id", run.ID, "error", err)
		logFailedRows(logger, err)
		return report, err
	}
	logger.Info("import finished",
		"run_id", run.ID,
		"inserted", run.RowsInserted,
		"total_rows", run.TotalRows,
		"duration", run.Duration(),
	)
	return report, nil
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, in io.Reader, report *Report) error {
	run := report.Run

	if !r.DryRun {
		if err := r.Store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	records, err := ingest.ReadCSV(in)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	logger.Debug("read export", "rows", len(records))

	workouts, stats := ingest.Clean(records)
	report.Clean = stats
	run.RowsRead = stats.RowsRead
	run.DroppedZeroDuration = stats.DroppedZeroDuration
	run.DroppedInvalidDate = stats.DroppedInvalidDate
	logger.Info("cleaned export",
		"rows_read", stats.RowsRead,
		"dropped_zero_duration", stats.DroppedZeroDuration,
		"dropped_invalid_date", stats.DroppedInvalidDate,
		"kept", stats.Kept,
	)
	for layout, n := range stats.LayoutCounts {
		logger.Debug("date layout matched", "layout", layout, "rows", n)
	}
	for _, bad := range stats.InvalidDates {
		logger.Warn("unparseable workout date", "line", bad.Line, "value", bad.Value)
	}

	run.UnresolvedIDs = ingest.Enrich(workouts)
	if run.UnresolvedIDs > 0 {
		logger.Warn("workouts without a workout id", "count", run.UnresolvedIDs, "sentinel", models.UnresolvedWorkoutID)
	}

	if r.DryRun {
		var existing []models.WorkoutKey
		if r.Store != nil {
			existing, err = r.Store.WorkoutKeys(ctx)
			if err != nil {
				return fmt.Errorf("read existing workouts: %w", err)
			}
		}
		report.Load = Plan(existing, workouts)
		countLoad(run, report.Load)
		logger.Info("dry run", "would_insert", len(report.Load.Candidates))
		return nil
	}

	load, err := Load(ctx, r.Store, workouts)
	if err != nil {
		return err
	}
	report.Load = load
	countLoad(run, load)
	run.RowsInserted = load.Inserted
	logger.Info("loaded workouts",
		"incoming", load.Incoming,
		"skipped_existing", load.SkippedExisting,
		"duplicates_in_batch", load.DuplicatesInBatch,
		"inserted", load.Inserted,
	)

	total, err := r.Store.CountWorkouts(ctx)
	if err != nil {
		return fmt.Errorf("count workouts: %w", err)
	}
	run.TotalRows = total
	return nil
}

// logFailedRows logs the sample rows of a store error with the CSV line each came
// from.
func logFailedRows(logger *slog.Logger, err error) {
	var storeErr *storage.StoreError
	if !errors.As(err, &storeErr) {
		return
	}
	for _, w := range storeErr.Sample {
		logger.Error("failing row",
			"line", w.SourceLine,
			"workout_id", w.WorkoutID,
			"workout_date", w.WorkoutDate.Format("2006-01-02"),
			"activity_type", derefString(w.ActivityType),
			"link", derefString(w.Link),
		)
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func countLoad(run *models.ImportRun, load *LoadResult) {
	run.SkippedExisting = load.SkippedExisting
	run.DuplicatesInBatch = load.DuplicatesInBatch
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
