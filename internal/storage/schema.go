// ABOUTME: Schema definitions for the workout_summary and import_runs tables.
// ABOUTME: Every statement is idempotent; nothing here drops or truncates.
package storage

// WorkoutTable is the table the pipeline loads into.
const WorkoutTable = "workout_summary"

// workoutColumns are the insertable columns in canonical order.
const workoutColumns = "workout_date, activity_type, kcal_burned, distance_mi, duration_sec, avg_pace, max_pace, steps, link, workout_id"

const runColumns = "id, source, started_at, finished_at, status, rows_read, dropped_zero_duration, dropped_invalid_date, unresolved_ids, skipped_existing, duplicates_in_batch, rows_inserted, total_rows, error"

// SQLite has no length or type enforcement on declared types, so the CHECK
// constraints hold rows to the same shape Postgres enforces natively.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS workout_summary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		workout_date DATETIME NOT NULL,
		activity_type VARCHAR(64) CHECK (activity_type IS NULL OR length(activity_type) <= 64),
		kcal_burned INTEGER CHECK (kcal_burned IS NULL OR typeof(kcal_burned) = 'integer'),
		distance_mi REAL CHECK (distance_mi IS NULL OR typeof(distance_mi) = 'real'),
		duration_sec REAL CHECK (duration_sec IS NULL OR typeof(duration_sec) = 'real'),
		avg_pace REAL CHECK (avg_pace IS NULL OR typeof(avg_pace) = 'real'),
		max_pace REAL CHECK (max_pace IS NULL OR typeof(max_pace) = 'real'),
		steps INTEGER CHECK (steps IS NULL OR typeof(steps) = 'integer'),
		link TEXT,
		workout_id VARCHAR(32) NOT NULL CHECK (length(workout_id) <= 32)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workout_summary_workout_id ON workout_summary(workout_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workout_summary_date ON workout_summary(workout_date DESC)`,
	`CREATE TABLE IF NOT EXISTS import_runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL,
		rows_read INTEGER NOT NULL DEFAULT 0,
		dropped_zero_duration INTEGER NOT NULL DEFAULT 0,
		dropped_invalid_date INTEGER NOT NULL DEFAULT 0,
		unresolved_ids INTEGER NOT NULL DEFAULT 0,
		skipped_existing INTEGER NOT NULL DEFAULT 0,
		duplicates_in_batch INTEGER NOT NULL DEFAULT 0,
		rows_inserted INTEGER NOT NULL DEFAULT 0,
		total_rows INTEGER NOT NULL DEFAULT 0,
		error TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_import_runs_started ON import_runs(started_at DESC)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS workout_summary (
		id BIGSERIAL PRIMARY KEY,
		workout_date TIMESTAMP NOT NULL,
		activity_type VARCHAR(64),
		kcal_burned INTEGER,
		distance_mi DOUBLE PRECISION,
		duration_sec DOUBLE PRECISION,
		avg_pace DOUBLE PRECISION,
		max_pace DOUBLE PRECISION,
		steps INTEGER,
		link TEXT,
		workout_id VARCHAR(32) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workout_summary_workout_id ON workout_summary (workout_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workout_summary_date ON workout_summary (workout_date DESC)`,
	`CREATE TABLE IF NOT EXISTS import_runs (
		id UUID PRIMARY KEY,
		source TEXT NOT NULL,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ,
		status VARCHAR(16) NOT NULL,
		rows_read INTEGER NOT NULL DEFAULT 0,
		dropped_zero_duration INTEGER NOT NULL DEFAULT 0,
		dropped_invalid_date INTEGER NOT NULL DEFAULT 0,
		unresolved_ids INTEGER NOT NULL DEFAULT 0,
		skipped_existing INTEGER NOT NULL DEFAULT 0,
		duplicates_in_batch INTEGER NOT NULL DEFAULT 0,
		rows_inserted BIGINT NOT NULL DEFAULT 0,
		total_rows BIGINT NOT NULL DEFAULT 0,
		error TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_import_runs_started ON import_runs (started_at DESC)`,
}
