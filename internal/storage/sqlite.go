// ABOUTME: SQLite store for the local profile.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/sweat/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore wraps a SQLite database file. Writes go through a single
// connection; read-only queries use a separate handle opened with query_only.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string

	roOnce sync.Once
	ro     *sql.DB
	roErr  error
}

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, dbPath: dbPath}

	if err := s.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure pragmas: %w", err)
	}

	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, fmt.Errorf("set database permissions: %w", err)
	}

	return s, nil
}

// DataDir returns the default data directory under XDG_DATA_HOME.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "sweat")
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Close closes both database handles.
func (s *SQLiteStore) Close() error {
	var errs []error
	if s.ro != nil {
		errs = append(errs, s.ro.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func (s *SQLiteStore) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// EnsureSchema creates the tables and indexes if they are missing.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return newStoreError("ensure schema", err, nil, -1)
		}
	}
	return nil
}

// WorkoutKeys returns the dedup keys of every stored workout. A store whose schema
// does not exist yet has no keys.
func (s *SQLiteStore) WorkoutKeys(ctx context.Context) ([]models.WorkoutKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT workout_id, workout_date, activity_type, duration_sec, link FROM workout_summary`)
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, newStoreError("read workout keys", err, nil, -1)
	}
	defer rows.Close()

	var keys []models.WorkoutKey
	for rows.Next() {
		var k models.WorkoutKey
		var date string
		var activity, link sql.NullString
		var duration sql.NullFloat64
		if err := rows.Scan(&k.WorkoutID, &date, &activity, &duration, &link); err != nil {
			return nil, fmt.Errorf("scan workout key: %w", err)
		}
		k.WorkoutDate, err = parseStoredTime(date)
		if err != nil {
			return nil, err
		}
		k.Activity = stringPtr(activity)
		k.DurationSec = floatPtr(duration)
		k.Link = stringPtr(link)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("read workout keys", err, nil, -1)
	}
	return keys, nil
}

// InsertWorkouts inserts every workout in one transaction. Any failing row rolls
// back the whole batch.
func (s *SQLiteStore) InsertWorkouts(ctx context.Context, workouts []*models.Workout) (int64, error) {
	if len(workouts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, newStoreError("begin insert", err, workouts, -1)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO workout_summary (`+workoutColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, newStoreError("prepare insert", err, workouts, -1)
	}
	defer stmt.Close()

	var affected int64
	for i, w := range workouts {
		res, err := stmt.ExecContext(ctx,
			w.WorkoutDate.UTC().Format(time.RFC3339),
			nullable(w.ActivityType),
			nullable(w.KcalBurned),
			nullable(w.DistanceMi),
			nullable(w.DurationSec),
			nullable(w.AvgPace),
			nullable(w.MaxPace),
			nullable(w.Steps),
			nullable(w.Link),
			w.WorkoutID,
		)
		if err != nil {
			return 0, newStoreError("insert workouts", err, workouts, i)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, newStoreError("insert workouts", err, workouts, i)
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, newStoreError("commit workouts", err, workouts, -1)
	}
	return affected, nil
}

// CountWorkouts returns the number of stored workouts.
func (s *SQLiteStore) CountWorkouts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workout_summary`).Scan(&n); err != nil {
		return 0, newStoreError("count workouts", err, nil, -1)
	}
	return n, nil
}

// ListWorkouts returns workouts newest first.
func (s *SQLiteStore) ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]*models.Workout, error) {
	query := `SELECT id, ` + workoutColumns + ` FROM workout_summary`
	var where []string
	var args []any

	if filter.ActivityType != nil {
		where = append(where, "LOWER(activity_type) = LOWER(?)")
		args = append(args, *filter.ActivityType)
	}
	if filter.Since != nil {
		where = append(where, "workout_date >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if filter.Until != nil {
		where = append(where, "workout_date <= ?")
		args = append(args, filter.Until.UTC().Format(time.RFC3339))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY workout_date DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newStoreError("list workouts", err, nil, -1)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		w, err := scanSQLiteWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

func scanSQLiteWorkout(rows *sql.Rows) (*models.Workout, error) {
	var w models.Workout
	var date string
	var activity, link sql.NullString
	var kcal, steps sql.NullInt64
	var distance, duration, avgPace, maxPace sql.NullFloat64

	err := rows.Scan(&w.ID, &date, &activity, &kcal, &distance, &duration, &avgPace, &maxPace, &steps, &link, &w.WorkoutID)
	if err != nil {
		return nil, fmt.Errorf("scan workout: %w", err)
	}

	w.WorkoutDate, err = parseStoredTime(date)
	if err != nil {
		return nil, err
	}
	w.ActivityType = stringPtr(activity)
	w.KcalBurned = intPtr(kcal)
	w.DistanceMi = floatPtr(distance)
	w.DurationSec = floatPtr(duration)
	w.AvgPace = floatPtr(avgPace)
	w.MaxPace = floatPtr(maxPace)
	w.Steps = intPtr(steps)
	w.Link = stringPtr(link)
	return &w, nil
}

// Query runs a read-only statement on a handle that is never used for writes.
func (s *SQLiteStore) Query(ctx context.Context, statement string) (*QueryResult, error) {
	if !IsReadOnlyStatement(statement) {
		return nil, ErrNotReadOnly
	}

	ro, err := s.readOnly()
	if err != nil {
		return nil, err
	}

	rows, err := ro.QueryContext(ctx, statement)
	if err != nil {
		return nil, newStoreError("query", err, nil, -1)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, newStoreError("query", err, nil, -1)
	}

	result := &QueryResult{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan query row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("query", err, nil, -1)
	}
	return result, nil
}

func (s *SQLiteStore) readOnly() (*sql.DB, error) {
	s.roOnce.Do(func() {
		ro, err := sql.Open("sqlite", s.dbPath+"?_pragma=query_only(1)&_pragma=busy_timeout(5000)")
		if err != nil {
			s.roErr = fmt.Errorf("open read-only handle: %w", err)
			return
		}
		s.ro = ro
	})
	return s.ro, s.roErr
}

// RecordRun appends an import run to the run log.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *models.ImportRun) error {
	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().Format(runTimeLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(),
		run.Source,
		run.StartedAt.UTC().Format(runTimeLayout),
		finished,
		string(run.Status),
		run.RowsRead,
		run.DroppedZeroDuration,
		run.DroppedInvalidDate,
		run.UnresolvedIDs,
		run.SkippedExisting,
		run.DuplicatesInBatch,
		run.RowsInserted,
		run.TotalRows,
		nullable(run.Error),
	)
	if err != nil {
		return newStoreError("record run", err, nil, -1)
	}
	return nil
}

// ListRuns returns import runs newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	query := `SELECT ` + runColumns + ` FROM import_runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newStoreError("list runs", err, nil, -1)
	}
	defer rows.Close()

	var runs []*models.ImportRun
	for rows.Next() {
		var r models.ImportRun
		var idStr, started, status string
		var finished, errText sql.NullString

		err := rows.Scan(&idStr, &r.Source, &started, &finished, &status,
			&r.RowsRead, &r.DroppedZeroDuration, &r.DroppedInvalidDate, &r.UnresolvedIDs,
			&r.SkippedExisting, &r.DuplicatesInBatch, &r.RowsInserted, &r.TotalRows, &errText)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if r.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
		}
		r.Status = models.RunStatus(status)
		if r.StartedAt, err = parseStoredTime(started); err != nil {
			return nil, err
		}
		if finished.Valid {
			if r.FinishedAt, err = parseStoredTime(finished.String); err != nil {
				return nil, err
			}
		}
		r.Error = stringPtr(errText)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// runTimeLayout keeps sub-second precision at a fixed width so run timestamps
// sort correctly as text.
const runTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// parseStoredTime accepts the RFC 3339 text this store writes. The driver may hand
// DATETIME columns back already formatted with fractional seconds.
func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}
