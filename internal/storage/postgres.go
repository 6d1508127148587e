// ABOUTME: Postgres store for the remote profile.
// ABOUTME: Uses a pgxpool; batch inserts are pipelined inside one transaction.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/sweat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgInvalidCatalogName = "3D000"
	pgDuplicateDatabase  = "42P04"
)

// PostgresOptions controls how OpenPostgres connects.
type PostgresOptions struct {
	// CreateDatabase creates the target database through the postgres
	// maintenance database when it does not exist.
	CreateDatabase bool
}

// PostgresStore implements Store on a Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// OpenPostgres connects to the database named in dsn.
func OpenPostgres(ctx context.Context, dsn string, opts PostgresOptions) (*PostgresStore, error) {
	pool, err := connectPool(ctx, dsn)
	if err == nil {
		return &PostgresStore{pool: pool}, nil
	}

	var pgErr *pgconn.PgError
	if !opts.CreateDatabase || !errors.As(err, &pgErr) || pgErr.Code != pgInvalidCatalogName {
		return nil, newStoreError("connect", err, nil, -1)
	}

	if err := createDatabase(ctx, dsn); err != nil {
		return nil, err
	}

	pool, err = connectPool(ctx, dsn)
	if err != nil {
		return nil, newStoreError("connect", err, nil, -1)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStore wraps an existing pool. The store owns the pool afterwards.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func connectPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func createDatabase(ctx context.Context, dsn string) error {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	name := cfg.Database
	cfg.Database = "postgres"

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return newStoreError("connect maintenance database", err, nil, -1)
	}
	defer func() { _ = conn.Close(ctx) }()

	_, err = conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize())
	var pgErr *pgconn.PgError
	if err != nil && !(errors.As(err, &pgErr) && pgErr.Code == pgDuplicateDatabase) {
		return newStoreError("create database", err, nil, -1)
	}
	return nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates the tables and indexes if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return newStoreError("ensure schema", err, nil, -1)
		}
	}
	return nil
}

// WorkoutKeys returns the dedup keys of every stored workout. A store whose schema
// does not exist yet has no keys.
func (s *PostgresStore) WorkoutKeys(ctx context.Context) ([]models.WorkoutKey, error) {
	rows, err := s.pool.Query(ctx,
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
		if err := rows.Scan(&k.WorkoutID, &k.WorkoutDate, &k.Activity, &k.DurationSec, &k.Link); err != nil {
			return nil, fmt.Errorf("scan workout key: %w", err)
		}
		k.WorkoutDate = k.WorkoutDate.UTC()
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("read workout keys", err, nil, -1)
	}
	return keys, nil
}

// InsertWorkouts sends every row as one batch inside a transaction. The first
// failing row aborts the transaction and nothing is committed.
func (s *PostgresStore) InsertWorkouts(ctx context.Context, workouts []*models.Workout) (int64, error) {
	if len(workouts) == 0 {
		return 0, nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, newStoreError("begin insert", err, workouts, -1)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insert = `INSERT INTO workout_summary (` + workoutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	batch := &pgx.Batch{}
	for _, w := range workouts {
		batch.Queue(insert,
			w.WorkoutDate.UTC(),
			w.ActivityType,
			w.KcalBurned,
			w.DistanceMi,
			w.DurationSec,
			w.AvgPace,
			w.MaxPace,
			w.Steps,
			w.Link,
			w.WorkoutID,
		)
	}

	br := tx.SendBatch(ctx, batch)
	var affected int64
	for i := range workouts {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, newStoreError("insert workouts", err, workouts, i)
		}
		affected += tag.RowsAffected()
	}
	if err := br.Close(); err != nil {
		return 0, newStoreError("insert workouts", err, workouts, -1)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, newStoreError("commit workouts", err, workouts, -1)
	}
	return affected, nil
}

// CountWorkouts returns the number of stored workouts.
func (s *PostgresStore) CountWorkouts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workout_summary`).Scan(&n); err != nil {
		return 0, newStoreError("count workouts", err, nil, -1)
	}
	return n, nil
}

// ListWorkouts returns workouts newest first.
func (s *PostgresStore) ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]*models.Workout, error) {
	query := `SELECT id, ` + workoutColumns + ` FROM workout_summary`
	var where []string
	var args []any

	if filter.ActivityType != nil {
		args = append(args, *filter.ActivityType)
		where = append(where, fmt.Sprintf("LOWER(activity_type) = LOWER($%d)", len(args)))
	}
	if filter.Since != nil {
		args = append(args, filter.Since.UTC())
		where = append(where, fmt.Sprintf("workout_date >= $%d", len(args)))
	}
	if filter.Until != nil {
		args = append(args, filter.Until.UTC())
		where = append(where, fmt.Sprintf("workout_date <= $%d", len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY workout_date DESC, id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, newStoreError("list workouts", err, nil, -1)
	}
	defer rows.Close()

	var workouts []*models.Workout
	for rows.Next() {
		var w models.Workout
		err := rows.Scan(&w.ID, &w.WorkoutDate, &w.ActivityType, &w.KcalBurned, &w.DistanceMi,
			&w.DurationSec, &w.AvgPace, &w.MaxPace, &w.Steps, &w.Link, &w.WorkoutID)
		if err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		w.WorkoutDate = w.WorkoutDate.UTC()
		workouts = append(workouts, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("list workouts", err, nil, -1)
	}
	return workouts, nil
}

// Query runs a read-only statement inside a READ ONLY transaction on its own
// connection, so a statement that slips past the keyword check still cannot write.
func (s *PostgresStore) Query(ctx context.Context, statement string) (*QueryResult, error) {
	if !IsReadOnlyStatement(statement) {
		return nil, ErrNotReadOnly
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, newStoreError("query", err, nil, -1)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, newStoreError("query", err, nil, -1)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, statement)
	if err != nil {
		return nil, newStoreError("query", err, nil, -1)
	}
	defer rows.Close()

	result := &QueryResult{}
	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read query row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("query", err, nil, -1)
	}
	return result, nil
}

// RecordRun appends an import run to the run log.
func (s *PostgresStore) RecordRun(ctx context.Context, run *models.ImportRun) error {
	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO import_runs (`+runColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID.String(),
		run.Source,
		run.StartedAt.UTC(),
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
		run.Error,
	)
	if err != nil {
		return newStoreError("record run", err, nil, -1)
	}
	return nil
}

// ListRuns returns import runs newest first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	query := `SELECT ` + runColumns + ` FROM import_runs ORDER BY started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, newStoreError("list runs", err, nil, -1)
	}
	defer rows.Close()

	var runs []*models.ImportRun
	for rows.Next() {
		var r models.ImportRun
		var idStr, status string
		var finished *time.Time

		err := rows.Scan(&idStr, &r.Source, &r.StartedAt, &finished, &status,
			&r.RowsRead, &r.DroppedZeroDuration, &r.DroppedInvalidDate, &r.UnresolvedIDs,
			&r.SkippedExisting, &r.DuplicatesInBatch, &r.RowsInserted, &r.TotalRows, &r.Error)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", idStr, err)
		}
		r.Status = models.RunStatus(status)
		r.StartedAt = r.StartedAt.UTC()
		if finished != nil {
			r.FinishedAt = finished.UTC()
		}
		runs = append(runs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, newStoreError("list runs", err, nil, -1)
	}
	return runs, nil
}
