// ABOUTME: Store interface for the workout_summary table and import run log.
// ABOUTME: Implemented by SQLite (local profile) and Postgres (remote profile).
package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/harperreed/sweat/internal/models"
)

// Store defines the storage contract for workouts and import runs.
// Callers that receive a Store from someone else must not Close it.
type Store interface {
	// EnsureSchema creates tables and indexes that do not exist yet. It never
	// drops or truncates anything.
	EnsureSchema(ctx context.Context) error

	// Loader operations
	WorkoutKeys(ctx context.Context) ([]models.WorkoutKey, error)
	InsertWorkouts(ctx context.Context, workouts []*models.Workout) (int64, error)

	// Read operations
	CountWorkouts(ctx context.Context) (int64, error)
	ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]*models.Workout, error)
	Query(ctx context.Context, statement string) (*QueryResult, error)

	// Import run log
	RecordRun(ctx context.Context, run *models.ImportRun) error
	ListRuns(ctx context.Context, limit int) ([]*models.ImportRun, error)

	// Lifecycle
	Close() error
}

// WorkoutFilter narrows ListWorkouts. Zero values mean no restriction.
type WorkoutFilter struct {
	ActivityType *string
	Since        *time.Time
	Until        *time.Time
	Limit        int
}

// QueryResult is the tabular result of a read-only query.
type QueryResult struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// ErrNotReadOnly is returned by Query for statements that could modify data.
var ErrNotReadOnly = errors.New("only read-only statements are allowed")

var readOnlyKeywords = map[string]bool{
	"SELECT":  true,
	"WITH":    true,
	"EXPLAIN": true,
	"VALUES":  true,
}

// IsReadOnlyStatement reports whether statement starts with a read-only keyword
// once leading whitespace and comments are skipped. Stores enforce read-only
// access at the connection level as well.
func IsReadOnlyStatement(statement string) bool {
	s := stripLeadingComments(statement)
	end := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	})
	if end == -1 {
		end = len(s)
	}
	return readOnlyKeywords[strings.ToUpper(s[:end])]
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i == -1 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i == -1 {
				return ""
			}
			s = s[i+2:]
		default:
			return s
		}
	}
}
