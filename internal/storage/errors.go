// ABOUTME: StoreError carrying store-native diagnostics for failed operations.
// ABOUTME: Batch failures include a bounded sample of the rows involved.
package storage

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/sweat/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

const errorSampleSize = 3

const (
	pgUndefinedTable  = "42P01"
	sqliteNoSuchTable = "no such table"
)

// StoreError wraps a failed store operation with the store's own error code and
// message. For batch operations Row is the index of the offending row, or -1 when
// the store did not say which row failed.
type StoreError struct {
	Op      string
	Code    string
	Message string
	Row     int
	Sample  []*models.Workout
	Err     error
}

func (e *StoreError) Error() string {
	msg := e.Op
	if e.Code != "" {
		msg += fmt.Sprintf(": code %s", e.Code)
	}
	msg += ": " + e.Message
	if e.Row >= 0 {
		if len(e.Sample) > 0 && e.Sample[0].SourceLine > 0 {
			msg += fmt.Sprintf(" (csv line %d)", e.Sample[0].SourceLine)
		} else {
			msg += fmt.Sprintf(" (batch row %d)", e.Row)
		}
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// newStoreError builds a StoreError for op. When batch is non-empty the sample
// starts at row, or at the head of the batch when row is unknown.
func newStoreError(op string, err error, batch []*models.Workout, row int) *StoreError {
	code, msg := nativeError(err)
	se := &StoreError{
		Op:      op,
		Code:    code,
		Message: msg,
		Row:     row,
		Err:     err,
	}
	if len(batch) > 0 {
		start := row
		if start < 0 || start >= len(batch) {
			start = 0
		}
		end := min(start+errorSampleSize, len(batch))
		se.Sample = batch[start:end]
	}
	return se
}

// nativeError extracts the driver's error code and message.
func nativeError(err error) (code, message string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return strconv.Itoa(sqliteErr.Code()), sqliteErr.Error()
	}
	return "", err.Error()
}

// IsMissingDatabase reports whether err means the remote database does not exist.
func IsMissingDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidCatalogName
}

// isMissingTable reports whether err means a queried table does not exist yet.
func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return strings.Contains(sqliteErr.Error(), sqliteNoSuchTable)
	}
	return false
}
