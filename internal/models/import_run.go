// ABOUTME: ImportRun model recording one execution of the import pipeline.
// ABOUTME: Runs are append-only and keep the counts shown to the operator.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the outcome of an import run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// ImportRun captures the counts of one pipeline execution.
type ImportRun struct {
	ID                  uuid.UUID `json:"id" yaml:"id"`
	Source              string    `json:"source" yaml:"source"`
	StartedAt           time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt          time.Time `json:"finished_at" yaml:"finished_at"`
	Status              RunStatus `json:"status" yaml:"status"`
	RowsRead            int       `json:"rows_read" yaml:"rows_read"`
	DroppedZeroDuration int       `json:"dropped_zero_duration" yaml:"dropped_zero_duration"`
	DroppedInvalidDate  int       `json:"dropped_invalid_date" yaml:"dropped_invalid_date"`
	UnresolvedIDs       int       `json:"unresolved_ids" yaml:"unresolved_ids"`
	SkippedExisting     int       `json:"skipped_existing" yaml:"skipped_existing"`
	DuplicatesInBatch   int       `json:"duplicates_in_batch" yaml:"duplicates_in_batch"`
	RowsInserted        int64     `json:"rows_inserted" yaml:"rows_inserted"`
	TotalRows           int64     `json:"total_rows" yaml:"total_rows"`
	Error               *string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewImportRun starts a run for source at the current time.
func NewImportRun(source string) *ImportRun {
	return &ImportRun{
		ID:        uuid.New(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the run with its outcome.
func (r *ImportRun) Finish(err error) {
	r.FinishedAt = time.Now().UTC()
	if err != nil {
		msg := err.Error()
		r.Error = &msg
		r.Status = RunFailed
		return
	}
	r.Status = RunSucceeded
}

// Duration returns how long the run took.
func (r *ImportRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
