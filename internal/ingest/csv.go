// ABOUTME: Reads workout export CSV files into raw header-keyed records.
// ABOUTME: Validates that every column the cleaner depends on is present.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Export column names as they appear in the CSV header.
const (
	ColDateSubmitted = "Date Submitted"
	ColWorkoutDate   = "Workout Date"
	ColActivityType  = "Activity Type"
	ColCalories      = "Calories Burned (kcal)"
	ColDistance      = "Distance (mi)"
	ColWorkoutTime   = "Workout Time (seconds)"
	ColAvgPace       = "Avg Pace (min/mi)"
	ColMaxPace       = "Max Pace (min/mi)"
	ColAvgSpeed      = "Avg Speed (mi/h)"
	ColMaxSpeed      = "Max Speed (mi/h)"
	ColAvgHeartRate  = "Avg Heart Rate"
	ColSteps         = "Steps"
	ColNotes         = "Notes"
	ColSource        = "Source"
	ColLink          = "Link"
)

// RequiredColumns must be present in the header for a file to be imported.
var RequiredColumns = []string{
	ColWorkoutDate,
	ColActivityType,
	ColCalories,
	ColDistance,
	ColWorkoutTime,
	ColAvgPace,
	ColMaxPace,
	ColSteps,
	ColLink,
}

// IgnoredColumns are exported but carry nothing the workout table stores.
var IgnoredColumns = []string{
	ColDateSubmitted,
	ColAvgSpeed,
	ColMaxSpeed,
	ColAvgHeartRate,
	ColNotes,
	ColSource,
}

// ErrMissingColumns is returned when the header lacks required columns.
var ErrMissingColumns = errors.New("missing required columns")

// RawRecord is one CSV row keyed by header name.
type RawRecord struct {
	Line   int
	Fields map[string]string
}

// Get returns the raw value of a column, or "" when the row does not have it.
func (r RawRecord) Get(column string) string {
	return r.Fields[column]
}

// ReadCSV parses an export with a header row. Ignored columns are dropped here so
// nothing downstream can depend on them.
func ReadCSV(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	if missing := missingColumns(header); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	ignored := make(map[string]bool, len(IgnoredColumns))
	for _, c := range IgnoredColumns {
		ignored[c] = true
	}

	var records []RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		fields := make(map[string]string, len(header))
		for i, col := range header {
			if ignored[col] || i >= len(row) {
				continue
			}
			fields[col] = row[i]
		}
		records = append(records, RawRecord{Line: line, Fields: fields})
	}

	return records, nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}
