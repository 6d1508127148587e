// ABOUTME: Record cleaner turning raw export rows into canonical workouts.
// ABOUTME: Drops zero-duration and undated rows and reports what it dropped.
package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/harperreed/sweat/internal/models"
)

const invalidDateSampleSize = 5

// missingValues are the spellings exports use for an empty cell.
var missingValues = map[string]bool{
	"":         true,
	"nan":      true,
	"-nan":     true,
	"na":       true,
	"n/a":      true,
	"#n/a":     true,
	"#na":      true,
	"#n/a n/a": true,
	"<na>":     true,
	"null":     true,
	"none":     true,
}

// InvalidDate records a row dropped because its date matched no layout.
type InvalidDate struct {
	Line  int
	Value string
}

// CleanStats reports what a Clean pass kept and dropped.
type CleanStats struct {
	RowsRead            int
	DroppedZeroDuration int
	DroppedInvalidDate  int
	Kept                int

	// LayoutCounts counts kept rows per matched date layout.
	LayoutCounts map[string]int

	// InvalidDates holds the first few undated rows for the operator.
	InvalidDates []InvalidDate
}

// Clean converts raw records into workouts without a workout ID. Order is kept;
// dropped rows simply leave no gap.
func Clean(records []RawRecord) ([]*models.Workout, CleanStats) {
	stats := CleanStats{
		RowsRead:     len(records),
		LayoutCounts: make(map[string]int),
	}

	out := make([]*models.Workout, 0, len(records))
	for _, rec := range records {
		duration := parseFloat(rec.Get(ColWorkoutTime))
		if duration != nil && *duration == 0 {
			stats.DroppedZeroDuration++
			continue
		}

		rawDate := rec.Get(ColWorkoutDate)
		date, layout, ok := ParseDate(rawDate)
		if !ok {
			stats.DroppedInvalidDate++
			if len(stats.InvalidDates) < invalidDateSampleSize {
				stats.InvalidDates = append(stats.InvalidDates, InvalidDate{Line: rec.Line, Value: rawDate})
			}
			continue
		}
		stats.LayoutCounts[layout]++

		out = append(out, &models.Workout{
			WorkoutDate:  date,
			ActivityType: parseString(rec.Get(ColActivityType)),
			KcalBurned:   parseInt(rec.Get(ColCalories)),
			DistanceMi:   parseFloat(rec.Get(ColDistance)),
			DurationSec:  duration,
			AvgPace:      parseFloat(rec.Get(ColAvgPace)),
			MaxPace:      parseFloat(rec.Get(ColMaxPace)),
			Steps:        parseInt(rec.Get(ColSteps)),
			Link:         parseString(rec.Get(ColLink)),
			SourceLine:   rec.Line,
		})
	}

	stats.Kept = len(out)
	return out, stats
}

func isMissing(s string) bool {
	return missingValues[strings.ToLower(s)]
}

// parseFloat returns nil for missing, unparseable, NaN and infinite values.
func parseFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseInt accepts decimal text ("523.0") and rounds to the nearest integer.
func parseInt(raw string) *int64 {
	f := parseFloat(raw)
	if f == nil {
		return nil
	}
	r := math.Round(*f)
	if r > math.MaxInt64 || r < math.MinInt64 {
		return nil
	}
	v := int64(r)
	return &v
}

func parseString(raw string) *string {
	s := strings.TrimSpace(raw)
	if isMissing(s) {
		return nil
	}
	return &s
}
