// ABOUTME: Tests for CSV reading, cleaning, and enrichment.
// ABOUTME: Uses the testdata export fixture plus inline CSV edge cases.
package ingest

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/sweat/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Date Submitted,Workout Date,Activity Type,Calories Burned (kcal),Distance (mi),Workout Time (seconds),Avg Pace (min/mi),Max Pace (min/mi),Avg Speed (mi/h),Max Speed (mi/h),Avg Heart Rate,Steps,Notes,Source,Link\n"

func loadFixture(t *testing.T) []RawRecord {
	t.Helper()
	f, err := os.Open("testdata/export.csv")
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	records, err := ReadCSV(f)
	require.NoError(t, err)
	return records
}

func TestReadCSVDropsIgnoredColumns(t *testing.T) {
	records := loadFixture(t)
	require.Len(t, records, 10)

	first := records[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "Aug. 1, 2024", first.Get(ColWorkoutDate))
	for _, col := range IgnoredColumns {
		_, present := first.Fields[col]
		assert.False(t, present, "column %q should be dropped", col)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Workout Date,Activity Type\nAug. 1, 2024,Run\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), ColLink)
	assert.Contains(t, err.Error(), ColWorkoutTime)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestReadCSVStripsBOM(t *testing.T) {
	records, err := ReadCSV(strings.NewReader("\ufeff" + header + ",2024-08-01,Run,1,1,1,1,1,,,,1,,,http://x/workout/1\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-08-01", records[0].Get(ColWorkoutDate))
}

func TestCleanFixtureScenario(t *testing.T) {
	workouts, stats := Clean(loadFixture(t))

	assert.Equal(t, 10, stats.RowsRead)
	assert.Equal(t, 2, stats.DroppedZeroDuration)
	assert.Equal(t, 1, stats.DroppedInvalidDate)
	assert.Equal(t, 7, stats.Kept)
	require.Len(t, workouts, 7)

	require.Len(t, stats.InvalidDates, 1)
	assert.Equal(t, InvalidDate{Line: 8, Value: "Sometime last week"}, stats.InvalidDates[0])

	assert.Equal(t, 3, stats.LayoutCounts["Jan. 2, 2006"])
	assert.Equal(t, 1, stats.LayoutCounts["2-1-06"])

	lines := make([]int, 0, len(workouts))
	for _, w := range workouts {
		lines = append(lines, w.SourceLine)
	}
	assert.Equal(t, []int{2, 3, 5, 6, 7, 10, 11}, lines, "order must follow the export")
}

func TestCleanNeverKeepsZeroDuration(t *testing.T) {
	workouts, _ := Clean(loadFixture(t))
	for _, w := range workouts {
		if w.DurationSec != nil {
			assert.NotZero(t, *w.DurationSec, "line %d", w.SourceLine)
		}
	}
}

func TestCleanNoNaNOrInf(t *testing.T) {
	workouts, _ := Clean(loadFixture(t))
	for _, w := range workouts {
		for _, f := range []*float64{w.DistanceMi, w.DurationSec, w.AvgPace, w.MaxPace} {
			if f == nil {
				continue
			}
			assert.False(t, math.IsNaN(*f) || math.IsInf(*f, 0), "line %d holds %v", w.SourceLine, *f)
		}
	}
}

func TestCleanCanonicalFields(t *testing.T) {
	workouts, _ := Clean(loadFixture(t))

	first := workouts[0]
	assert.True(t, first.WorkoutDate.Equal(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, first.ActivityType)
	assert.Equal(t, "Run", *first.ActivityType)
	require.NotNil(t, first.KcalBurned)
	assert.Equal(t, int64(412), *first.KcalBurned)
	require.NotNil(t, first.DistanceMi)
	assert.InDelta(t, 3.12, *first.DistanceMi, 1e-9)
	require.NotNil(t, first.Steps)
	assert.Equal(t, int64(4120), *first.Steps)

	walk := workouts[1]
	require.NotNil(t, walk.KcalBurned)
	assert.Equal(t, int64(150), *walk.KcalBurned, "decimal integer text rounds")

	nanCalories := workouts[4]
	assert.Nil(t, nanCalories.KcalBurned)
	assert.Nil(t, nanCalories.AvgPace)

	blank := workouts[5]
	assert.Nil(t, blank.ActivityType, "empty string becomes absent")
	assert.Nil(t, blank.DistanceMi)
	assert.Nil(t, blank.AvgPace, "inf becomes absent")
	assert.Nil(t, blank.Link)
}

func TestCleanKeepsMissingDuration(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(header + ",2024-08-01,Run,100,1,,,,,,,,,,http://x/workout/1\n"))
	require.NoError(t, err)

	workouts, stats := Clean(records)
	require.Len(t, workouts, 1)
	assert.Nil(t, workouts[0].DurationSec)
	assert.Zero(t, stats.DroppedZeroDuration)
}

func TestCleanInvalidDateSampleIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	for i := 0; i < 8; i++ {
		b.WriteString(",not a date,Run,1,1,60,,,,,,,,,http://x/workout/1\n")
	}
	records, err := ReadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)

	workouts, stats := Clean(records)
	assert.Empty(t, workouts)
	assert.Equal(t, 8, stats.DroppedInvalidDate)
	assert.Len(t, stats.InvalidDates, invalidDateSampleSize)
}

func TestExtractWorkoutID(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"http://host/workout/12345", "12345"},
		{"http://www.mapmyfitness.com/workout/7845123001", "7845123001"},
		{"https://host/workout/42/details", "42"},
		{"http://host/routes/view/123", models.UnresolvedWorkoutID},
		{"http://host/workout/abc", models.UnresolvedWorkoutID},
		{"", models.UnresolvedWorkoutID},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractWorkoutID(tt.link), "link %q", tt.link)
	}
}

func TestEnrich(t *testing.T) {
	workouts, _ := Clean(loadFixture(t))
	unresolved := Enrich(workouts)

	assert.Equal(t, 2, unresolved)
	assert.Equal(t, "7845123001", workouts[0].WorkoutID)
	for _, w := range workouts {
		assert.NotEmpty(t, w.WorkoutID)
	}
	assert.Equal(t, models.UnresolvedWorkoutID, workouts[5].WorkoutID)
	assert.Equal(t, models.UnresolvedWorkoutID, workouts[6].WorkoutID)
}
