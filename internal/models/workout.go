// ABOUTME: Workout model in the canonical workout_summary shape.
// ABOUTME: Optional measurements are pointers; nil means absent.
package models

import (
	"fmt"
	"strconv"
	"time"
)

// UnresolvedWorkoutID marks a workout whose link carried no numeric workout segment.
// Rows sharing it are never treated as duplicates of each other.
const UnresolvedWorkoutID = "unresolved"

// Workout represents one cleaned workout export row.
type Workout struct {
	ID           int64     `json:"id,omitempty" yaml:"id,omitempty"`
	WorkoutID    string    `json:"workout_id" yaml:"workout_id"`
	WorkoutDate  time.Time `json:"workout_date" yaml:"workout_date"`
	ActivityType *string   `json:"activity_type,omitempty" yaml:"activity_type,omitempty"`
	KcalBurned   *int64    `json:"kcal_burned,omitempty" yaml:"kcal_burned,omitempty"`
	DistanceMi   *float64  `json:"distance_mi,omitempty" yaml:"distance_mi,omitempty"`
	DurationSec  *float64  `json:"duration_sec,omitempty" yaml:"duration_sec,omitempty"`
	AvgPace      *float64  `json:"avg_pace,omitempty" yaml:"avg_pace,omitempty"`
	MaxPace      *float64  `json:"max_pace,omitempty" yaml:"max_pace,omitempty"`
	Steps        *int64    `json:"steps,omitempty" yaml:"steps,omitempty"`
	Link         *string   `json:"link,omitempty" yaml:"link,omitempty"`

	// SourceLine is the 1-based CSV line the row came from. Not persisted.
	SourceLine int `json:"-" yaml:"-"`
}

// NewWorkout creates a Workout dated at t.
func NewWorkout(t time.Time) *Workout {
	return &Workout{WorkoutDate: t.UTC()}
}

// WithActivity sets the activity type.
func (w *Workout) WithActivity(activity string) *Workout {
	w.ActivityType = &activity
	return w
}

// WithDuration sets the duration in seconds.
func (w *Workout) WithDuration(seconds float64) *Workout {
	w.DurationSec = &seconds
	return w
}

// WithDistance sets the distance in miles.
func (w *Workout) WithDistance(miles float64) *Workout {
	w.DistanceMi = &miles
	return w
}

// WithCalories sets the calories burned.
func (w *Workout) WithCalories(kcal int64) *Workout {
	w.KcalBurned = &kcal
	return w
}

// WithLink sets the source link.
func (w *Workout) WithLink(link string) *Workout {
	w.Link = &link
	return w
}

// IsResolvedID reports whether id is a real workout identifier.
func IsResolvedID(id string) bool {
	return id != "" && id != UnresolvedWorkoutID
}

// IsResolved reports whether the workout carries a real workout identifier.
func (w *Workout) IsResolved() bool {
	return IsResolvedID(w.WorkoutID)
}

// Fingerprint identifies an unresolved workout by content. Two rows with the same
// fingerprint are the same export line seen twice.
func (w *Workout) Fingerprint() string {
	return Fingerprint(w.WorkoutDate, w.ActivityType, w.DurationSec, w.Link)
}

// Fingerprint builds the content key used for unresolved workouts.
func Fingerprint(date time.Time, activity *string, duration *float64, link *string) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		date.UTC().Format(time.RFC3339),
		derefString(activity),
		formatFloat(duration),
		derefString(link))
}

// WorkoutKey is the subset of a stored workout the loader needs to diff a batch.
type WorkoutKey struct {
	WorkoutID   string
	WorkoutDate time.Time
	Activity    *string
	DurationSec *float64
	Link        *string
}

// IsResolved reports whether the stored row carries a real workout identifier.
func (k WorkoutKey) IsResolved() bool {
	return IsResolvedID(k.WorkoutID)
}

// Fingerprint returns the content key for the stored row.
func (k WorkoutKey) Fingerprint() string {
	return Fingerprint(k.WorkoutDate, k.Activity, k.DurationSec, k.Link)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
