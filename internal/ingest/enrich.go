// ABOUTME: Enricher deriving the workout identifier from the export link.
// ABOUTME: Links without a /workout/<digits> segment get the unresolved sentinel.
package ingest

import (
	"regexp"

	"github.com/harperreed/sweat/internal/models"
)

var workoutIDPattern = regexp.MustCompile(`/workout/(\d+)`)

// ExtractWorkoutID returns the numeric workout segment of link, or
// models.UnresolvedWorkoutID when there is none.
func ExtractWorkoutID(link string) string {
	m := workoutIDPattern.FindStringSubmatch(link)
	if m == nil {
		return models.UnresolvedWorkoutID
	}
	return m[1]
}

// Enrich attaches workout IDs to every workout and returns how many stayed
// unresolved.
func Enrich(workouts []*models.Workout) int {
	unresolved := 0
	for _, w := range workouts {
		link := ""
		if w.Link != nil {
			link = *w.Link
		}
		w.WorkoutID = ExtractWorkoutID(link)
		if !w.IsResolved() {
			unresolved++
		}
	}
	return unresolved
}
