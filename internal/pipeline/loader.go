// ABOUTME: Incremental loader that diffs a cleaned batch against stored workouts.
// ABOUTME: Only new rows are inserted, all in one transaction.
package pipeline

import (
	"context"
	"fmt"

	"github.com/harperreed/sweat/internal/models"
)

// WorkoutLoader is the slice of storage.Store the loader needs.
type WorkoutLoader interface {
	WorkoutKeys(ctx context.Context) ([]models.WorkoutKey, error)
	InsertWorkouts(ctx context.Context, workouts []*models.Workout) (int64, error)
}

// LoadResult counts what the loader did with a batch.
type LoadResult struct {
	Incoming          int
	SkippedExisting   int
	DuplicatesInBatch int
	Candidates        []*models.Workout
	Inserted          int64
}

// Plan splits batch into the rows that are not yet stored. Resolved rows are keyed
// by workout_id and inserted at most once. Unresolved rows are keyed by content
// fingerprint counted with multiplicity: a stored fingerprint absorbs one matching
// incoming row, so distinct rows sharing the sentinel are all kept while a re-import
// of the same export adds nothing.
func Plan(existing []models.WorkoutKey, batch []*models.Workout) *LoadResult {
	storedIDs := make(map[string]bool)
	storedFingerprints := make(map[string]int)
	for _, k := range existing {
		if k.IsResolved() {
			storedIDs[k.WorkoutID] = true
			continue
		}
		storedFingerprints[k.Fingerprint()]++
	}

	res := &LoadResult{Incoming: len(batch)}
	seen := make(map[string]bool)
	for _, w := range batch {
		if !w.IsResolved() {
			fp := w.Fingerprint()
			if storedFingerprints[fp] > 0 {
				storedFingerprints[fp]--
				res.SkippedExisting++
				continue
			}
			res.Candidates = append(res.Candidates, w)
			continue
		}

		switch {
		case storedIDs[w.WorkoutID]:
			res.SkippedExisting++
		case seen[w.WorkoutID]:
			res.DuplicatesInBatch++
		default:
			seen[w.WorkoutID] = true
			res.Candidates = append(res.Candidates, w)
		}
	}
	return res
}

// Load inserts the rows of batch that are not already stored. The store handle is
// borrowed and never closed here.
func Load(ctx context.Context, store WorkoutLoader, batch []*models.Workout) (*LoadResult, error) {
	existing, err := store.WorkoutKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("read existing workouts: %w", err)
	}

	res := Plan(existing, batch)
	if len(res.Candidates) == 0 {
		return res, nil
	}

	res.Inserted, err = store.InsertWorkouts(ctx, res.Candidates)
	if err != nil {
		return nil, fmt.Errorf("load workouts: %w", err)
	}
	return res, nil
}
