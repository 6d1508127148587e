// ABOUTME: Workout statistics: headline overview and per-period aggregates.
// ABOUTME: Averages skip absent values and are rounded to two decimals.
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/sweat/internal/models"
	"github.com/shopspring/decimal"
)

// Period is an aggregation granularity.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts singular or plural period names.
func ParsePeriod(s string) (Period, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "day":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	default:
		return "", fmt.Errorf("unknown period %q (use day, week, month, or year)", s)
	}
}

// Stats is the headline overview of a set of workouts.
type Stats struct {
	TotalWorkouts int      `json:"total_workouts"`
	AvgDistance   *float64 `json:"avg_distance,omitempty"`
	AvgDuration   *float64 `json:"avg_duration,omitempty"`
	AvgCalories   *float64 `json:"avg_calories,omitempty"`
	FastestPace   *float64 `json:"fastest_pace,omitempty"`
}

// Overview computes totals and averages across all workouts. FastestPace is the
// largest recorded max_pace.
func Overview(workouts []*models.Workout) Stats {
	var distance, duration, calories mean
	var fastest extreme
	for _, w := range workouts {
		distance.add(w.DistanceMi)
		duration.add(w.DurationSec)
		calories.addInt(w.KcalBurned)
		fastest.max(w.MaxPace)
	}
	return Stats{
		TotalWorkouts: len(workouts),
		AvgDistance:   distance.value(),
		AvgDuration:   duration.value(),
		AvgCalories:   calories.value(),
		FastestPace:   fastest.value(),
	}
}

// Bucket holds the statistics of one period.
type Bucket struct {
	Start         time.Time `json:"start"`
	TotalWorkouts int       `json:"total_workouts"`
	AvgDistance   *float64  `json:"avg_distance,omitempty"`
	AvgDuration   *float64  `json:"avg_duration,omitempty"`
	AvgCalories   *float64  `json:"avg_calories,omitempty"`
	FastestSpeed  *float64  `json:"fastest_speed,omitempty"`
}

type accumulator struct {
	count                        int
	distance, duration, calories mean
	fastest                      extreme
}

// Aggregate groups workouts dated within [since, until] by period, oldest bucket
// first. Nil bounds are open. FastestSpeed is the smallest avg_pace in the bucket.
func Aggregate(workouts []*models.Workout, period Period, since, until *time.Time) []Bucket {
	groups := make(map[time.Time]*accumulator)
	for _, w := range workouts {
		if since != nil && w.WorkoutDate.Before(*since) {
			continue
		}
		if until != nil && w.WorkoutDate.After(*until) {
			continue
		}

		start := PeriodStart(w.WorkoutDate, period)
		acc, ok := groups[start]
		if !ok {
			acc = &accumulator{}
			groups[start] = acc
		}
		acc.count++
		acc.distance.add(w.DistanceMi)
		acc.duration.add(w.DurationSec)
		acc.calories.addInt(w.KcalBurned)
		acc.fastest.min(w.AvgPace)
	}

	buckets := make([]Bucket, 0, len(groups))
	for start, acc := range groups {
		buckets = append(buckets, Bucket{
			Start:         start,
			TotalWorkouts: acc.count,
			AvgDistance:   acc.distance.value(),
			AvgDuration:   acc.duration.value(),
			AvgCalories:   acc.calories.value(),
			FastestSpeed:  acc.fastest.value(),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets
}

// PeriodStart truncates t to the start of its period in UTC. Weeks start on Monday.
func PeriodStart(t time.Time, period Period) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// mean sums in decimal so the rounded average does not drift.
type mean struct {
	sum decimal.Decimal
	n   int64
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum = m.sum.Add(decimal.NewFromFloat(*v))
	m.n++
}

func (m *mean) addInt(v *int64) {
	if v == nil {
		return
	}
	m.sum = m.sum.Add(decimal.NewFromInt(*v))
	m.n++
}

func (m *mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	return round2(m.sum.Div(decimal.NewFromInt(m.n)))
}

type extreme struct {
	v   float64
	set bool
}

func (e *extreme) max(v *float64) {
	if v != nil && (!e.set || *v > e.v) {
		e.v, e.set = *v, true
	}
}

func (e *extreme) min(v *float64) {
	if v != nil && (!e.set || *v < e.v) {
		e.v, e.set = *v, true
	}
}

func (e *extreme) value() *float64 {
	if !e.set {
		return nil
	}
	return round2(decimal.NewFromFloat(e.v))
}

func round2(d decimal.Decimal) *float64 {
	f := d.Round(2).InexactFloat64()
	return &f
}
