// ABOUTME: Export of stored workouts and import runs.
// ABOUTME: Supports JSON, YAML, Markdown, and canonical CSV formats.
package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harperreed/sweat/internal/models"
	"gopkg.in/yaml.v3"
)

// Format names an export format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts a format name, including the short aliases yml and md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q (use json, yaml, markdown, or csv)", s)
	}
}

// ExportData is the document written by the JSON and YAML formats.
type ExportData struct {
	Version    string              `json:"version" yaml:"version"`
	ExportedAt time.Time           `json:"exported_at" yaml:"exported_at"`
	Tool       string              `json:"tool" yaml:"tool"`
	Workouts   []*models.Workout   `json:"workouts" yaml:"workouts"`
	Runs       []*models.ImportRun `json:"import_runs,omitempty" yaml:"import_runs,omitempty"`
}

// GatherExport collects the workouts matching filter and the full run log.
func GatherExport(ctx context.Context, store Store, filter WorkoutFilter) (*ExportData, error) {
	workouts, err := store.ListWorkouts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Tool:       "sweat",
		Workouts:   workouts,
		Runs:       runs,
	}, nil
}

// Export writes data to w in the given format.
func Export(w io.Writer, data *ExportData, format Format) error {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case FormatYAML:
		b, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, ExportMarkdown(data))
		return err
	case FormatCSV:
		return ExportCSV(w, data.Workouts)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// ExportMarkdown renders workouts as a Markdown table.
func ExportMarkdown(data *ExportData) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Workout Export - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	sb.WriteString("## Workouts\n\n")
	if len(data.Workouts) == 0 {
		sb.WriteString("No workouts recorded.\n")
		return sb.String()
	}

	sb.WriteString("| Date | Activity | Duration | Distance | Calories | Workout ID |\n")
	sb.WriteString("|------|----------|----------|----------|----------|------------|\n")
	for _, w := range data.Workouts {
		activity := ""
		if w.ActivityType != nil {
			activity = *w.ActivityType
		}
		duration := ""
		if w.DurationSec != nil {
			duration = (time.Duration(*w.DurationSec) * time.Second).String()
		}
		distance := ""
		if w.DistanceMi != nil {
			distance = fmt.Sprintf("%.2f mi", *w.DistanceMi)
		}
		calories := ""
		if w.KcalBurned != nil {
			calories = fmt.Sprintf("%d kcal", *w.KcalBurned)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			w.WorkoutDate.Format("2006-01-02"),
			activity, duration, distance, calories, w.WorkoutID))
	}

	return sb.String()
}

// CSVHeader is the canonical column order written by ExportCSV.
var CSVHeader = []string{
	"workout_date", "activity_type", "kcal_burned", "distance_mi", "duration_sec",
	"avg_pace", "max_pace", "steps", "link", "workout_id",
}

// ExportCSV writes workouts with canonical column names. Absent values are empty.
func ExportCSV(w io.Writer, workouts []*models.Workout) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, wo := range workouts {
		record := []string{
			wo.WorkoutDate.Format("2006-01-02"),
			formatString(wo.ActivityType),
			formatInt(wo.KcalBurned),
			formatFloat(wo.DistanceMi),
			formatFloat(wo.DurationSec),
			formatFloat(wo.AvgPace),
			formatFloat(wo.MaxPace),
			formatInt(wo.Steps),
			formatString(wo.Link),
			wo.WorkoutID,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func formatInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
