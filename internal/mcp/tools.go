// ABOUTME: MCP tool implementations for workouts.
// ABOUTME: Listing, statistics, import history, and read-only SQL.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/sweat/internal/storage"
	"github.com/harperreed/sweat/internal/summary"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultListLimit    = 20
	defaultHistoryLimit = 10
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_workouts",
		Description: "List recent workouts, optionally filtered by activity type and date range",
	}, s.handleListWorkouts)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "overview",
		Description: "Total workouts plus average distance, duration, and calories",
	}, s.handleOverview)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "summarize",
		Description: "Aggregate workouts by day, week, month, or year",
	}, s.handleSummarize)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "import_history",
		Description: "Show recent import runs with their row counts",
	}, s.handleImportHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_query",
		Description: "Run a read-only SQL statement (SELECT, WITH, EXPLAIN, VALUES) against the workout_summary table",
	}, s.handleRunQuery)
}

// Tool input types

type listWorkoutsInput struct {
	ActivityType string `json:"activity_type,omitempty" jsonschema:"Filter by activity type (case-insensitive)"`
	Since        string `json:"since,omitempty" jsonschema:"Earliest workout date (YYYY-MM-DD or RFC 3339)"`
	Until        string `json:"until,omitempty" jsonschema:"Latest workout date (YYYY-MM-DD or RFC 3339)"`
	Limit        int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type overviewInput struct {
	Since string `json:"since,omitempty" jsonschema:"Earliest workout date (YYYY-MM-DD or RFC 3339)"`
	Until string `json:"until,omitempty" jsonschema:"Latest workout date (YYYY-MM-DD or RFC 3339)"`
}

type summarizeInput struct {
	Period string `json:"period" jsonschema:"Aggregation period: day, week, month, or year"`
	Since  string `json:"since,omitempty" jsonschema:"Earliest workout date (YYYY-MM-DD or RFC 3339)"`
	Until  string `json:"until,omitempty" jsonschema:"Latest workout date (YYYY-MM-DD or RFC 3339)"`
}

type importHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max runs (default 10)"`
}

type runQueryInput struct {
	SQL string `json:"sql" jsonschema:"A single read-only SQL statement"`
}

// Tool handlers

func (s *Server) handleListWorkouts(ctx context.Context, req *mcp.CallToolRequest, input listWorkoutsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = defaultListLimit
	}

	filter := storage.WorkoutFilter{Limit: input.Limit}
	if input.ActivityType != "" {
		filter.ActivityType = &input.ActivityType
	}
	var err error
	if filter.Since, filter.Until, err = parseRange(input.Since, input.Until); err != nil {
		return nil, nil, err
	}

	workouts, err := s.store.ListWorkouts(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	if len(workouts) == 0 {
		return nil, map[string]interface{}{"message": "No workouts found."}, nil
	}

	return nil, map[string]interface{}{
		"count":    len(workouts),
		"workouts": workouts,
	}, nil
}

func (s *Server) handleOverview(ctx context.Context, req *mcp.CallToolRequest, input overviewInput) (*mcp.CallToolResult, any, error) {
	since, until, err := parseRange(input.Since, input.Until)
	if err != nil {
		return nil, nil, err
	}

	workouts, err := s.store.ListWorkouts(ctx, storage.WorkoutFilter{Since: since, Until: until})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	return nil, summary.Overview(workouts), nil
}

func (s *Server) handleSummarize(ctx context.Context, req *mcp.CallToolRequest, input summarizeInput) (*mcp.CallToolResult, any, error) {
	if input.Period == "" {
		input.Period = string(summary.PeriodWeek)
	}
	period, err := summary.ParsePeriod(input.Period)
	if err != nil {
		return nil, nil, err
	}
	since, until, err := parseRange(input.Since, input.Until)
	if err != nil {
		return nil, nil, err
	}

	workouts, err := s.store.ListWorkouts(ctx, storage.WorkoutFilter{Since: since, Until: until})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	return nil, map[string]interface{}{
		"period":  period,
		"buckets": summary.Aggregate(workouts, period, nil, nil),
	}, nil
}

func (s *Server) handleImportHistory(ctx context.Context, req *mcp.CallToolRequest, input importHistoryInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = defaultHistoryLimit
	}

	runs, err := s.store.ListRuns(ctx, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	if len(runs) == 0 {
		return nil, map[string]interface{}{"message": "No imports recorded."}, nil
	}

	return nil, map[string]interface{}{"runs": runs}, nil
}

func (s *Server) handleRunQuery(ctx context.Context, req *mcp.CallToolRequest, input runQueryInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.SQL) == "" {
		return nil, nil, errors.New("sql is required")
	}

	result, err := s.store.Query(ctx, input.SQL)
	if err != nil {
		return nil, nil, fmt.Errorf("query failed: %w", err)
	}

	return nil, map[string]interface{}{
		"columns":   result.Columns,
		"rows":      result.Rows,
		"row_count": len(result.Rows),
	}, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q (use YYYY-MM-DD or RFC 3339)", s)
}

func parseRange(since, until string) (*time.Time, *time.Time, error) {
	from, err := parseDate(since)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDate(until)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
