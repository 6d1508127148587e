// ABOUTME: MCP resource implementations for workouts.
// ABOUTME: Provides sweat://workouts/recent and sweat://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/sweat/internal/storage"
	"github.com/harperreed/sweat/internal/summary"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentURI  = "sweat://workouts/recent"
	summaryURI = "sweat://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Workouts",
		Description: "Last 10 workouts",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         summaryURI,
		Name:        "Workout Summary",
		Description: "Overall statistics, the last 8 weeks, and the latest import run",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.store.ListWorkouts(ctx, storage.WorkoutFilter{Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	return jsonResource(recentURI, map[string]interface{}{
		"workouts": workouts,
	})
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	workouts, err := s.store.ListWorkouts(ctx, storage.WorkoutFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	since := summary.PeriodStart(time.Now(), summary.PeriodWeek).AddDate(0, 0, -7*7)
	result := map[string]interface{}{
		"overview": summary.Overview(workouts),
		"weekly":   summary.Aggregate(workouts, summary.PeriodWeek, &since, nil),
	}

	runs, err := s.store.ListRuns(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	if len(runs) > 0 {
		result["last_import"] = runs[0]
	}

	return jsonResource(summaryURI, result)
}

func jsonResource(uri string, v interface{}) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
