// ABOUTME: Tests for CLI helper functions and command execution.
// ABOUTME: Tests parseTime, formatting helpers, command flags, and an import round trip.
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/sweat/internal/models"
	"github.com/harperreed/sweat/internal/storage"
)

const fixture = "../../internal/ingest/testdata/export.csv"

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "date only", input: "2025-01-31"},
		{name: "date and time with space", input: "2025-01-31 08:30"},
		{name: "date and time with T", input: "2025-01-31T08:30"},
		{name: "RFC3339", input: "2025-01-31T08:30:00Z"},
		{name: "RFC3339 with offset", input: "2025-01-31T08:30:00+05:00"},
		{name: "invalid format", input: "31-01-2025", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTime(%q) unexpected error: %v", tt.input, err)
			}
			if result.Location() != time.UTC {
				t.Errorf("parseTime(%q) returned %v, want UTC", tt.input, result.Location())
			}
		})
	}
}

func TestBuildFilter(t *testing.T) {
	filter, err := buildFilter("run", "2024-08-01", "2024-08-31")
	if err != nil {
		t.Fatalf("buildFilter failed: %v", err)
	}
	if filter.ActivityType == nil || *filter.ActivityType != "run" {
		t.Errorf("ActivityType = %v, want run", filter.ActivityType)
	}
	if filter.Since == nil || filter.Since.Day() != 1 {
		t.Errorf("Since = %v", filter.Since)
	}
	if filter.Until == nil || filter.Until.Day() != 31 {
		t.Errorf("Until = %v", filter.Until)
	}

	empty, err := buildFilter("", "", "")
	if err != nil {
		t.Fatalf("buildFilter failed: %v", err)
	}
	if empty.ActivityType != nil || empty.Since != nil || empty.Until != nil {
		t.Errorf("Expected empty filter, got %+v", empty)
	}

	if _, err := buildFilter("", "yesterday", ""); err == nil {
		t.Error("Expected error for invalid --since")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name  string
		input *float64
		want  string
	}{
		{name: "absent", input: nil, want: "-"},
		{name: "minutes", input: ptr(1860), want: "31:00"},
		{name: "hours", input: ptr(3725.4), want: "1:02:05"},
		{name: "under a minute", input: ptr(42), want: "0:42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDuration(tt.input); got != tt.want {
				t.Errorf("formatDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		input any
		want  string
	}{
		{nil, "NULL"},
		{"Run", "Run"},
		{[]byte("Walk"), "Walk"},
		{int64(7), "7"},
		{3.5, "3.5"},
		{time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), "2024-08-01T00:00:00Z"},
	}

	for _, tt := range tests {
		if got := formatCell(tt.input); got != tt.want {
			t.Errorf("formatCell(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world this is a long string", 10, "hello w..."},
		{"", 10, ""},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"hi", 5, "hi   "},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello world"},
		{"", 3, "   "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "sweat" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "sweat")
	}

	for _, name := range []string{"config", "profile", "data-dir", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag", name)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"init", "import", "list", "summary", "query", "history", "export", "config", "mcp"}

	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range want {
		if !names[name] {
			t.Errorf("Expected command %q to be registered", name)
		}
	}
}

func TestImportCmdFlags(t *testing.T) {
	if importCmd.Flags().Lookup("dry-run") == nil {
		t.Error("Expected --dry-run flag on import command")
	}
	if importCmd.Flags().Lookup("metrics-file") == nil {
		t.Error("Expected --metrics-file flag on import command")
	}
}

func TestListCmdFlags(t *testing.T) {
	limitFlag := listCmd.Flags().Lookup("limit")
	if limitFlag == nil {
		t.Fatal("Expected --limit flag on list command")
	}
	if limitFlag.DefValue != "20" {
		t.Errorf("Expected default limit 20, got %s", limitFlag.DefValue)
	}
	for _, name := range []string{"activity", "since", "until"} {
		if listCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected --%s flag on list command", name)
		}
	}
}

func TestSummaryCmdDefaultPeriod(t *testing.T) {
	periodFlag := summaryCmd.Flags().Lookup("period")
	if periodFlag == nil {
		t.Fatal("Expected --period flag on summary command")
	}
	if periodFlag.DefValue != "week" {
		t.Errorf("Expected default period week, got %s", periodFlag.DefValue)
	}
}

func TestExportCmdValidArgs(t *testing.T) {
	expected := map[string]bool{"json": false, "yaml": false, "markdown": false, "csv": false}
	for _, arg := range exportCmd.ValidArgs {
		if _, ok := expected[arg]; ok {
			expected[arg] = true
		}
	}
	for arg, found := range expected {
		if !found {
			t.Errorf("Expected valid arg %q for exportCmd", arg)
		}
	}
}

func TestConfigCmdSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range configCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range []string{"show", "set"} {
		if !names[name] {
			t.Errorf("Expected config subcommand %q", name)
		}
	}
}

// cliEnv isolates a CLI run in a temp config file and data directory.
type cliEnv struct {
	configPath string
	dataDir    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"SWEAT_PROFILE", "SWEAT_DB_SCHEMA", "SWEAT_DATA_DIR", "SWEAT_DB_PORT"} {
		t.Setenv(key, "")
	}
	return &cliEnv{
		configPath: filepath.Join(dir, "config.json"),
		dataDir:    filepath.Join(dir, "data"),
	}
}

func (e *cliEnv) execute(t *testing.T, args ...string) error {
	t.Helper()

	// Flag variables outlive a single Execute.
	profile, importDryRun, importMetricsFile = "", false, ""

	rootCmd.SetArgs(append([]string{"--config", e.configPath, "--data-dir", e.dataDir}, args...))
	return rootCmd.Execute()
}

func (e *cliEnv) openStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.OpenSQLite(filepath.Join(e.dataDir, "sweat.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestImportIsIncremental(t *testing.T) {
	env := newCLIEnv(t)
	metricsFile := filepath.Join(t.TempDir(), "sweat.prom")

	if err := env.execute(t, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := env.execute(t, "import", fixture, "--metrics-file", metricsFile); err != nil {
		t.Fatalf("first import failed: %v", err)
	}
	if err := env.execute(t, "import", fixture); err != nil {
		t.Fatalf("second import failed: %v", err)
	}

	store := env.openStore(t)
	ctx := context.Background()

	n, err := store.CountWorkouts(ctx)
	if err != nil {
		t.Fatalf("CountWorkouts failed: %v", err)
	}
	if n != 7 {
		t.Errorf("Expected 7 workouts, got %d", n)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].RowsInserted != 0 || runs[0].Status != models.RunSucceeded {
		t.Errorf("Expected a successful second run inserting 0, got %+v", runs[0])
	}
	if runs[1].RowsInserted != 7 {
		t.Errorf("Expected first run to insert 7, got %d", runs[1].RowsInserted)
	}

	data, err := os.ReadFile(metricsFile)
	if err != nil {
		t.Fatalf("Expected metrics file: %v", err)
	}
	if !strings.Contains(string(data), "sweat_import_rows_inserted_total 7") {
		t.Errorf("Expected inserted counter in metrics file, got:\n%s", data)
	}
}

func TestImportDryRunWritesNothing(t *testing.T) {
	env := newCLIEnv(t)

	if err := env.execute(t, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := env.execute(t, "import", fixture, "--dry-run"); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	store := env.openStore(t)
	n, err := store.CountWorkouts(context.Background())
	if err != nil {
		t.Fatalf("CountWorkouts failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected no workouts after dry run, got %d", n)
	}
	runs, err := store.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Expected dry run to leave no run record, got %d", len(runs))
	}
}

func TestImportMissingFile(t *testing.T) {
	env := newCLIEnv(t)

	err := env.execute(t, "import", filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil || !strings.Contains(err.Error(), "failed to open export") {
		t.Errorf("Expected open error, got %v", err)
	}
}

func TestQueryRejectsWrites(t *testing.T) {
	env := newCLIEnv(t)

	if err := env.execute(t, "init"); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	err := env.execute(t, "query", "DELETE FROM workout_summary")
	if !errors.Is(err, storage.ErrNotReadOnly) {
		t.Errorf("Expected ErrNotReadOnly, got %v", err)
	}
}

func TestConfigSetPersists(t *testing.T) {
	env := newCLIEnv(t)

	if err := env.execute(t, "config", "set", "input_file", "~/exports/latest.csv"); err != nil {
		t.Fatalf("config set failed: %v", err)
	}
	data, err := os.ReadFile(env.configPath)
	if err != nil {
		t.Fatalf("Expected config file: %v", err)
	}
	if !strings.Contains(string(data), `"input_file": "~/exports/latest.csv"`) {
		t.Errorf("Unexpected config contents:\n%s", data)
	}

	if err := env.execute(t, "config", "set", "colour", "blue"); err == nil {
		t.Error("Expected error for unknown key")
	}
}

func ptr(f float64) *float64 { return &f }
