// ABOUTME: Tests for the date normalizer.
// ABOUTME: Covers every layout, ordering, and unparseable input.
package ingest

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       time.Time
		wantLayout string
		wantOK     bool
	}{
		{
			name:       "abbreviated month with period",
			input:      "Aug. 1, 2024",
			want:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			wantLayout: "Jan. 2, 2006",
			wantOK:     true,
		},
		{
			name:       "day month two-digit year",
			input:      "31-Jul-24",
			want:       time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
			wantLayout: "2-Jan-06",
			wantOK:     true,
		},
		{
			name:       "day month four-digit year",
			input:      "31-Jul-2024",
			want:       time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
			wantLayout: "2-Jan-2006",
			wantOK:     true,
		},
		{
			name:       "full month name",
			input:      "July 31, 2024",
			want:       time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
			wantLayout: "January 2, 2006",
			wantOK:     true,
		},
		{
			name:       "numeric day month year",
			input:      "20-06-23",
			want:       time.Date(2023, 6, 20, 0, 0, 0, 0, time.UTC),
			wantLayout: "2-1-06",
			wantOK:     true,
		},
		{
			name:       "iso fallback",
			input:      "2024-08-01",
			want:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			wantLayout: "2006-1-2",
			wantOK:     true,
		},
		{
			name:       "surrounding whitespace",
			input:      "  2024-08-01 ",
			want:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			wantLayout: "2006-1-2",
			wantOK:     true,
		},
		{
			name:       "short month without period uses full-name layout",
			input:      "May 4, 2024",
			want:       time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC),
			wantLayout: "January 2, 2006",
			wantOK:     true,
		},
		{
			name:   "free text",
			input:  "Sometime last week",
			wantOK: false,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
		{
			name:   "impossible date",
			input:  "2024-02-31",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, layout, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if layout != tt.wantLayout {
				t.Errorf("ParseDate(%q) layout = %q, want %q", tt.input, layout, tt.wantLayout)
			}
		})
	}
}

func TestParseDateAbbreviatedMatchesISO(t *testing.T) {
	a, _, okA := ParseDate("Aug. 1, 2024")
	b, _, okB := ParseDate("2024-08-01")
	if !okA || !okB {
		t.Fatalf("expected both dates to parse: %v %v", okA, okB)
	}
	if !a.Equal(b) {
		t.Errorf("Aug. 1, 2024 = %v, 2024-08-01 = %v", a, b)
	}
}

func TestParseDateFourDigitYearNotTruncated(t *testing.T) {
	got, layout, ok := ParseDate("31-Jul-2024")
	if !ok {
		t.Fatal("expected parse")
	}
	if got.Year() != 2024 {
		t.Errorf("Year = %d, want 2024 (layout %q)", got.Year(), layout)
	}
}
