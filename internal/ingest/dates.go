// ABOUTME: Date normalizer for the free-form dates found in workout exports.
// ABOUTME: Tries a fixed, ordered list of layouts and keeps the first that parses.
package ingest

import (
	"strings"
	"time"
)

// DateLayouts are tried in order. Two-digit-year layouts come before their
// four-digit siblings; a four-digit year never parses as a two-digit one because
// the leftover digits fail the match.
var DateLayouts = []string{
	"Jan. 2, 2006",    // Aug. 1, 2024
	"2-Jan-06",        // 31-Jul-24
	"2-Jan-2006",      // 31-Jul-2024
	"January 2, 2006", // July 31, 2024
	"2-1-06",          // 20-06-23
	"2006-1-2",        // 2024-08-01
}

// ParseDate returns the first successful parse of s in UTC along with the layout
// that matched. ok is false when no layout matches.
func ParseDate(s string) (t time.Time, layout string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", false
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), layout, true
		}
	}
	return time.Time{}, "", false
}
