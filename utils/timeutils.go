package utils

import (
	"fmt"
	"strings"
	"time"
)

// Iso8601FromTime formats a timestamp in ISO8601 format, normalized to UTC
// so serialized timestamps sort lexically.
func Iso8601FromTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// timestampLayouts covers the datetime shapes seen in the historical delay
// exports, most specific first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses a combined date-and-time field using the layouts the
// historical exports use.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// CombineDateTime joins separate date and time columns into one timestamp.
// An empty time component yields midnight; a date column that already carries
// a time component is parsed as-is.
func CombineDateTime(dateStr, timeStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if timeStr == "" {
		return ParseTimestamp(dateStr)
	}
	// The date column sometimes carries a redundant midnight suffix.
	if i := strings.IndexAny(dateStr, " T"); i > 0 {
		dateStr = dateStr[:i]
	}
	combined := dateStr + " " + timeStr
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.Parse(layout, combined); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", combined)
}
