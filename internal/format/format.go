// Package format renders dates and optional values for tables, pages and exports.
package format

import (
	"strconv"
	"strings"
	"time"
)

// DefaultDateLayout is the en-US short date used when no layout is configured.
const DefaultDateLayout = "1/2/2006"

// InvalidDate is shown for values that cannot be parsed as a date.
const InvalidDate = "Invalid Date"

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date formats t with layout. The zero time formats as "".
func Date(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout)
}

// DateString parses an ISO 8601 date or timestamp and formats it with layout.
// Empty input yields "" and unparseable input yields InvalidDate.
func DateString(s, layout string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, l := range inputLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return Date(t, layout)
		}
	}
	return InvalidDate
}

// Period renders a start/end pair as "start - end", or "" when both are empty.
func Period(start, end time.Time, layout string) string {
	s, e := Date(start, layout), Date(end, layout)
	if s == "" && e == "" {
		return ""
	}
	return s + " - " + e
}

// Timestamp renders t as "2006-01-02 15:04:05" in UTC, the layout used in exports.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// OptionalTimestamp renders a nil time as "".
func OptionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Timestamp(*t)
}

// OptionalFloat renders a nil float as "".
func OptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// OrDash returns s, or "-" when s is blank.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
