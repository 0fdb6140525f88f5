package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date form accepted from HTML date inputs.
const DateLayout = "2006-01-02"

// DateTime is a point in time that also accepts bare calendar dates on input.
// It always encodes as RFC 3339.
type DateTime struct {
	time.Time
}

// NewDateTime wraps t in UTC.
func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC()}
}

// ParseDateTime parses RFC 3339 or YYYY-MM-DD.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDateTime(t), nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", s)
}

// MustDate parses a YYYY-MM-DD date and panics on failure. Fixture use only.
func MustDate(s string) DateTime {
	d, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MarshalJSON encodes the zero value as null.
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

// UnmarshalJSON accepts null, RFC 3339 or YYYY-MM-DD.
func (d *DateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = DateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = DateTime{}
		return nil
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateString returns the YYYY-MM-DD form, or "" for the zero value.
func (d DateTime) DateString() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(DateLayout)
}
