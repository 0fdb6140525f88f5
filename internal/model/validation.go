package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ValidationError lists every invalid field of a create payload.
type ValidationError struct {
	Kind   Kind
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("invalid %s: %s", strings.ToLower(e.Kind.Title()), strings.Join(parts, "; "))
}

// validator collects field errors; the first message for a field wins.
type validator struct {
	kind   Kind
	fields map[string]string
}

func newValidator(kind Kind) *validator {
	return &validator{kind: kind, fields: map[string]string{}}
}

func (v *validator) fail(field, msg string) {
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "is required")
	}
}

func (v *validator) requiredTime(field string, value DateTime) {
	if value.IsZero() {
		v.fail(field, "is required")
	}
}

func (v *validator) check(ok bool, field, msg string) {
	if !ok {
		v.fail(field, msg)
	}
}

// finite fails field for NaN and infinities and reports whether f is usable
// for further range checks.
func (v *validator) finite(field string, f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		v.fail(field, "must be a finite number")
		return false
	}
	return true
}

func (v *validator) period(startField string, start DateTime, endField string, end DateTime) {
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		v.fail(endField, "must not be before "+startField)
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Kind: v.kind, Fields: v.fields}
}
