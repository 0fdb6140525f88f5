package pagination

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnSorter sorts rows of text cells by a named column.
type ColumnSorter struct {
	fields []string
}

// NewColumnSorter accepts the column titles in cell order. Field names are
// matched case-insensitively with spaces written as dashes, so "Reporting
// Period" is "reporting-period".
func NewColumnSorter(titles []string) *ColumnSorter {
	fields := make([]string, len(titles))
	for i, t := range titles {
		fields[i] = FieldName(t)
	}
	return &ColumnSorter{fields: fields}
}

// FieldName is the sort field name of a column title.
func FieldName(title string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(title)), " ", "-")
}

// GetValidFields returns the accepted field names in column order.
func (s *ColumnSorter) GetValidFields() []string {
	return append([]string(nil), s.fields...)
}

func (s *ColumnSorter) index(field string) int {
	field = FieldName(field)
	for i, f := range s.fields {
		if f == field {
			return i
		}
	}
	return -1
}

// Sort orders rows in place by field. cells returns a row's cell values.
func Sort[T any](s *ColumnSorter, rows []T, cells func(T) []string, field, order string) error {
	col := s.index(field)
	if col < 0 {
		return fmt.Errorf("%w: %q (valid: %s)", ErrInvalidSortField, field, strings.Join(s.fields, ", "))
	}
	cell := func(r T) string {
		c := cells(r)
		if col < len(c) {
			return strings.ToLower(c[col])
		}
		return ""
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if order == SortOrderDesc {
			return cell(rows[j]) < cell(rows[i])
		}
		return cell(rows[i]) < cell(rows[j])
	})
	return nil
}
