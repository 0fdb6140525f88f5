package pagination

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/store"
)

// Pagination defaults and limits.
const (
	DefaultLimit     = store.DefaultLimit
	MaxLimit         = store.MaxLimit
	DefaultPageSize  = 50
	SortOrderAsc     = "asc"
	SortOrderDesc    = "desc"
	DefaultSortOrder = SortOrderAsc
)

// Validation errors.
var (
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'name:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortField  = errors.New("invalid sort field")
)

// Params holds the list flags. Skip/Limit and Page/PageSize are mutually
// exclusive.
type Params struct {
	Skip     int
	Limit    int
	Page     int
	PageSize int
	Sort     string
}

// NewParams returns Params with the default limit.
func NewParams() *Params {
	return &Params{Limit: DefaultLimit}
}

// Register adds the pagination flags to cmd.
func (p *Params) Register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&p.Skip, "skip", 0, "number of records to skip")
	f.IntVar(&p.Limit, "limit", DefaultLimit, fmt.Sprintf("maximum number of records (1-%d)", MaxLimit))
	f.IntVar(&p.Page, "page", 0, "1-based page number (use with --page-size)")
	f.IntVar(&p.PageSize, "page-size", 0, fmt.Sprintf("records per page (default %d when --page is set)", DefaultPageSize))
	f.StringVar(&p.Sort, "sort", "", "sort the page by a column: 'field' or 'field:desc'")
}

// Validate checks bounds and that only one pagination mode is used.
func (p Params) Validate() error {
	if p.Skip < 0 {
		return errors.New("skip cannot be negative")
	}
	if p.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if p.Limit > MaxLimit {
		return fmt.Errorf("limit must be at most %d", MaxLimit)
	}
	if p.Page < 0 {
		return errors.New("page cannot be negative")
	}
	if p.PageSize < 0 {
		return errors.New("page-size cannot be negative")
	}
	if p.PageSize > MaxLimit {
		return fmt.Errorf("page-size must be at most %d", MaxLimit)
	}
	if p.Page > 0 && p.Skip > 0 {
		return errors.New("page and skip parameters are mutually exclusive")
	}
	if p.Page == 0 && p.PageSize > 0 {
		return errors.New("page must be specified when using page-size: page must be >= 1")
	}
	if p.Sort != "" {
		if _, _, err := ParseSort(p.Sort); err != nil {
			return err
		}
	}
	return nil
}

// IsPageBased returns true if page-based pagination is active.
func (p Params) IsPageBased() bool {
	return p.Page > 0
}

// StorePage converts the flags into the window passed to the store.
func (p Params) StorePage() store.Page {
	if p.IsPageBased() {
		size := p.PageSize
		if size == 0 {
			size = DefaultPageSize
		}
		return store.Page{Skip: (p.Page - 1) * size, Limit: size}
	}
	return store.Page{Skip: p.Skip, Limit: p.Limit}
}

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// ParseSort parses a sort string in the format "field" or "field:order".
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSort(sortStr string) (field, order string, err error) {
	if sortStr == "" {
		return "", DefaultSortOrder, nil
	}

	parts := strings.Split(sortStr, ":")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		order = DefaultSortOrder
	case sortPartsMax:
		field = strings.TrimSpace(parts[0])
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	if field == "" {
		return "", "", ErrEmptySortField
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}
