package pagination

import (
	"math"

	"github.com/rshade/openfootprint/internal/store"
)

// Meta describes the window a list command returned.
type Meta struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewMeta builds the metadata for page over totalCount records.
func NewMeta(page store.Page, totalCount int) Meta {
	size := page.Limit
	if size <= 0 {
		size = DefaultLimit
	}
	current := page.Skip/size + 1
	totalPages := int(math.Ceil(float64(totalCount) / float64(size)))

	return Meta{
		CurrentPage: current,
		PageSize:    size,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		HasPrevious: page.Skip > 0,
		HasNext:     page.Skip+size < totalCount,
	}
}
