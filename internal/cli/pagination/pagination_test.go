package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/store"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
		errMsg  string
	}{
		{name: "valid default", params: *NewParams()},
		{name: "valid skip mode", params: Params{Skip: 20, Limit: 10}},
		{name: "valid page mode", params: Params{Page: 2, PageSize: 10}},
		{name: "page without size", params: Params{Page: 3}},
		{name: "negative skip", params: Params{Skip: -1}, wantErr: true, errMsg: "skip cannot be negative"},
		{name: "negative limit", params: Params{Limit: -1}, wantErr: true, errMsg: "limit cannot be negative"},
		{name: "limit too large", params: Params{Limit: MaxLimit + 1}, wantErr: true, errMsg: "limit must be at most"},
		{name: "negative page", params: Params{Page: -1}, wantErr: true, errMsg: "page cannot be negative"},
		{name: "negative page-size", params: Params{PageSize: -1}, wantErr: true, errMsg: "page-size cannot be negative"},
		{
			name:    "mixed modes",
			params:  Params{Page: 1, Skip: 10},
			wantErr: true,
			errMsg:  "page and skip parameters are mutually exclusive",
		},
		{
			name:    "page-size without page",
			params:  Params{PageSize: 10},
			wantErr: true,
			errMsg:  "page must be specified when using page-size",
		},
		{name: "bad sort", params: Params{Sort: "name:sideways"}, wantErr: true, errMsg: "sort order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParams_StorePage(t *testing.T) {
	assert.Equal(t, store.Page{Skip: 5, Limit: 10}, Params{Skip: 5, Limit: 10}.StorePage())
	assert.Equal(t, store.Page{Skip: 20, Limit: 10}, Params{Page: 3, PageSize: 10}.StorePage())
	assert.Equal(t, store.Page{Skip: DefaultPageSize, Limit: DefaultPageSize}, Params{Page: 2}.StorePage())
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in        string
		wantField string
		wantOrder string
		wantErr   error
	}{
		{"", "", SortOrderAsc, nil},
		{"name", "name", SortOrderAsc, nil},
		{"name:DESC", "name", SortOrderDesc, nil},
		{" created : asc ", "created", SortOrderAsc, nil},
		{"a:b:c", "", "", ErrInvalidSortFormat},
		{":desc", "", "", ErrEmptySortField},
		{"name:up", "", "", ErrInvalidSortOrder},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			field, order, err := ParseSort(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(store.Page{Skip: 10, Limit: 10}, 25)
	assert.Equal(t, Meta{
		CurrentPage: 2,
		PageSize:    10,
		TotalPages:  3,
		TotalItems:  25,
		HasPrevious: true,
		HasNext:     true,
	}, m)

	last := NewMeta(store.Page{Skip: 20, Limit: 10}, 25)
	assert.False(t, last.HasNext)

	empty := NewMeta(store.Page{}, 0)
	assert.Equal(t, 1, empty.CurrentPage)
	assert.Equal(t, DefaultLimit, empty.PageSize)
	assert.Zero(t, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestColumnSorter(t *testing.T) {
	s := NewColumnSorter([]string{"Name", "Reporting Period"})
	assert.Equal(t, []string{"name", "reporting-period"}, s.GetValidFields())

	rows := [][]string{{"beta", "2"}, {"Alpha", "3"}, {"gamma", "1"}}
	cells := func(r []string) []string { return r }

	require.NoError(t, Sort(s, rows, cells, "Name", SortOrderAsc))
	assert.Equal(t, "Alpha", rows[0][0])
	assert.Equal(t, "gamma", rows[2][0])

	require.NoError(t, Sort(s, rows, cells, "reporting-period", SortOrderDesc))
	assert.Equal(t, []string{"3", "2", "1"}, []string{rows[0][1], rows[1][1], rows[2][1]})

	err := Sort(s, rows, cells, "savings", SortOrderAsc)
	require.ErrorIs(t, err, ErrInvalidSortField)
	assert.Contains(t, err.Error(), "reporting-period")
}
