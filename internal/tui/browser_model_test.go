package tui

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

func sampleTable() Table {
	return Table{
		Kind:    model.KindOrganization,
		Columns: []Column{{"Name", 20}, {"Description", 20}},
		Records: []Record{
			{Key: "org:2", Cells: []string{"Zeta Corp", "second"}, Fields: []Field{{"Name", "Zeta Corp"}}},
			{Key: "org:1", Cells: []string{"Alpha Ltd", "first"}, Fields: []Field{{"Name", "Alpha Ltd"}}},
		},
	}
}

func staticLoader(t Table, err error) Loader {
	return func(context.Context) (Table, error) { return t, err }
}

func loaded(t *testing.T, tbl Table) BrowserModel {
	t.Helper()
	m, cmd := NewBrowserModel(context.Background(), model.KindOrganization, staticLoader(tbl, nil))
	require.NotNil(t, cmd)
	assert.Equal(t, ViewStateLoading, m.State())

	updated, _ := m.Update(TableLoadedMsg{Table: tbl})
	return updated.(BrowserModel)
}

func press(m BrowserModel, msg tea.KeyMsg) BrowserModel {
	updated, _ := m.Update(msg)
	return updated.(BrowserModel)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewBrowserModelShowsSpinner(t *testing.T) {
	m, _ := NewBrowserModel(context.Background(), model.KindFacility, staticLoader(Table{}, nil))
	assert.Equal(t, ViewStateLoading, m.State())
	assert.Contains(t, m.View(), "Loading facilities...")
}

func TestBrowserModel_StateTransitions(t *testing.T) {
	m := loaded(t, sampleTable())
	assert.Equal(t, ViewStateList, m.State())
	assert.Contains(t, m.View(), "Zeta Corp")

	// List -> Detail
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewStateDetail, m.State())
	rec, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "org:2", rec.Key)
	assert.Contains(t, m.View(), "ORGANIZATION DETAIL")

	// Detail -> List
	m = press(m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Equal(t, ViewStateList, m.State())

	// Quit
	updated, cmd := m.Update(runes("q"))
	m = updated.(BrowserModel)
	assert.Equal(t, ViewStateQuitting, m.State())
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestBrowserModel_Navigation(t *testing.T) {
	m := loaded(t, sampleTable())

	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	rec, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "org:1", rec.Key)

	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	rec, _ = m.Selected()
	assert.Equal(t, "org:2", rec.Key)
}

func TestBrowserModel_Sort(t *testing.T) {
	m := loaded(t, sampleTable())
	assert.Equal(t, "Created", m.sortLabel())

	m = press(m, runes("s"))
	assert.Equal(t, "Name", m.sortLabel())
	rec, _ := m.Selected()
	assert.Equal(t, "org:1", rec.Key, "Alpha sorts before Zeta")

	m = press(m, runes("s"))
	m = press(m, runes("s"))
	assert.Equal(t, "Created", m.sortLabel())
	rec, _ = m.Selected()
	assert.Equal(t, "org:2", rec.Key)
}

func TestBrowserModel_Filter(t *testing.T) {
	m := loaded(t, sampleTable())

	m = press(m, runes("/"))
	assert.True(t, m.showFilter)
	m = press(m, runes("alp"))
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.showFilter)
	require.Len(t, m.records, 1)
	assert.Equal(t, "org:1", m.records[0].Key)
	assert.Contains(t, m.View(), "Filtered: 1/2")

	// Esc clears the filter.
	m = press(m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.Len(t, m.records, 2)
}

func TestBrowserModel_EmptyAndError(t *testing.T) {
	m := loaded(t, Table{Kind: model.KindOrganization})
	assert.Contains(t, m.View(), "No organizations found.")

	// Enter on an empty list stays on the list.
	m = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ViewStateList, m.State())

	updated, _ := m.Update(TableLoadedMsg{Err: errors.New("database locked")})
	m = updated.(BrowserModel)
	assert.Equal(t, ViewStateError, m.State())
	assert.Contains(t, m.View(), "database locked")
	require.Error(t, m.Err())
}

func TestBrowserModel_Reload(t *testing.T) {
	m := loaded(t, sampleTable())
	updated, cmd := m.Update(runes("r"))
	m = updated.(BrowserModel)
	assert.Equal(t, ViewStateLoading, m.State())
	assert.NotNil(t, cmd)
}

func TestRenderDetailAlignsLabels(t *testing.T) {
	out := RenderDetail("Facility", Record{Fields: []Field{{"ID", "fac:1"}, {"Status", "Draft"}}}, 60)
	assert.Contains(t, out, "FACILITY DETAIL")
	assert.Contains(t, out, "fac:1")
	assert.Contains(t, out, "Press ESC to return")
}

func TestLoadTableAndWritePlain(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = store.Seed(ctx, s)
	require.NoError(t, err)
	svc := catalog.New(s)

	for _, kind := range model.AllKinds() {
		tbl, err := LoadTable(ctx, svc, kind, "2006-01-02")
		require.NoError(t, err, kind)
		assert.Equal(t, kind, tbl.Kind)
		assert.NotEmpty(t, tbl.Records, kind)
		for _, r := range tbl.Records {
			assert.Len(t, r.Cells, len(tbl.Columns), kind)
		}
	}

	tbl, err := LoadTable(ctx, svc, model.KindEmissionStatement, "2006-01-02")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WritePlain(&buf, tbl))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, len(tbl.Records)+1)
	assert.True(t, strings.HasPrefix(lines[0], "ACTIVITY ID"))
	assert.Contains(t, buf.String(), "Manufacturing Plant Alpha")

	_, err = LoadTable(ctx, svc, model.Kind("widgets"), "")
	require.Error(t, err)
}

func TestLoadPageAndRecord(t *testing.T) {
	ctx := context.Background()
	s, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = store.Seed(ctx, s)
	require.NoError(t, err)
	svc := catalog.New(s)

	all, err := LoadTable(ctx, svc, model.KindFacility, "")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all.Records), 2)

	page, err := LoadPage(ctx, svc, model.KindFacility, "", store.Page{Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, all.Records[1].Key, page.Records[0].Key)

	rec, err := LoadRecord(ctx, svc, model.KindFacility, "", all.Records[0].Key)
	require.NoError(t, err)
	assert.Equal(t, all.Records[0], rec)

	_, err = LoadRecord(ctx, svc, model.KindFacility, "", "missing")
	require.True(t, store.IsNotFound(err))
}
