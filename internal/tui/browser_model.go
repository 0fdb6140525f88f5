package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/openfootprint/internal/logging"
	"github.com/rshade/openfootprint/internal/model"
)

// TableLoadedMsg carries the result of a Loader call.
type TableLoadedMsg struct {
	Table Table
	Err   error
}

// BrowserModel is the Bubble Tea model for browsing one record kind.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type BrowserModel struct {
	state ViewState
	kind  model.Kind
	ctx   context.Context
	load  Loader

	columns    []Column
	allRecords []Record // insertion order
	records    []Record // filtered and sorted

	table     table.Model
	textInput textinput.Model
	selected  int

	width      int
	height     int
	sortColumn int // -1 keeps insertion order
	showFilter bool

	loadingState *LoadingState
	err          error
}

// NewBrowserModel creates a browser for kind. The returned command starts the
// spinner and the first load.
func NewBrowserModel(ctx context.Context, kind model.Kind, load Loader) (BrowserModel, tea.Cmd) {
	ti := textinput.New()
	ti.Placeholder = "filter records"
	ti.CharLimit = 64

	m := BrowserModel{
		state:        ViewStateLoading,
		kind:         kind,
		ctx:          ctx,
		load:         load,
		textInput:    ti,
		width:        defaultWidth,
		height:       defaultHeight,
		sortColumn:   -1,
		loadingState: NewLoadingState(),
	}
	m.loadingState.SetMessage(fmt.Sprintf("Loading %s...", strings.ToLower(kind.PluralTitle())))
	m.table = m.buildTable()
	return m, m.Init()
}

// Init starts the spinner and the load (Bubble Tea interface).
func (m BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.loadingState.Init(), m.loadCmd())
}

func (m BrowserModel) loadCmd() tea.Cmd {
	ctx, load := m.ctx, m.load
	return func() tea.Msg {
		t, err := load(ctx)
		return TableLoadedMsg{Table: t, Err: err}
	}
}

// Update handles messages (Bubble Tea interface).
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.buildTable()
		return m, nil
	case TableLoadedMsg:
		return m.handleLoaded(msg)
	}

	if m.showFilter {
		return m.handleFilterInput(msg)
	}

	switch m.state {
	case ViewStateLoading:
		return m.handleLoadingUpdate(msg)
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateDetail:
		return m.handleDetailUpdate(msg)
	case ViewStateError:
		return m.handleQuitOnly(msg)
	case ViewStateQuitting:
		return m, nil
	}
	return m, nil
}

func (m BrowserModel) handleLoaded(msg TableLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		logging.FromContext(m.ctx).Error().Err(msg.Err).Str("kind", string(m.kind)).Msg("loading records failed")
		m.state = ViewStateError
		m.err = msg.Err
		return m, nil
	}
	m.columns = msg.Table.Columns
	m.allRecords = msg.Table.Records
	if m.sortColumn >= len(m.columns) {
		m.sortColumn = -1
	}
	m.state = ViewStateList
	m.err = nil
	m.applyFilter(m.textInput.Value())
	return m, nil
}

func (m BrowserModel) handleLoadingUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if s := keyMsg.String(); s == keyQuit || s == keyCtrlC {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		return m, nil
	}
	return m, m.loadingState.Update(msg)
}

func (m BrowserModel) handleFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter, keyEsc:
			m.showFilter = false
			m.textInput.Blur()
			m.applyFilter(m.textInput.Value())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.applyFilter(m.textInput.Value())
	return m, cmd
}

func (m BrowserModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEnter:
		m.selected = m.table.Cursor()
		if m.selected >= 0 && m.selected < len(m.records) {
			m.state = ViewStateDetail
		}
		return m, nil
	case keySlash:
		m.showFilter = true
		m.textInput.Focus()
		return m, textinput.Blink
	case keyS:
		m.cycleSort()
		return m, nil
	case keyReload:
		m.state = ViewStateLoading
		return m, tea.Batch(m.loadingState.Init(), m.loadCmd())
	case keyEsc:
		if m.textInput.Value() != "" {
			m.textInput.SetValue("")
			m.applyFilter("")
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}
}

func (m BrowserModel) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc:
		m.state = ViewStateList
		m.table.Focus()
	}
	return m, nil
}

func (m BrowserModel) handleQuitOnly(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyQuit, keyCtrlC, keyEsc, keyEnter:
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	}
	return m, nil
}

// applyFilter keeps records containing query, then sorts and rebuilds.
func (m *BrowserModel) applyFilter(query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	m.records = make([]Record, 0, len(m.allRecords))
	for _, r := range m.allRecords {
		if r.matches(query) {
			m.records = append(m.records, r)
		}
	}
	m.refreshTable()
}

// cycleSort advances through insertion order and then each column.
func (m *BrowserModel) cycleSort() {
	m.sortColumn++
	if m.sortColumn >= len(m.columns) {
		m.sortColumn = -1
	}
	m.applyFilter(m.textInput.Value())
}

func (m *BrowserModel) refreshTable() {
	if col := m.sortColumn; col >= 0 {
		sort.SliceStable(m.records, func(i, j int) bool {
			return strings.ToLower(cell(m.records[i], col)) < strings.ToLower(cell(m.records[j], col))
		})
	}
	m.table = m.buildTable()
}

func cell(r Record, i int) string {
	if i < len(r.Cells) {
		return r.Cells[i]
	}
	return ""
}

func (m *BrowserModel) buildTable() table.Model {
	columns := make([]table.Column, len(m.columns))
	for i, c := range m.columns {
		columns[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	rows := make([]table.Row, len(m.records))
	for i, r := range m.records {
		rows[i] = table.Row(r.Cells)
	}

	height := m.height - chromeHeight
	if height < 1 {
		height = 1
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(colorAccent)
	styles.Selected = styles.Selected.Foreground(colorAccent).Background(colorPrimary)
	t.SetStyles(styles)
	return t
}

// Selected returns the highlighted record, if any.
func (m BrowserModel) Selected() (Record, bool) {
	i := m.table.Cursor()
	if m.state == ViewStateDetail {
		i = m.selected
	}
	if i < 0 || i >= len(m.records) {
		return Record{}, false
	}
	return m.records[i], true
}

// State returns the current view state.
func (m BrowserModel) State() ViewState { return m.state }

// Err returns the last load error.
func (m BrowserModel) Err() error { return m.err }
