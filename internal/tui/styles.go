// Package tui implements the interactive record browser used by
// `openfootprint browse`.
package tui

import "github.com/charmbracelet/lipgloss"

// ViewState is the screen the browser is showing.
type ViewState int

const (
	// ViewStateLoading shows the spinner while records load.
	ViewStateLoading ViewState = iota
	// ViewStateList shows the record table.
	ViewStateList
	// ViewStateDetail shows every field of the selected record.
	ViewStateDetail
	// ViewStateQuitting is set once the user quits.
	ViewStateQuitting
	// ViewStateError shows a load failure.
	ViewStateError
)

// Default terminal dimensions until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 120
	defaultHeight = 24
	borderPadding = 2
	// chromeHeight is the rows used by title, status bar and filter input.
	chromeHeight = 6
)

// Key bindings.
const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keySlash  = "/"
	keyS      = "s"
	keyReload = "r"
)

// Colors.
const (
	colorPrimary = lipgloss.Color("#2E5E3E")
	colorAccent  = lipgloss.Color("#D7E4BC")
	colorSubtle  = lipgloss.Color("241")
	colorOK      = lipgloss.Color("42")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("196")
)

//nolint:gochecknoglobals // shared lipgloss styles.
var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Background(colorPrimary).Padding(0, 1)
	LabelStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
	ValueStyle   = lipgloss.NewStyle().Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	SubtleStyle  = lipgloss.NewStyle().Foreground(colorSubtle).Italic(true)
	OKStyle      = lipgloss.NewStyle().Foreground(colorOK)
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	BoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1)
)

// StatusStyle picks a style for a record or check status.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "passed", "Verified", "Published", "Submitted":
		return OKStyle
	case "warning", "Draft", "In Review", "Pending":
		return WarningStyle
	case "failed", "Rejected":
		return ErrorStyle
	}
	return ValueStyle
}
