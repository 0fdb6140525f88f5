package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// msgNothingSelected is shown when the detail view has no record.
const msgNothingSelected = "No record selected."

// View renders the current screen (Bubble Tea interface).
func (m BrowserModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n" +
			SubtleStyle.Render("Press q to quit") + "\n"
	case ViewStateLoading:
		return m.renderLoadingView()
	case ViewStateDetail:
		return m.renderDetailView()
	case ViewStateList:
		return m.renderListView()
	}
	return ""
}

func (m BrowserModel) renderTitle() string {
	return HeaderStyle.Render(strings.ToUpper(m.kind.PluralTitle()))
}

func (m BrowserModel) renderLoadingView() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTitle(), "", RenderLoading(m.loadingState))
}

func (m BrowserModel) renderListView() string {
	sections := []string{m.renderTitle()}
	if len(m.records) == 0 {
		msg := "No " + strings.ToLower(m.kind.PluralTitle()) + " found."
		if m.textInput.Value() != "" {
			msg = "No records match the filter."
		}
		sections = append(sections, InfoStyle.Render(msg))
	} else {
		sections = append(sections, m.table.View())
	}
	sections = append(sections, m.renderStatusBar())
	if m.showFilter {
		sections = append(sections, LabelStyle.Render("Filter: ")+m.textInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m BrowserModel) renderStatusBar() string {
	filterStatus := ""
	if m.textInput.Value() != "" {
		filterStatus = fmt.Sprintf(" | Filtered: %d/%d", len(m.records), len(m.allRecords))
	}
	status := fmt.Sprintf("%d records | Sort: %s%s | enter detail, / filter, s sort, r reload, q quit",
		len(m.allRecords), m.sortLabel(), filterStatus)
	return SubtleStyle.Render(status)
}

func (m BrowserModel) sortLabel() string {
	if m.sortColumn < 0 || m.sortColumn >= len(m.columns) {
		return "Created"
	}
	return m.columns[m.sortColumn].Title
}

func (m BrowserModel) renderDetailView() string {
	rec, ok := m.Selected()
	if !ok {
		return msgNothingSelected
	}
	return RenderDetail(m.kind.Title(), rec, m.width)
}

// RenderDetail renders every field of rec in a box of the given width.
func RenderDetail(title string, rec Record, width int) string {
	labelWidth := 0
	for _, f := range rec.Fields {
		labelWidth = max(labelWidth, lipgloss.Width(f.Label))
	}

	var content strings.Builder
	content.WriteString(HeaderStyle.Render(strings.ToUpper(title) + " DETAIL"))
	content.WriteString("\n\n")
	for _, f := range rec.Fields {
		label := f.Label + ":" + strings.Repeat(" ", labelWidth-lipgloss.Width(f.Label)+1)
		content.WriteString(LabelStyle.Render(label))
		value := ValueStyle
		if f.Label == "Status" || f.Label == "Verification Status" {
			value = StatusStyle(f.Value)
		}
		content.WriteString(value.Render(f.Value))
		content.WriteString("\n")
	}
	content.WriteString(SubtleStyle.Render("\nPress ESC to return"))

	if width <= borderPadding {
		width = defaultWidth
	}
	return BoxStyle.Width(width - borderPadding).Render(content.String())
}
