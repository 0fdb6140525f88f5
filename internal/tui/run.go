package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/openfootprint/internal/model"
)

// Browse runs the record browser for kind until the user quits.
func Browse(ctx context.Context, kind model.Kind, load Loader, in io.Reader, out io.Writer) error {
	m, _ := NewBrowserModel(ctx, kind, load)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running browser: %w", err)
	}
	if bm, ok := final.(BrowserModel); ok && bm.Err() != nil {
		return bm.Err()
	}
	return nil
}
