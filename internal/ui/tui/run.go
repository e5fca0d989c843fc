package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user quits the UI before the
// operation finished. The operation itself is canceled and awaited.
var ErrInterrupted = errors.New("interrupted by user")

// Operation is the work driven by Run. It reports progress through send.
type Operation func(ctx context.Context, send func(tea.Msg)) error

// Run shows the dashboard while op runs in the background. Quitting the UI
// cancels the context passed to op. Run always waits for op to return.
func Run(ctx context.Context, m Model, op Operation, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	done := make(chan error, 1)
	go func() {
		err := op(ctx, p.Send)
		if err != nil {
			p.Send(ErrMsg{Err: err})
		} else {
			p.Send(DoneMsg{})
		}
		done <- err
	}()

	finalModel, runErr := p.Run()
	if runErr != nil {
		cancel()
		<-done
		return fmt.Errorf("TUI error: %w", runErr)
	}

	interrupted := false
	if fm, ok := finalModel.(Model); ok && fm.Interrupted {
		interrupted = true
		cancel()
	}

	opErr := <-done
	if opErr == nil && interrupted {
		return ErrInterrupted
	}
	return opErr
}
