// Package tui provides a Bubble Tea terminal UI for cluster chart
// installation and removal, plus static plan rendering.
package tui

import "github.com/imamik/k8zenv/internal/transaction"

// StepMsg reports that the transaction entered a new step.
type StepMsg struct {
	Step transaction.StepName
}

// UnitMsg reports progress of one chart. Level is zero-based.
type UnitMsg struct {
	Level int
	Name  string
	Done  bool
	Err   error
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries the operation error.
type ErrMsg struct{ Err error }

// DoneMsg signals that the operation is complete.
type DoneMsg struct{}
