package tui

import "github.com/charmbracelet/lipgloss"

// status is the state shown in front of a unit, a check or a step.
type status int

const (
	statusPending status = iota
	statusActive
	statusOK
	statusWarning
	statusFailed
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")
	colorWhite  = lipgloss.Color("#f9fafb")
)

// statusMarks are fixed width so names line up. Active units use
// spinnerFrames instead.
var statusMarks = map[status]string{
	statusPending: "[  ]",
	statusOK:      "[OK]",
	statusWarning: "[--]",
	statusFailed:  "[!!]",
}

var statusColors = map[status]lipgloss.Color{
	statusPending: colorDim,
	statusActive:  colorWhite,
	statusOK:      colorGreen,
	statusWarning: colorYellow,
	statusFailed:  colorRed,
}

var spinnerFrames = []string{"[- ]", "[\\ ]", "[| ]", "[/ ]"}

// palette renders text for one output. An unstyled palette returns text
// unchanged, for pipes and logs.
type palette struct {
	styled bool

	title   lipgloss.Style
	section lipgloss.Style
	muted   lipgloss.Style
	footer  lipgloss.Style
	barFull lipgloss.Style
}

func newPalette(styled bool) palette {
	return palette{
		styled:  styled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorWhite),
		section: lipgloss.NewStyle().Bold(true).Foreground(colorBlue),
		muted:   lipgloss.NewStyle().Foreground(colorDim),
		footer:  lipgloss.NewStyle().Foreground(colorDim).MarginTop(1),
		barFull: lipgloss.NewStyle().Foreground(colorGreen),
	}
}

// dashboard is the palette of the interactive view, which only runs on a
// terminal.
var dashboard = newPalette(true)

func (p palette) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// status renders text in the color of st. Active text is also bold.
func (p palette) status(st status, text string) string {
	s := lipgloss.NewStyle().Foreground(statusColors[st])
	if st == statusActive {
		s = s.Bold(true)
	}
	return p.render(s, text)
}

// mark renders the marker of st. frame selects the spinner frame of an
// active status.
func (p palette) mark(st status, frame int) string {
	if st == statusActive {
		return p.status(st, currentSpinner(frame))
	}
	return p.status(st, statusMarks[st])
}
