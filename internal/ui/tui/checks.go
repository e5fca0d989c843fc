package tui

import (
	"fmt"
	"strings"
)

// CheckStatus is the outcome of one diagnostic check.
type CheckStatus int

const (
	CheckPassed CheckStatus = iota
	CheckWarning
	CheckFailed
)

func (s CheckStatus) status() status {
	switch s {
	case CheckFailed:
		return statusFailed
	case CheckWarning:
		return statusWarning
	default:
		return statusOK
	}
}

// Check is one line of a diagnostic report.
type Check struct {
	Name   string
	Status CheckStatus
	Detail string
}

// RenderChecks renders a diagnostic report followed by a summary line.
func RenderChecks(title string, checks []Check, styled bool) string {
	p := newPalette(styled)

	var b strings.Builder
	b.WriteString(p.render(p.title, title))
	b.WriteString("\n")

	counts := map[status]int{}
	for _, c := range checks {
		st := c.Status.status()
		counts[st]++
		fmt.Fprintf(&b, "  %s %s", p.mark(st, 0), c.Name)
		if c.Detail != "" {
			fmt.Fprintf(&b, " %s", p.render(p.muted, c.Detail))
		}
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("%d passed, %d warnings, %d failed", counts[statusOK], counts[statusWarning], counts[statusFailed])
	if counts[statusFailed] > 0 {
		b.WriteString(p.status(statusFailed, summary))
	} else {
		b.WriteString(p.render(p.muted, summary))
	}
	b.WriteString("\n")
	return b.String()
}
