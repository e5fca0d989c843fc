package tui

import (
	"fmt"
	"strings"
	"time"
)

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)
	renderProgressBar(&b, m)
	renderLevels(&b, m)
	renderFooter(&b, m)

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	p := dashboard
	b.WriteString(p.render(p.title, fmt.Sprintf("k8zenv %s: %s", m.Action, m.ClusterName)))
	b.WriteString(" ")

	switch {
	case m.Err != nil:
		b.WriteString(p.status(statusFailed, fmt.Sprintf("Error: %v", m.Err)))
	case m.Done:
		b.WriteString(p.status(statusOK, "Done"))
	default:
		b.WriteString(p.mark(statusActive, m.SpinnerFrame) + " " + p.status(statusWarning, m.Step.String()))
	}
	b.WriteString("\n")
}

func renderProgressBar(b *strings.Builder, m Model) {
	progress := m.progress()
	barWidth := 40
	if m.Width > 0 && m.Width < 80 {
		barWidth = max(m.Width-30, 10)
	}
	filled := min(int(float64(barWidth)*progress), barWidth)

	p := dashboard
	bar := p.render(p.barFull, strings.Repeat("█", filled)) +
		p.render(p.muted, strings.Repeat("░", barWidth-filled))

	fmt.Fprintf(b, "  %s %d%%\n", bar, int(progress*100))
}

func renderLevels(b *strings.Builder, m Model) {
	p := dashboard
	for i, level := range m.Levels {
		if len(level) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s\n", p.render(p.section, fmt.Sprintf("  Level %d", i+1)))
		for _, u := range level {
			fmt.Fprintf(b, "    %s %s\n", p.mark(unitStatus(u), m.SpinnerFrame), u.Name)
			if u.Err != nil {
				fmt.Fprintf(b, "       %s\n", p.status(statusFailed, u.Err.Error()))
			}
		}
	}
}

func renderFooter(b *strings.Builder, m Model) {
	elapsed := formatDuration(time.Since(m.StartTime))
	b.WriteString(dashboard.render(dashboard.footer, fmt.Sprintf("  elapsed: %s  |  q: quit", elapsed)))
	b.WriteString("\n")
}

func unitStatus(u Unit) status {
	switch {
	case u.Err != nil:
		return statusFailed
	case u.Done:
		return statusOK
	case u.Active:
		return statusActive
	default:
		return statusPending
	}
}

func currentSpinner(frame int) string {
	if frame < 0 {
		frame = -frame
	}
	return spinnerFrames[frame%len(spinnerFrames)]
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
