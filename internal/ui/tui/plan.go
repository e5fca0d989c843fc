package tui

import (
	"fmt"
	"strings"
)

// RenderPlan renders a leveled chart plan. Colors are only used when styled
// is set, typically when stdout is a terminal.
func RenderPlan(clusterName string, levels [][]string, styled bool) string {
	p := newPalette(styled)

	var b strings.Builder
	b.WriteString(p.render(p.title, fmt.Sprintf("k8zenv plan: %s", clusterName)))
	b.WriteString("\n")

	total := 0
	for i, level := range levels {
		total += len(level)
		header := fmt.Sprintf("Level %d", i+1)
		if len(level) == 0 {
			fmt.Fprintf(&b, "  %s %s\n", p.render(p.section, header), p.render(p.muted, "(empty)"))
			continue
		}
		fmt.Fprintf(&b, "  %s %s\n", p.render(p.section, header), p.render(p.muted, fmt.Sprintf("(%d charts)", len(level))))
		for _, name := range level {
			fmt.Fprintf(&b, "    - %s\n", name)
		}
	}
	b.WriteString(p.render(p.muted, fmt.Sprintf("%d charts in %d levels", total, len(levels))))
	b.WriteString("\n")

	return b.String()
}
