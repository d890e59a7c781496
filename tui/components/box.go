// Package components renders the pieces of the trimmer screen.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/clip-trimmer/tui/layout"
	"github.com/user/clip-trimmer/tui/styles"
)

// Box draws lines inside a rounded border with the title set into the top
// edge:
//
//	╭─ Title ───────╮
//	│content        │
//	╰───────────────╯
func Box(title string, lines []string, width int) string {
	if width < 4 {
		return ""
	}
	inner := width - 2
	border := lipgloss.NewStyle().Foreground(styles.Muted)
	header := lipgloss.NewStyle().Foreground(styles.Heading).Bold(true).Render(" " + title + " ")

	fill := inner - 1 - lipgloss.Width(header)
	if fill < 0 {
		fill = 0
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, border.Render("╭─")+header+border.Render(strings.Repeat("─", fill)+"╮"))
	for _, line := range lines {
		out = append(out, border.Render("│")+layout.PadToWidth(line, inner)+border.Render("│"))
	}
	out = append(out, border.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return strings.Join(out, "\n")
}
