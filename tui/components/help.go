package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/clip-trimmer/tui/styles"
)

// HelpGroup is a titled block of key bindings. Each row is a key and its
// description.
type HelpGroup struct {
	Title string
	Rows  [][2]string
}

// HelpOverlay renders the key reference as a framed panel.
func HelpOverlay(groups []HelpGroup) string {
	title := lipgloss.NewStyle().Foreground(styles.Heading).Bold(true)
	group := lipgloss.NewStyle().Foreground(styles.Warm).Bold(true).MarginTop(1)
	key := lipgloss.NewStyle().Foreground(styles.Info).Bold(true).Width(12)
	desc := lipgloss.NewStyle().Foreground(styles.Text)

	lines := []string{title.Render("Keybindings")}
	for _, g := range groups {
		lines = append(lines, group.Render(g.Title))
		for _, row := range g.Rows {
			lines = append(lines, "  "+key.Render(row[0])+desc.Render(row[1]))
		}
	}
	lines = append(lines, "", styles.Label.Italic(true).Render("Press any key to close"))
	return styles.Overlay.Render(strings.Join(lines, "\n"))
}
