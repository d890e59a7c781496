// Package layout sizes rendered blocks to the terminal.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PadToWidth pads or truncates s to exactly width cells. Truncation is ANSI
// aware so styled text keeps its escape sequences intact.
func PadToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w > width {
		s = ansi.Truncate(s, width, "")
		w = lipgloss.Width(s)
	}
	if w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

// NormalizeLines pads or truncates lines to exactly height entries.
func NormalizeLines(lines []string, height int) []string {
	if height < 0 {
		height = 0
	}
	if len(lines) > height {
		return lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

// Screen is the fixed-size area the trimmer draws into.
type Screen struct {
	Width  int
	Height int
}

// Fit clips content to the screen, padding every line to the full width.
// Content taller than the screen loses its bottom lines.
func (s Screen) Fit(content string) string {
	if s.Width <= 0 || s.Height <= 0 {
		return content
	}
	lines := NormalizeLines(strings.Split(content, "\n"), s.Height)
	for i, line := range lines {
		lines[i] = PadToWidth(line, s.Width)
	}
	return strings.Join(lines, "\n")
}

// Center places block in the middle of the screen.
func (s Screen) Center(block string) string {
	if s.Width <= 0 || s.Height <= 0 {
		return block
	}
	return lipgloss.Place(s.Width, s.Height, lipgloss.Center, lipgloss.Center, block)
}
