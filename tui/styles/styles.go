// Package styles holds the trimmer's colour palette and shared Lipgloss styles.
// Colours follow the Ciapre theme from Gogh.
package styles

import "github.com/charmbracelet/lipgloss"

const (
	// Base is the screen background.
	Base = lipgloss.Color("#191C27")
	// Surface backs the status bar and overlays.
	Surface = lipgloss.Color("#181818")
	// Muted draws borders and the unselected part of the timeline.
	Muted = lipgloss.Color("#5C4F4B")
	// Accent marks focus and the selected range.
	Accent = lipgloss.Color("#724D7C")
	// Subtle is secondary text.
	Subtle = lipgloss.Color("#AEA47A")
	// Text is primary text.
	Text = lipgloss.Color("#F3DBB2")
	// Heading is used for box titles.
	Heading = lipgloss.Color("#D33061")
	// Info highlights the active range edge and key hints.
	Info = lipgloss.Color("#3097C6")
	// Warm is used while work is in flight.
	Warm = lipgloss.Color("#CC8B3F")
	// Danger is used for errors.
	Danger = lipgloss.Color("#AC3835")
	// Ok is used for finished exports.
	Ok = lipgloss.Color("#A6A75D")
)

var (
	Label = lipgloss.NewStyle().Foreground(Subtle)
	Value = lipgloss.NewStyle().Foreground(Text).Bold(true)

	// Active marks the range edge that the nudge keys move.
	Active = lipgloss.NewStyle().
		Background(Accent).
		Foreground(Text).
		Bold(true)

	Busy    = lipgloss.NewStyle().Foreground(Warm)
	Error   = lipgloss.NewStyle().Foreground(Danger).Bold(true)
	Success = lipgloss.NewStyle().Foreground(Ok).Bold(true)

	// Overlay frames modal panels such as help and forms.
	Overlay = lipgloss.NewStyle().
		Background(Surface).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Accent).
		Padding(1, 2)
)
