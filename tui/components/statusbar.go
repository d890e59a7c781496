package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/clip-trimmer/tui/layout"
	"github.com/user/clip-trimmer/tui/styles"
)

// StatusBarState holds what the bottom bar shows.
type StatusBarState struct {
	Engine   string
	StepSize float64
	Audio    bool
	Message  string
	IsError  bool
}

// StatusBar renders the message on the left and engine, step and audio on
// the right. The message is truncated first when the bar is narrow.
func StatusBar(state StatusBarState, width int) string {
	audio := "audio on"
	if !state.Audio {
		audio = "audio off"
	}
	right := fmt.Sprintf("%s · step %s · %s ", state.Engine, FormatStepSize(state.StepSize), audio)

	msgStyle := lipgloss.NewStyle().Foreground(styles.Text)
	if state.IsError {
		msgStyle = lipgloss.NewStyle().Foreground(styles.Danger).Bold(true)
	}
	leftWidth := width - lipgloss.Width(right)
	left := layout.PadToWidth(" "+msgStyle.Render(state.Message), leftWidth)

	bar := lipgloss.NewStyle().
		Background(styles.Surface).
		Foreground(styles.Subtle).
		Width(width)
	return bar.Render(left + right)
}

// FormatStepSize shows sub-second steps with one decimal.
func FormatStepSize(step float64) string {
	if step < 1 {
		return fmt.Sprintf("%.1fs", step)
	}
	return fmt.Sprintf("%.0fs", step)
}
