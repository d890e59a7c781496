package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/user/clip-trimmer/tui/styles"
)

// Theme returns a huh theme in the trimmer palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Accent).
		PaddingLeft(1)
	t.Focused.Title = lipgloss.NewStyle().Foreground(styles.Heading).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(styles.Subtle)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(styles.Danger).Bold(true)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(styles.Danger)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(styles.Info)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(styles.Muted)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(styles.Info)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(styles.Text)
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Background(styles.Accent).
		Foreground(styles.Text).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Background(styles.Muted).
		Foreground(styles.Subtle).
		Padding(0, 1)
	t.Focused.Next = t.Focused.FocusedButton

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = lipgloss.NewStyle().Foreground(styles.Subtle)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(styles.Subtle)

	return t
}
