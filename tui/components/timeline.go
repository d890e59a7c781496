package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/clip-trimmer/pkg/timeutil"
	"github.com/user/clip-trimmer/tui/styles"
)

// Edge names one end of the selected range.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeEnd {
		return "end"
	}
	return "start"
}

// TimelineState is what the range timeline draws.
type TimelineState struct {
	Start    float64
	End      float64
	Duration float64
	Active   Edge
}

// Timeline renders the source as a bar with the selected range highlighted
// between a [ and ] marker. The marker for the active edge is drawn in the
// info colour.
func Timeline(state TimelineState, width int) string {
	if width < 20 {
		return ""
	}
	inner := width - 4
	label := styles.Label
	if state.Duration <= 0 {
		return Box("Range", []string{" " + label.Render("no video loaded")}, width)
	}

	barWidth := inner
	startPos := barPosition(state.Start, state.Duration, barWidth)
	endPos := barPosition(state.End, state.Duration, barWidth)
	if endPos <= startPos && startPos < barWidth-1 {
		endPos = startPos + 1
	}

	outside := lipgloss.NewStyle().Foreground(styles.Muted)
	inside := lipgloss.NewStyle().Foreground(styles.Accent)
	marker := lipgloss.NewStyle().Foreground(styles.Text).Bold(true)
	active := lipgloss.NewStyle().Foreground(styles.Info).Bold(true)

	edgeStyle := func(e Edge) lipgloss.Style {
		if e == state.Active {
			return active
		}
		return marker
	}

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i == startPos:
			bar.WriteString(edgeStyle(EdgeStart).Render("["))
		case i == endPos:
			bar.WriteString(edgeStyle(EdgeEnd).Render("]"))
		case i > startPos && i < endPos:
			bar.WriteString(inside.Render("━"))
		default:
			bar.WriteString(outside.Render("─"))
		}
	}

	startText := fmt.Sprintf("%s %s", label.Render("start"), edgeStyle(EdgeStart).Render(timeutil.FormatTimePrecise(state.Start)))
	endText := fmt.Sprintf("%s %s", label.Render("end"), edgeStyle(EdgeEnd).Render(timeutil.FormatTimePrecise(state.End)))
	lengthText := fmt.Sprintf("%s %s", label.Render("length"), styles.Value.Render(timeutil.FormatTimePrecise(state.End-state.Start)))
	totalText := fmt.Sprintf("%s %s", label.Render("of"), styles.Value.Render(timeutil.FormatTime(state.Duration)))

	lines := []string{
		"",
		" " + bar.String(),
		"",
		" " + strings.Join([]string{startText, endText, lengthText, totalText}, "   "),
	}
	return Box("Range", lines, width)
}

func barPosition(t, duration float64, barWidth int) int {
	if duration <= 0 || barWidth <= 1 {
		return 0
	}
	pos := int(math.Round(float64(barWidth-1) * t / duration))
	if pos < 0 {
		return 0
	}
	if pos > barWidth-1 {
		return barWidth - 1
	}
	return pos
}
