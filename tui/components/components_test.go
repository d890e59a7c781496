package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainLines(s string) []string {
	return strings.Split(ansi.Strip(s), "\n")
}

func TestBoxFramesContent(t *testing.T) {
	lines := plainLines(Box("Source", []string{"match.mp4"}, 20))
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "╭─ Source "))
	assert.True(t, strings.HasSuffix(lines[0], "╮"))
	assert.Equal(t, "│match.mp4"+strings.Repeat(" ", 9)+"│", lines[1])
	assert.Equal(t, "╰"+strings.Repeat("─", 18)+"╯", lines[2])
	for _, l := range lines {
		assert.Equal(t, 20, lipgloss.Width(l))
	}

	assert.Empty(t, Box("x", nil, 3))
}

func TestTimelineMarksRange(t *testing.T) {
	out := Timeline(TimelineState{Start: 25, End: 75, Duration: 100}, 120)
	lines := plainLines(out)
	require.Len(t, lines, 6)

	bar := []rune(strings.TrimSpace(strings.Trim(lines[2], "│")))
	require.Len(t, bar, 116)
	start, end := -1, -1
	for i, r := range bar {
		switch r {
		case '[':
			start = i
		case ']':
			end = i
		}
	}
	assert.Equal(t, barPosition(25, 100, 116), start)
	assert.Equal(t, barPosition(75, 100, 116), end)
	assert.Equal(t, '━', bar[start+1])
	assert.Equal(t, '─', bar[end+1])

	assert.Contains(t, lines[4], "start 0:00:25.000")
	assert.Contains(t, lines[4], "end 0:01:15.000")
	assert.Contains(t, lines[4], "length 0:00:50.000")
}

func TestTimelineWithoutVideo(t *testing.T) {
	out := ansi.Strip(Timeline(TimelineState{}, 40))
	assert.Contains(t, out, "no video loaded")
	assert.Empty(t, Timeline(TimelineState{Duration: 10, End: 10}, 10))
}

func TestBarPositionClamps(t *testing.T) {
	assert.Equal(t, 0, barPosition(-5, 10, 11))
	assert.Equal(t, 10, barPosition(50, 10, 11))
	assert.Equal(t, 5, barPosition(5, 10, 11))
	assert.Equal(t, 0, barPosition(5, 0, 11))
}

func TestStatusBar(t *testing.T) {
	out := StatusBar(StatusBarState{Engine: "engine ready", StepSize: 0.5, Audio: false, Message: "saved clip"}, 80)
	plain := ansi.Strip(out)
	assert.Equal(t, 80, lipgloss.Width(out))
	assert.Contains(t, plain, "saved clip")
	assert.Contains(t, plain, "step 0.5s")
	assert.Contains(t, plain, "audio off")
}

func TestFormatStepSize(t *testing.T) {
	assert.Equal(t, "0.1s", FormatStepSize(0.1))
	assert.Equal(t, "5s", FormatStepSize(5))
}

func TestEngineLabel(t *testing.T) {
	assert.Equal(t, "engine ready", EngineState{Ready: true}.Label())
	assert.Equal(t, "engine loading", EngineState{Loading: true}.Label())
	assert.Equal(t, "engine failed", EngineState{Err: "boom"}.Label())
	assert.Equal(t, "engine idle", EngineState{}.Label())

	out := ansi.Strip(EnginePanel(EngineState{Err: "Failed to initialize video processing"}, 50))
	assert.Contains(t, out, "press i to retry")
}
