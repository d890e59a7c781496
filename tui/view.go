package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/user/clip-trimmer/pkg/timeutil"
	"github.com/user/clip-trimmer/session"
	"github.com/user/clip-trimmer/tui/components"
	"github.com/user/clip-trimmer/tui/layout"
	"github.com/user/clip-trimmer/tui/styles"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}

	screen := layout.Screen{Width: m.width, Height: m.height}
	if m.showHelp {
		return screen.Center(components.HelpOverlay(m.keys.helpGroups()))
	}
	if m.form != nil {
		return screen.Center(styles.Overlay.Render(m.form.View()))
	}

	st := m.store.Snapshot()
	title := lipgloss.NewStyle().Foreground(styles.Heading).Bold(true).Render(" clip-trimmer")

	sections := []string{
		title,
		m.sourceBox(st),
		components.Timeline(components.TimelineState{
			Start:    st.StartTime,
			End:      st.EndTime,
			Duration: st.Duration,
			Active:   m.edge,
		}, m.width),
		components.EnginePanel(m.engineState(), m.width),
		m.exportBox(st),
		" " + m.help.View(m.keys),
	}

	body := layout.Screen{Width: m.width, Height: m.height - 1}.Fit(strings.Join(sections, "\n"))
	return body + "\n" + components.StatusBar(m.statusState(st), m.width)
}

func (m *Model) sourceBox(st session.State) string {
	if st.Video == nil {
		return components.Box("Source", []string{
			" " + styles.Label.Render("no video open; run clip-trimmer open <file>"),
		}, m.width)
	}
	row := func(label, value string) string {
		return " " + styles.Label.Render(fmt.Sprintf("%-9s", label)) + styles.Value.Render(value)
	}
	lines := []string{
		row("name", st.Video.Name),
		row("path", st.Video.Path),
		row("size", humanize.Bytes(uint64(max(st.Video.Size, 0)))),
		row("duration", timeutil.FormatTimePrecise(st.Duration)),
	}
	return components.Box("Source", lines, m.width)
}

func (m *Model) exportBox(st session.State) string {
	var lines []string
	switch {
	case m.exporting:
		lines = append(lines,
			" "+m.spinner.View()+styles.Busy.Render(fmt.Sprintf("exporting %s of video", timeutil.FormatTimePrecise(st.ClipLength()))),
			" "+m.bar.ViewAs(m.editor.ClipProgress()),
		)
	case m.lastClip != "":
		lines = append(lines, " "+styles.Success.Render("last clip ")+styles.Value.Render(m.lastClip))
	default:
		lines = append(lines, " "+styles.Label.Render("press e to export the selected range"))
	}
	lines = append(lines, " "+styles.Label.Render("audio ")+styles.Value.Render(onOff(st.HasAudio)))
	return components.Box("Export", lines, m.width)
}

func (m *Model) engineState() components.EngineState {
	return components.EngineState{
		Ready:   m.editor.IsEngineReady(),
		Loading: m.loading,
		Err:     m.loadErr,
		Bar:     m.bar.ViewAs(m.editor.EngineProgress()),
	}
}

// statusState prefers the trimmer's own message and falls back to the
// session error so failures from other commands still show up.
func (m *Model) statusState(st session.State) components.StatusBarState {
	msg, isErr := m.message, m.isError
	if msg == "" && st.Error != "" {
		msg, isErr = st.Error, true
	}
	return components.StatusBarState{
		Engine:   m.engineState().Label(),
		StepSize: stepSizes[m.stepIndex],
		Audio:    st.HasAudio,
		Message:  msg,
		IsError:  isErr,
	}
}
