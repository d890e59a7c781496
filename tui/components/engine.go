package components

import (
	"github.com/user/clip-trimmer/tui/styles"
)

// EngineState describes the media engine for the Engine box.
type EngineState struct {
	Ready   bool
	Loading bool
	Err     string
	// Bar is the rendered load progress bar.
	Bar string
}

// EnginePanel renders load progress while loading, then a one-line status.
func EnginePanel(state EngineState, width int) string {
	var lines []string
	switch {
	case state.Ready:
		lines = []string{" " + styles.Success.Render("ready")}
	case state.Loading:
		lines = []string{" " + styles.Busy.Render("loading"), " " + state.Bar}
	case state.Err != "":
		lines = []string{
			" " + styles.Error.Render(state.Err),
			" " + styles.Label.Render("press i to retry"),
		}
	default:
		lines = []string{" " + styles.Label.Render("not loaded")}
	}
	return Box("Engine", lines, width)
}

// Label returns the short engine status shown in the status bar.
func (s EngineState) Label() string {
	switch {
	case s.Ready:
		return "engine ready"
	case s.Loading:
		return "engine loading"
	case s.Err != "":
		return "engine failed"
	default:
		return "engine idle"
	}
}
