// Package tui is the interactive trimmer: one screen showing the open video,
// the selected range and the engine, driven entirely from the keyboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/user/clip-trimmer/clip"
	"github.com/user/clip-trimmer/editor"
	"github.com/user/clip-trimmer/session"
	"github.com/user/clip-trimmer/tui/components"
	"github.com/user/clip-trimmer/tui/forms"
	"github.com/user/clip-trimmer/tui/styles"
)

const (
	// progressInterval is how often load and export progress are polled.
	progressInterval = 100 * time.Millisecond
	defaultStepIndex = 2
)

// stepSizes are the nudge distances cycled with < and >.
var stepSizes = []float64{0.1, 0.5, 1, 2, 5, 10, 30}

// Player is the subset of the mpv client the trimmer drives. It is optional.
type Player interface {
	GetTimePos() (float64, error)
	Seek(seconds float64) error
	SetABLoop(a, b float64) error
	ClearABLoop() error
	SetMute(mute bool) error
}

// Options configures Run.
type Options struct {
	Editor *editor.Editor
	// OutputDir overrides the folder exported clips are written to.
	OutputDir   string
	LoadTimeout time.Duration
	// Save persists the session after every change.
	Save   func() error
	Player Player
}

type formKind int

const (
	rangeForm formKind = iota
	resetForm
)

// Model is the Bubbletea model for the trimmer.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	editor *editor.Editor
	store  *session.Store

	keys    keyMap
	help    help.Model
	bar     progress.Model
	spinner spinner.Model

	width     int
	height    int
	stepIndex int
	edge      components.Edge

	loading   bool
	loadErr   string
	exporting bool
	ticking   bool
	lastClip  string

	form         *huh.Form
	formKind     formKind
	rangeInput   forms.RangeInput
	confirmReset bool

	showHelp bool
	message  string
	isError  bool
	quitting bool
}

// NewModel creates the model. The context bounds engine loading and exports.
func NewModel(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)
	return &Model{
		ctx:       ctx,
		cancel:    cancel,
		opts:      opts,
		editor:    opts.Editor,
		store:     opts.Editor.Store(),
		keys:      defaultKeyMap(),
		help:      help.New(),
		bar:       progress.New(progress.WithGradient(string(styles.Accent), string(styles.Heading)), progress.WithWidth(30)),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Busy)),
		stepIndex: defaultStepIndex,
	}
}

// Init starts loading the engine in the background.
func (m *Model) Init() tea.Cmd {
	return m.startLoad()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.bar.Width = clampInt(msg.Width-10, 10, 40)

	case engineLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			m.setMessage(m.loadErr, true)
		} else {
			m.loadErr = ""
			m.setMessage("engine ready", false)
		}
		return m, nil

	case progressTickMsg:
		if m.loading || m.exporting {
			return m, progressTickCmd()
		}
		m.ticking = false
		return m, nil

	case spinner.TickMsg:
		if !m.exporting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case exportDoneMsg:
		m.exporting = false
		m.save()
		if msg.err != nil {
			m.setMessage(msg.err.Error(), true)
		} else {
			m.lastClip = msg.path
			m.setMessage(fmt.Sprintf("saved %s (%s)", msg.path, humanize.Bytes(uint64(msg.size))), false)
		}
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(k)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.SwitchEdge):
		if m.edge == components.EdgeStart {
			m.edge = components.EdgeEnd
		} else {
			m.edge = components.EdgeStart
		}
	case key.Matches(msg, m.keys.StepDown):
		if m.stepIndex > 0 {
			m.stepIndex--
		}
	case key.Matches(msg, m.keys.StepUp):
		if m.stepIndex < len(stepSizes)-1 {
			m.stepIndex++
		}
	case key.Matches(msg, m.keys.Retry):
		return m, m.startLoad()
	}

	// Everything below changes the session.
	if !m.mutating(msg) {
		return m, nil
	}
	if m.exporting {
		m.setMessage("export in progress", true)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		m.nudge(-stepSizes[m.stepIndex])
	case key.Matches(msg, m.keys.Forward):
		m.nudge(stepSizes[m.stepIndex])
	case key.Matches(msg, m.keys.Mark):
		m.markFromPlayer()
	case key.Matches(msg, m.keys.Audio):
		on := m.store.ToggleAudio()
		m.save()
		m.setMessage("audio "+onOff(on), false)
		if m.opts.Player != nil {
			_ = m.opts.Player.SetMute(!on)
		}
	case key.Matches(msg, m.keys.Range):
		st := m.store.Snapshot()
		if st.Video == nil {
			m.setMessage("no video open", true)
			return m, nil
		}
		m.rangeInput = forms.NewRangeInput(st.StartTime, st.EndTime)
		return m, m.openForm(rangeForm, forms.NewRangeForm(&m.rangeInput, st.Duration))
	case key.Matches(msg, m.keys.Reset):
		m.confirmReset = false
		return m, m.openForm(resetForm, forms.NewConfirmResetForm(&m.confirmReset))
	case key.Matches(msg, m.keys.Export):
		return m, m.startExport()
	}
	return m, nil
}

func (m *Model) mutating(msg tea.KeyMsg) bool {
	return key.Matches(msg, m.keys.Back, m.keys.Forward, m.keys.Mark, m.keys.Audio,
		m.keys.Range, m.keys.Reset, m.keys.Export)
}

func (m *Model) openForm(kind formKind, form *huh.Form) tea.Cmd {
	m.form = form
	m.formKind = kind
	return form.Init()
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		m.form = nil
		return m, nil
	}

	updated, cmd := m.form.Update(msg)
	if f, ok := updated.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.finishForm()
		return m, nil
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m *Model) finishForm() {
	switch m.formKind {
	case rangeForm:
		start, end, err := m.rangeInput.Parse()
		if err != nil {
			m.setMessage(err.Error(), true)
			return
		}
		m.applyRange(start, end)
	case resetForm:
		if !m.confirmReset {
			return
		}
		m.store.Reset()
		m.edge = components.EdgeStart
		m.lastClip = ""
		m.save()
		m.setMessage("session reset", false)
		if m.opts.Player != nil {
			_ = m.opts.Player.ClearABLoop()
		}
	}
}

// nudge moves the active edge by delta seconds, clamped to the video.
func (m *Model) nudge(delta float64) {
	st := m.store.Snapshot()
	if st.Video == nil {
		m.setMessage("no video open", true)
		return
	}
	start, end := st.StartTime, st.EndTime
	if m.edge == components.EdgeStart {
		start = clampSeconds(start+delta, st.Duration)
	} else {
		end = clampSeconds(end+delta, st.Duration)
	}
	m.applyRange(start, end)
}

func (m *Model) markFromPlayer() {
	if m.opts.Player == nil {
		m.setMessage("no preview player connected", true)
		return
	}
	st := m.store.Snapshot()
	if st.Video == nil {
		m.setMessage("no video open", true)
		return
	}
	pos, err := m.opts.Player.GetTimePos()
	if err != nil {
		m.setMessage("player: "+err.Error(), true)
		return
	}
	pos = clampSeconds(pos, st.Duration)
	if m.edge == components.EdgeStart {
		m.applyRange(pos, st.EndTime)
	} else {
		m.applyRange(st.StartTime, pos)
	}
}

// applyRange hands the range to the session, which rejects it when it does
// not fit. The session is saved either way so its error is persisted too.
// A connected player loops the new range from the edge being edited.
func (m *Model) applyRange(start, end float64) {
	ok := m.store.SetTimeRange(start, end)
	m.save()
	if !ok {
		m.setMessage(session.InvalidRangeMessage, true)
		return
	}
	m.setMessage("", false)
	if m.opts.Player != nil {
		_ = m.opts.Player.SetABLoop(start, end)
		if m.edge == components.EdgeStart {
			_ = m.opts.Player.Seek(start)
		} else {
			_ = m.opts.Player.Seek(end)
		}
	}
}

func (m *Model) startLoad() tea.Cmd {
	if m.loading || m.editor.IsEngineReady() {
		return nil
	}
	m.loading = true
	m.loadErr = ""
	return tea.Batch(loadEngineCmd(m.ctx, m.editor, m.opts.LoadTimeout), m.tick())
}

// tick starts the progress poll unless one is already running.
func (m *Model) tick() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return progressTickCmd()
}

func (m *Model) startExport() tea.Cmd {
	st := m.store.Snapshot()
	if st.Video == nil {
		m.setMessage("no video open", true)
		return nil
	}
	if m.loading {
		m.setMessage("engine is still loading", true)
		return nil
	}
	dest := clip.OutputPath(st.Video.Path, m.opts.OutputDir, clip.TrimSpec{
		StartTime:    st.StartTime,
		EndTime:      st.EndTime,
		IncludeAudio: st.HasAudio,
	})
	m.exporting = true
	m.setMessage("exporting "+st.Video.Name, false)
	return tea.Batch(m.spinner.Tick, m.tick(), exportCmd(m.ctx, m.editor, dest))
}

func (m *Model) save() {
	if m.opts.Save == nil {
		return
	}
	if err := m.opts.Save(); err != nil {
		m.setMessage("save session: "+err.Error(), true)
	}
}

func (m *Model) setMessage(text string, isError bool) {
	m.message = text
	m.isError = isError
}

// Run starts the trimmer and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	if opts.Editor == nil {
		return errors.New("tui: editor is required")
	}
	m := NewModel(ctx, opts)
	defer m.cancel()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func clampSeconds(v, duration float64) float64 {
	v = math.Round(v*1000) / 1000
	return math.Max(0, math.Min(v, duration))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
