// Package editor is the surface the CLI and TUI drive: it ties the engine
// manager, the clip pipeline, and the session store together.
package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/user/clip-trimmer/clip"
	"github.com/user/clip-trimmer/engine"
	"github.com/user/clip-trimmer/logging"
	"github.com/user/clip-trimmer/probe"
	"github.com/user/clip-trimmer/session"
)

// ErrNoSource is returned when an operation needs a selected video.
var ErrNoSource = errors.New("no video selected")

// Engines provisions the shared engine. *engine.Manager implements it.
type Engines interface {
	Load(ctx context.Context) (engine.Engine, error)
	Ready() bool
	Progress() float64
	Engine() engine.Engine
}

// Prober reads container metadata from a host file.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Result, error)
}

// ClipRequest describes one extraction. A zero Duration means the source
// length is unknown, in which case EndTime is taken as the upper bound.
type ClipRequest struct {
	Source       clip.Source
	StartTime    float64
	EndTime      float64
	IncludeAudio bool
	Duration     float64
}

// Editor coordinates one editing session.
type Editor struct {
	engines  Engines
	pipeline *clip.Pipeline
	store    *session.Store
	prober   Prober
	logger   zerolog.Logger

	clipProgress atomic.Uint64
}

// Option configures an Editor.
type Option func(*Editor)

// WithProber overrides how sources are probed. By default the loaded engine
// is used when it can probe.
func WithProber(p Prober) Option {
	return func(e *Editor) { e.prober = p }
}

// WithPipeline replaces the default pipeline.
func WithPipeline(p *clip.Pipeline) Option {
	return func(e *Editor) { e.pipeline = p }
}

// New returns an editor over engines and store.
func New(engines Engines, store *session.Store, logger zerolog.Logger, opts ...Option) *Editor {
	e := &Editor{
		engines: engines,
		store:   store,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pipeline == nil {
		e.pipeline = clip.NewPipeline(logger)
	}
	return e
}

// Store returns the session store.
func (e *Editor) Store() *session.Store {
	return e.store
}

// IsEngineReady reports whether the engine has loaded.
func (e *Editor) IsEngineReady() bool {
	return e.engines.Ready()
}

// EngineProgress is the engine's load progress in [0, 1].
func (e *Editor) EngineProgress() float64 {
	return e.engines.Progress()
}

// ClipProgress is the progress of the running or last extraction in [0, 1].
func (e *Editor) ClipProgress() float64 {
	return math.Float64frombits(e.clipProgress.Load())
}

func (e *Editor) setClipProgress(ratio float64) {
	if math.IsNaN(ratio) {
		return
	}
	e.clipProgress.Store(math.Float64bits(math.Max(0, math.Min(1, ratio))))
}

// InitializeEngine loads the engine once. Failures carry only the generic
// initialization error; retrying starts a fresh load.
func (e *Editor) InitializeEngine(ctx context.Context) error {
	_, err := e.engines.Load(ctx)
	return err
}

// ExtractClip trims req.Source. It never touches the engine when the engine
// is not ready.
func (e *Editor) ExtractClip(ctx context.Context, req ClipRequest) (clip.Blob, error) {
	duration := req.Duration
	if duration == 0 {
		duration = req.EndTime
	}
	spec := clip.TrimSpec{
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		SourceDuration: duration,
		IncludeAudio:   req.IncludeAudio,
	}

	var eng clip.Engine
	if loaded := e.engines.Engine(); loaded != nil {
		eng = loaded
	}
	e.setClipProgress(0)
	ctx = engine.WithExecProgress(ctx, e.setClipProgress)
	return e.pipeline.Clip(ctx, eng, req.Source, spec)
}

// ExtractCurrent trims the session's video with its current range and audio
// flag. Only one extraction runs at a time; a second caller gets
// session.ErrBusy. On failure the generic error text is stored in the session
// and the range is left alone.
func (e *Editor) ExtractCurrent(ctx context.Context) (clip.Blob, error) {
	st := e.store.Snapshot()
	if st.Video == nil {
		return clip.Blob{}, ErrNoSource
	}
	if err := e.store.BeginProcessing(); err != nil {
		return clip.Blob{}, err
	}
	defer e.store.SetProcessing(false)

	blob, err := e.ExtractClip(ctx, ClipRequest{
		Source:       clip.FileSource(st.Video.Path),
		StartTime:    st.StartTime,
		EndTime:      st.EndTime,
		IncludeAudio: st.HasAudio,
		Duration:     st.Duration,
	})
	if err != nil {
		e.store.SetError(err.Error())
		return clip.Blob{}, err
	}
	e.store.SetError("")
	return blob, nil
}

// OpenSource selects path as the session video, probes its duration, and
// selects the full range. Sources without an audio stream start with audio off.
func (e *Editor) OpenSource(ctx context.Context, path string) (session.State, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return session.State{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return session.State{}, fmt.Errorf("failed to open video: %w", err)
	}
	if info.IsDir() {
		return session.State{}, fmt.Errorf("failed to open video: %s is a directory", abs)
	}

	prober, err := e.resolveProber(ctx)
	if err != nil {
		return session.State{}, err
	}
	result, err := prober.Probe(ctx, abs)
	if err != nil {
		e.logger.Error().Err(err).Str(logging.FieldPath, abs).Msg("failed to probe video")
		return session.State{}, fmt.Errorf("failed to read video metadata: %w", err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return session.State{}, fmt.Errorf("failed to read video metadata: %s has no duration", filepath.Base(abs))
	}

	e.store.SetVideo(session.Video{Path: abs, Name: filepath.Base(abs), Size: info.Size()})
	e.store.SetDuration(duration)
	e.store.SetTimeRange(0, duration)
	e.store.SetAudio(result.HasAudio())

	e.logger.Info().
		Str(logging.FieldPath, abs).
		Float64("duration", duration).
		Bool("has_audio", result.HasAudio()).
		Msg("video opened")
	return e.store.Snapshot(), nil
}

func (e *Editor) resolveProber(ctx context.Context) (Prober, error) {
	if e.prober != nil {
		return e.prober, nil
	}
	eng, err := e.engines.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := eng.(Prober)
	if !ok {
		return nil, errors.New("engine cannot inspect videos")
	}
	return p, nil
}
