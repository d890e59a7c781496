// Package clip trims a source video on a media engine.
//
// A job stages the source under InputName, runs one stream-copy command that
// writes OutputName, reads the result back, and always deletes both names
// before returning. Because the names are fixed, callers must run at most one
// job per engine at a time.
package clip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/user/clip-trimmer/logging"
)

// Engine is the subset of a media engine a job needs.
type Engine interface {
	Ready() bool
	WriteFile(ctx context.Context, name string, r io.Reader) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	DeleteFile(ctx context.Context, name string) error
	Exec(ctx context.Context, args []string) error
}

// State is a job's position in the pipeline.
type State string

const (
	StateIdle       State = "idle"
	StateStaging    State = "staging"
	StateExecuting  State = "executing"
	StateRetrieving State = "retrieving"
	StateCleaningUp State = "cleaning_up"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Job is one invocation of the pipeline. Jobs are never reused.
type Job struct {
	ID     string
	Source string
	Spec   TrimSpec
	State  State
	Err    error
}

// Blob is a finished clip.
type Blob struct {
	Data      []byte
	MediaType string
}

// Size returns the clip size in bytes.
func (b Blob) Size() int64 {
	return int64(len(b.Data))
}

// Save atomically writes the clip to path.
func (b Blob) Save(path string) error {
	if err := renameio.WriteFile(path, b.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write clip: %w", err)
	}
	return nil
}

// Pipeline runs clip jobs.
type Pipeline struct {
	logger zerolog.Logger
	// OnState, when set, observes every state transition.
	OnState func(Job)
}

// NewPipeline returns a pipeline that logs through logger.
func NewPipeline(logger zerolog.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Clip trims src according to spec on eng.
func (p *Pipeline) Clip(ctx context.Context, eng Engine, src Source, spec TrimSpec) (Blob, error) {
	job := &Job{ID: uuid.NewString(), Spec: spec, State: StateIdle}
	if src != nil {
		job.Source = src.Name()
	}
	logger := p.logger.With().Str(logging.FieldJobID, job.ID).Str("source", job.Source).Logger()

	if eng == nil || !eng.Ready() {
		return Blob{}, p.fail(logger, job, newError(KindEngineNotReady, nil))
	}
	if err := spec.Validate(); err != nil {
		return Blob{}, p.fail(logger, job, newError(KindInvalidRange, err))
	}
	if src == nil {
		return Blob{}, p.fail(logger, job, newError(KindStagingFailed, errors.New("no source file")))
	}

	started := time.Now()
	data, err := p.run(ctx, logger, eng, job, src)
	if err != nil {
		return Blob{}, p.fail(logger, job, err)
	}

	p.transition(logger, job, StateDone)
	logger.Info().
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(started)).
		Msg("clip extracted")
	return Blob{Data: data, MediaType: MediaType}, nil
}

// run performs stage, execute and retrieve, with cleanup deferred so it runs
// whatever the outcome.
func (p *Pipeline) run(ctx context.Context, logger zerolog.Logger, eng Engine, job *Job, src Source) ([]byte, *Error) {
	defer func() {
		p.transition(logger, job, StateCleaningUp)
		p.cleanup(context.WithoutCancel(ctx), logger, eng)
	}()

	p.transition(logger, job, StateStaging)
	if err := stage(ctx, eng, src); err != nil {
		return nil, newError(KindStagingFailed, err)
	}

	p.transition(logger, job, StateExecuting)
	args := BuildArgs(job.Spec)
	logger.Debug().Strs("args", args).Msg("executing clip command")
	if err := eng.Exec(ctx, args); err != nil {
		return nil, newError(KindExecutionFailed, err)
	}

	p.transition(logger, job, StateRetrieving)
	data, err := eng.ReadFile(ctx, OutputName)
	if err != nil {
		return nil, newError(KindRetrievalFailed, err)
	}
	if len(data) == 0 {
		return nil, newError(KindRetrievalFailed, errors.New("engine produced an empty output file"))
	}
	return data, nil
}

func stage(ctx context.Context, eng Engine, src Source) error {
	r, err := src.Open()
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer r.Close()
	return eng.WriteFile(ctx, InputName, r)
}

// cleanup deletes both fixed names. Names that were never created are not errors.
func (p *Pipeline) cleanup(ctx context.Context, logger zerolog.Logger, eng Engine) {
	for _, name := range []string{InputName, OutputName} {
		if err := eng.DeleteFile(ctx, name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn().Err(err).Str(logging.FieldPath, name).Msg("failed to delete virtual file")
		}
	}
}

func (p *Pipeline) fail(logger zerolog.Logger, job *Job, err *Error) error {
	job.Err = err
	p.transition(logger, job, StateFailed)
	logger.Error().
		Str(logging.FieldKind, string(err.Kind)).
		Str("detail", err.Detail).
		Msg("clip job failed")
	return err
}

func (p *Pipeline) transition(logger zerolog.Logger, job *Job, next State) {
	logger.Debug().
		Str(logging.FieldOldState, string(job.State)).
		Str(logging.FieldNewState, string(next)).
		Msg("clip job state")
	job.State = next
	if p.OnState != nil {
		p.OnState(*job)
	}
}
