package clip

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/clip-trimmer/engine"
	"github.com/user/clip-trimmer/engine/enginetest"
)

var sampleSource = BytesSource{Filename: "match.mp4", Data: []byte("source-bytes")}

func validSpec(includeAudio bool) TrimSpec {
	return TrimSpec{StartTime: 10, EndTime: 25, SourceDuration: 60, IncludeAudio: includeAudio}
}

func TestClipWithoutAudio(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	p := NewPipeline(zerolog.Nop())

	blob, err := p.Clip(context.Background(), eng, sampleSource, validSpec(false))
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", blob.MediaType)
	assert.Equal(t, []byte("source-bytes"), blob.Data)
	assert.EqualValues(t, len("source-bytes"), blob.Size())

	execs := eng.Execs()
	require.Len(t, execs, 1)
	assert.Contains(t, execs[0], "-an")
	assert.NotContains(t, execs[0], "-c:a")
	assert.Empty(t, eng.Files(), "no staged names may remain")
}

func TestClipTwiceReusesFixedNames(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	p := NewPipeline(zerolog.Nop())

	_, err := p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.NoError(t, err)
	_, err = p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.NoError(t, err, "second job must not collide with leftovers")
	assert.Len(t, eng.Execs(), 2)
}

func TestClipEngineNotReady(t *testing.T) {
	p := NewPipeline(zerolog.Nop())

	unloaded := enginetest.NewFake()
	_, err := p.Clip(context.Background(), unloaded, sampleSource, validSpec(true))
	require.ErrorIs(t, err, ErrEngineNotReady)
	assert.Empty(t, unloaded.Writes())

	_, err = p.Clip(context.Background(), nil, sampleSource, validSpec(true))
	require.ErrorIs(t, err, ErrEngineNotReady)
}

func TestClipInvalidRange(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	p := NewPipeline(zerolog.Nop())

	_, err := p.Clip(context.Background(), eng, sampleSource, TrimSpec{StartTime: 30, EndTime: 20, SourceDuration: 60})
	require.ErrorIs(t, err, ErrInvalidRange)
	assert.Empty(t, eng.Writes())
	assert.Empty(t, eng.Execs())
}

func TestClipExecFailureStillCleansUp(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	eng.ExecFunc = func(args []string, files map[string][]byte) error {
		files[OutputName] = []byte("partial")
		return &engine.ExecError{ExitCode: 1, Stderr: "moov atom not found"}
	}
	p := NewPipeline(zerolog.Nop())

	_, err := p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.ErrorIs(t, err, ErrExecutionFailed)

	var clipErr *Error
	require.ErrorAs(t, err, &clipErr)
	assert.Equal(t, "moov atom not found", clipErr.Detail)
	assert.Empty(t, eng.Files())
	assert.Equal(t, []string{InputName, OutputName}, eng.Deletes())
}

func TestClipStagingFailure(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	eng.WriteErr = errors.New("disk full")
	p := NewPipeline(zerolog.Nop())

	_, err := p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.ErrorIs(t, err, ErrStagingFailed)
	assert.Empty(t, eng.Execs())
	assert.Equal(t, []string{InputName, OutputName}, eng.Deletes())
}

func TestClipMissingSourceFile(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	p := NewPipeline(zerolog.Nop())

	_, err := p.Clip(context.Background(), eng, FileSource(filepath.Join(t.TempDir(), "missing.mp4")), validSpec(true))
	require.ErrorIs(t, err, ErrStagingFailed)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestClipRetrievalFailure(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	eng.ReadErr = errors.New("read failed")
	p := NewPipeline(zerolog.Nop())

	_, err := p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.ErrorIs(t, err, ErrRetrievalFailed)
	assert.Empty(t, eng.Files())
}

func TestClipEmptyOutputIsRetrievalFailure(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	eng.ExecFunc = func(args []string, files map[string][]byte) error {
		files[OutputName] = nil
		return nil
	}
	p := NewPipeline(zerolog.Nop())

	_, err := p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.ErrorIs(t, err, ErrRetrievalFailed)
}

func TestClipCleanupErrorsDoNotMaskResult(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	eng.DeleteErr = errors.New("busy")
	p := NewPipeline(zerolog.Nop())

	blob, err := p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.NoError(t, err)
	assert.NotEmpty(t, blob.Data)
}

func TestClipStateTransitions(t *testing.T) {
	eng := enginetest.NewLoadedFake()
	p := NewPipeline(zerolog.Nop())
	var states []State
	var ids []string
	p.OnState = func(j Job) {
		states = append(states, j.State)
		ids = append(ids, j.ID)
	}

	_, err := p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.NoError(t, err)
	assert.Equal(t, []State{StateStaging, StateExecuting, StateRetrieving, StateCleaningUp, StateDone}, states)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	states = nil
	eng.ExecErr = errors.New("exit 1")
	_, err = p.Clip(context.Background(), eng, sampleSource, validSpec(true))
	require.Error(t, err)
	assert.Equal(t, []State{StateStaging, StateExecuting, StateCleaningUp, StateFailed}, states)
}

func TestBlobSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mp4")
	require.NoError(t, Blob{Data: []byte("clip"), MediaType: MediaType}.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("clip"), data)
}
