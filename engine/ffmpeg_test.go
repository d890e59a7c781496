package engine

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRunner struct {
	mu       sync.Mutex
	commands []command
	stdout   []string
	stderr   string
	exitCode int
	err      error
	// create writes the last argument into the working directory on success.
	create []byte
}

func (r *fakeRunner) Run(_ context.Context, c command) (commandResult, error) {
	r.mu.Lock()
	r.commands = append(r.commands, c)
	lines, stderr, code, err, create := r.stdout, r.stderr, r.exitCode, r.err, r.create
	r.mu.Unlock()

	for _, line := range lines {
		c.OnStdoutLine(line)
	}
	if err != nil {
		return commandResult{Stderr: stderr, ExitCode: code}, err
	}
	if create != nil && len(c.Args) > 0 {
		out := filepath.Join(c.Dir, c.Args[len(c.Args)-1])
		if werr := os.WriteFile(out, create, 0o600); werr != nil {
			return commandResult{ExitCode: 1}, werr
		}
	}
	return commandResult{}, nil
}

func (r *fakeRunner) calls() []command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]command(nil), r.commands...)
}

func writeResource(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o755))
	return p
}

func sha(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// localResources lays out a core, binary and manifest under a temp dir.
func localResources(t *testing.T) Resources {
	t.Helper()
	dir := t.TempDir()
	core := writeResource(t, dir, "ffmpeg", "core-binary")
	binary := writeResource(t, dir, "ffprobe", "probe-binary")
	manifest := fmt.Sprintf("%s  ffmpeg\n%s *ffprobe\n", sha("core-binary"), sha("probe-binary"))
	worker := writeResource(t, dir, "SHA256SUMS", manifest)
	return Resources{Core: core, Binary: binary, Worker: worker}
}

func newTestFFmpeg(t *testing.T, runner *fakeRunner) *FFmpeg {
	t.Helper()
	f := NewFFmpeg(Options{CacheDir: t.TempDir(), Logger: zerolog.Nop()})
	f.runner = runner
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFFmpegOperationsBeforeLoad(t *testing.T) {
	f := newTestFFmpeg(t, &fakeRunner{})
	ctx := context.Background()

	assert.False(t, f.Ready())
	assert.ErrorIs(t, f.WriteFile(ctx, "input.mp4", strings.NewReader("x")), ErrNotLoaded)
	_, err := f.ReadFile(ctx, "input.mp4")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.ErrorIs(t, f.DeleteFile(ctx, "input.mp4"), ErrNotLoaded)
	assert.ErrorIs(t, f.Exec(ctx, []string{"-version"}), ErrNotLoaded)
	_, err = f.Probe(ctx, "clip.mp4")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestFFmpegLoadReportsProgressAndIsIdempotent(t *testing.T) {
	f := newTestFFmpeg(t, &fakeRunner{})
	var ratios []float64
	f.OnProgress(func(r float64) { ratios = append(ratios, r) })

	res := localResources(t)
	require.NoError(t, f.Load(context.Background(), res))
	require.True(t, f.Ready())
	require.NotEmpty(t, ratios)
	assert.Equal(t, 1.0, ratios[len(ratios)-1])
	for i := 1; i < len(ratios); i++ {
		assert.GreaterOrEqual(t, ratios[i], ratios[i-1])
	}

	vfs := f.vfsDir
	require.NoError(t, f.Load(context.Background(), res))
	assert.Equal(t, vfs, f.vfsDir, "second load must not rebuild the filesystem")
}

func TestFFmpegLoadRejectsChecksumMismatch(t *testing.T) {
	f := newTestFFmpeg(t, &fakeRunner{})
	res := localResources(t)
	require.NoError(t, os.WriteFile(res.Core, []byte("tampered"), 0o755))

	err := f.Load(context.Background(), res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
	assert.False(t, f.Ready())
	_, statErr := os.Stat(res.Core)
	assert.NoError(t, statErr, "files outside the cache are never removed")
}

func TestFFmpegLoadMissingResource(t *testing.T) {
	f := newTestFFmpeg(t, &fakeRunner{})
	res := localResources(t)
	res.Binary = filepath.Join(t.TempDir(), "missing")

	require.Error(t, f.Load(context.Background(), res))
	assert.False(t, f.Ready())
}

func TestFFmpegVirtualFilesystem(t *testing.T) {
	f := newTestFFmpeg(t, &fakeRunner{})
	ctx := context.Background()
	require.NoError(t, f.Load(ctx, localResources(t)))

	require.NoError(t, f.WriteFile(ctx, "input.mp4", bytes.NewReader([]byte("video"))))
	data, err := f.ReadFile(ctx, "input.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("video"), data)

	require.NoError(t, f.WriteFile(ctx, "input.mp4", strings.NewReader("v2")))
	data, err = f.ReadFile(ctx, "input.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	require.NoError(t, f.DeleteFile(ctx, "input.mp4"))
	_, err = f.ReadFile(ctx, "input.mp4")
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorIs(t, f.DeleteFile(ctx, "input.mp4"), fs.ErrNotExist)
}

func TestFFmpegRejectsInvalidNames(t *testing.T) {
	f := newTestFFmpeg(t, &fakeRunner{})
	ctx := context.Background()
	require.NoError(t, f.Load(ctx, localResources(t)))

	for _, name := range []string{"", ".", "..", "../escape.mp4", "dir/file.mp4", `dir\file.mp4`} {
		assert.ErrorIs(t, f.WriteFile(ctx, name, strings.NewReader("x")), ErrInvalidName, name)
	}
}

func TestFFmpegExecRunsInVirtualFilesystem(t *testing.T) {
	runner := &fakeRunner{
		stdout: []string{"frame=1", "out_time_us=2500000", "progress=continue", "progress=end"},
		create: []byte("clip"),
	}
	f := newTestFFmpeg(t, runner)
	ctx := context.Background()
	require.NoError(t, f.Load(ctx, localResources(t)))

	var mu sync.Mutex
	var ratios, loadRatios []float64
	f.OnProgress(func(r float64) {
		mu.Lock()
		loadRatios = append(loadRatios, r)
		mu.Unlock()
	})
	execCtx := WithExecProgress(ctx, func(r float64) {
		mu.Lock()
		ratios = append(ratios, r)
		mu.Unlock()
	})

	args := []string{"-i", "input.mp4", "-ss", "0", "-t", "5", "-c:v", "copy", "output.mp4"}
	require.NoError(t, f.Exec(execCtx, args))

	calls := runner.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, f.corePath, calls[0].Name)
	assert.Equal(t, f.vfsDir, calls[0].Dir)
	assert.Equal(t, engineFlags, calls[0].Args[:len(engineFlags)])
	assert.Equal(t, args, calls[0].Args[len(engineFlags):])

	data, err := f.ReadFile(ctx, "output.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("clip"), data)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{0.5, 1}, ratios)
	assert.Empty(t, loadRatios, "exec progress stays off the load subscribers")
}

func TestManagerProgressStaysAtLoadAfterExec(t *testing.T) {
	runner := &fakeRunner{
		stdout:   []string{"out_time_us=1000000"},
		err:      errors.New("exit status 1"),
		exitCode: 1,
	}
	f := newTestFFmpeg(t, runner)
	m := NewManager(func() Engine { return f }, localResources(t), zerolog.Nop())
	ctx := context.Background()

	eng, err := m.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 1.0, m.Progress())

	var clipRatio float64
	execCtx := WithExecProgress(ctx, func(r float64) { clipRatio = r })
	require.Error(t, eng.Exec(execCtx, []string{"-i", "input.mp4", "-t", "5", "output.mp4"}))

	assert.True(t, m.Ready())
	assert.Equal(t, 1.0, m.Progress())
	assert.InDelta(t, 0.2, clipRatio, 1e-9)
}

func TestExecProgressDefaultsToNoop(t *testing.T) {
	assert.NotPanics(t, func() { ExecProgress(context.Background())(0.5) })
}

func TestFFmpegExecFailureCarriesDiagnostics(t *testing.T) {
	runner := &fakeRunner{
		err:      errors.New("exit status 1"),
		exitCode: 1,
		stderr:   "input.mp4: Invalid data found when processing input",
	}
	f := newTestFFmpeg(t, runner)
	ctx := context.Background()
	require.NoError(t, f.Load(ctx, localResources(t)))

	err := f.Exec(ctx, []string{"-i", "input.mp4", "output.mp4"})
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, 1, execErr.ExitCode)
	assert.Contains(t, execErr.Diagnostic(), "Invalid data")
}

func TestFFmpegExecSerializesCommands(t *testing.T) {
	runner := &fakeRunner{}
	f := newTestFFmpeg(t, runner)
	ctx := context.Background()
	require.NoError(t, f.Load(ctx, localResources(t)))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, f.Exec(ctx, []string{"-i", fmt.Sprintf("in%d.mp4", i)}))
		}(i)
	}
	wg.Wait()
	assert.Len(t, runner.calls(), 5)
}

func TestFFmpegCloseRemovesFilesystem(t *testing.T) {
	f := newTestFFmpeg(t, &fakeRunner{})
	ctx := context.Background()
	require.NoError(t, f.Load(ctx, localResources(t)))
	require.NoError(t, f.WriteFile(ctx, "input.mp4", strings.NewReader("x")))
	dir := f.vfsDir

	require.NoError(t, f.Close())
	require.NoError(t, f.Close())

	_, err := os.Stat(dir)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.False(t, f.Ready())
	assert.ErrorIs(t, f.Exec(ctx, []string{"-version"}), ErrClosed)
	assert.ErrorIs(t, f.Load(ctx, localResources(t)), ErrClosed)
}
