package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/user/clip-trimmer/probe"
)

// engineFlags are prepended to every command; they keep ffmpeg non-interactive
// and route machine-readable progress to stdout.
var engineFlags = []string{"-hide_banner", "-nostdin", "-y", "-progress", "pipe:1", "-nostats"}

// Options configures an FFmpeg engine.
type Options struct {
	CacheDir   string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// FFmpeg runs a native ffmpeg binary behind a private virtual filesystem
// directory. Commands are executed one at a time by a background worker.
type FFmpeg struct {
	logger  zerolog.Logger
	fetcher *fetcher
	runner  commandRunner

	loadMu sync.Mutex

	mu        sync.RWMutex
	loaded    bool
	closed    bool
	corePath  string
	probePath string
	vfsDir    string
	requests  chan execRequest
	done      chan struct{}
	wg        sync.WaitGroup

	progressMu sync.Mutex
	handlers   []ProgressFunc
}

var _ Engine = (*FFmpeg)(nil)

type execRequest struct {
	ctx    context.Context
	args   []string
	result chan error
}

// NewFFmpeg constructs an unloaded engine.
func NewFFmpeg(opts Options) *FFmpeg {
	return &FFmpeg{
		logger: opts.Logger,
		fetcher: &fetcher{
			client:   opts.HTTPClient,
			cacheDir: opts.CacheDir,
			logger:   opts.Logger,
		},
		runner: &execRunner{},
	}
}

// OnProgress subscribes fn to load progress. Exec progress goes to the sink
// attached with WithExecProgress.
func (f *FFmpeg) OnProgress(fn ProgressFunc) {
	if fn == nil {
		return
	}
	f.progressMu.Lock()
	defer f.progressMu.Unlock()
	f.handlers = append(f.handlers, fn)
}

func (f *FFmpeg) emit(ratio float64) {
	f.progressMu.Lock()
	handlers := append([]ProgressFunc(nil), f.handlers...)
	f.progressMu.Unlock()
	for _, fn := range handlers {
		fn(ratio)
	}
}

// Load fetches and verifies the resources, creates the virtual filesystem, and
// starts the worker. Loading an already loaded engine is a no-op.
func (f *FFmpeg) Load(ctx context.Context, res Resources) error {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	f.mu.RLock()
	closed, loaded := f.closed, f.loaded
	f.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if loaded {
		return nil
	}

	fetched, err := f.fetcher.fetchAll(ctx, res, f.emit)
	if err != nil {
		return err
	}

	vfsDir, err := os.MkdirTemp("", "clip-trimmer-vfs-*")
	if err != nil {
		return fmt.Errorf("create virtual filesystem: %w", err)
	}

	f.mu.Lock()
	f.corePath = fetched.Core
	f.probePath = fetched.Binary
	f.vfsDir = vfsDir
	f.requests = make(chan execRequest)
	f.done = make(chan struct{})
	f.loaded = true
	f.wg.Add(1)
	go f.worker(f.requests, f.done)
	f.mu.Unlock()

	f.logger.Debug().Str("core", fetched.Core).Str("vfs", vfsDir).Msg("engine loaded")
	f.emit(1)
	return nil
}

// Ready reports whether Load has succeeded and the engine is still open.
func (f *FFmpeg) Ready() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loaded && !f.closed
}

// worker runs queued commands in arrival order until done is closed.
func (f *FFmpeg) worker(requests <-chan execRequest, done <-chan struct{}) {
	defer f.wg.Done()
	for {
		select {
		case <-done:
			return
		case req := <-requests:
			req.result <- f.run(req.ctx, req.args)
		}
	}
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	f.mu.RLock()
	core, dir := f.corePath, f.vfsDir
	f.mu.RUnlock()

	full := make([]string, 0, len(engineFlags)+len(args))
	full = append(full, engineFlags...)
	full = append(full, args...)

	total := clipDuration(args)
	report := ExecProgress(ctx)
	res, err := f.runner.Run(ctx, command{
		Name: core,
		Args: full,
		Dir:  dir,
		OnStdoutLine: func(line string) {
			if ratio, ok := parseProgressLine(line, total); ok {
				report(ratio)
			}
		},
	})
	if err != nil {
		return &ExecError{ExitCode: res.ExitCode, Stderr: res.Stderr, Err: err}
	}
	return nil
}

// Exec queues args for the worker and waits for the command to finish.
func (f *FFmpeg) Exec(ctx context.Context, args []string) error {
	requests, done, err := f.channels()
	if err != nil {
		return err
	}

	req := execRequest{ctx: ctx, args: append([]string(nil), args...), result: make(chan error, 1)}
	select {
	case requests <- req:
	case <-done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	return <-req.result
}

func (f *FFmpeg) channels() (chan execRequest, chan struct{}, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil, nil, ErrClosed
	}
	if !f.loaded {
		return nil, nil, ErrNotLoaded
	}
	return f.requests, f.done, nil
}

// vfsPath maps a virtual file name onto the engine's private directory.
func (f *FFmpeg) vfsPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return "", ErrClosed
	}
	if !f.loaded {
		return "", ErrNotLoaded
	}
	return filepath.Join(f.vfsDir, name), nil
}

// WriteFile stores the contents of r under name, replacing any previous entry.
func (f *FFmpeg) WriteFile(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.vfsPath(name)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		_ = os.Remove(p)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(p)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadFile returns the contents stored under name.
func (f *FFmpeg) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.vfsPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// DeleteFile removes name. Unknown names fail with an error matching fs.ErrNotExist.
func (f *FFmpeg) DeleteFile(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := f.vfsPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Probe inspects a host file with the engine's ffprobe resource.
func (f *FFmpeg) Probe(ctx context.Context, path string) (probe.Result, error) {
	f.mu.RLock()
	loaded, closed, binary := f.loaded, f.closed, f.probePath
	f.mu.RUnlock()
	if closed {
		return probe.Result{}, ErrClosed
	}
	if !loaded {
		return probe.Result{}, ErrNotLoaded
	}
	return probe.Inspect(ctx, binary, path)
}

// Close stops the worker and removes the virtual filesystem.
func (f *FFmpeg) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	loaded, dir := f.loaded, f.vfsDir
	if loaded {
		close(f.done)
	}
	f.mu.Unlock()

	if !loaded {
		return nil
	}
	f.wg.Wait()
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove virtual filesystem: %w", err)
	}
	return nil
}
