// Package enginetest provides an in-memory engine for tests.
package enginetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"sync"

	"github.com/user/clip-trimmer/engine"
)

// Fake is an in-memory engine. Its default Exec copies the "-i" input to the
// last argument and, like an engine that never overwrites, fails when that
// output name already exists.
type Fake struct {
	// Gate, when non-nil, blocks Load until it is closed.
	Gate chan struct{}
	// LoadStarted, when non-nil, receives a value each time Load is entered
	// if there is room in its buffer.
	LoadStarted chan struct{}
	// ProgressSteps are emitted in order during Load.
	ProgressSteps []float64

	LoadErr   error
	WriteErr  error
	ExecErr   error
	ReadErr   error
	DeleteErr error
	// ExecFunc replaces the default exec behaviour when set.
	ExecFunc func(args []string, files map[string][]byte) error

	mu        sync.Mutex
	loaded    bool
	closed    bool
	files     map[string][]byte
	handlers  []engine.ProgressFunc
	loads     int
	writes    []string
	deletes   []string
	execs     [][]string
	resources []engine.Resources
}

// NewFake returns an unloaded fake engine.
func NewFake() *Fake {
	return &Fake{files: make(map[string][]byte)}
}

// NewLoadedFake returns a fake that is already ready.
func NewLoadedFake() *Fake {
	f := NewFake()
	f.loaded = true
	return f
}

func (f *Fake) Load(ctx context.Context, res engine.Resources) error {
	f.mu.Lock()
	f.loads++
	f.resources = append(f.resources, res)
	gate, started := f.Gate, f.LoadStarted
	steps := append([]float64(nil), f.ProgressSteps...)
	handlers := append([]engine.ProgressFunc(nil), f.handlers...)
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	for _, step := range steps {
		for _, fn := range handlers {
			fn(step)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoadErr != nil {
		return f.LoadErr
	}
	f.loaded = true
	return nil
}

func (f *Fake) OnProgress(fn engine.ProgressFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, fn)
}

func (f *Fake) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded && !f.closed
}

func (f *Fake) check() error {
	if f.closed {
		return engine.ErrClosed
	}
	if !f.loaded {
		return engine.ErrNotLoaded
	}
	return nil
}

func (f *Fake) WriteFile(_ context.Context, name string, r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.writes = append(f.writes, name)
	if f.WriteErr != nil {
		return f.WriteErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.files[name] = data
	return nil
}

func (f *Fake) ReadFile(_ context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return nil, err
	}
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	data, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
	}
	return bytes.Clone(data), nil
}

func (f *Fake) DeleteFile(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.deletes = append(f.deletes, name)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.files[name]; !ok {
		return fmt.Errorf("delete %s: %w", name, fs.ErrNotExist)
	}
	delete(f.files, name)
	return nil
}

// Exec reports a ratio of 1 to ExecProgress(ctx) when the command succeeds.
func (f *Fake) Exec(ctx context.Context, args []string) error {
	if err := f.exec(args); err != nil {
		return err
	}
	engine.ExecProgress(ctx)(1)
	return nil
}

func (f *Fake) exec(args []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(); err != nil {
		return err
	}
	f.execs = append(f.execs, append([]string(nil), args...))
	if f.ExecErr != nil {
		return f.ExecErr
	}
	if f.ExecFunc != nil {
		return f.ExecFunc(args, f.files)
	}
	return copyInputToOutput(args, f.files)
}

func copyInputToOutput(args []string, files map[string][]byte) error {
	if len(args) == 0 {
		return &engine.ExecError{ExitCode: 1, Stderr: "no arguments"}
	}
	input := ""
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-i" {
			input = args[i+1]
		}
	}
	data, ok := files[input]
	if !ok {
		return &engine.ExecError{ExitCode: 1, Stderr: input + ": No such file or directory"}
	}
	output := args[len(args)-1]
	if _, exists := files[output]; exists {
		return &engine.ExecError{ExitCode: 1, Stderr: "File '" + output + "' already exists. Exiting."}
	}
	files[output] = bytes.Clone(data)
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Files returns the names currently stored, sorted.
func (f *Fake) Files() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PutFile stores data under name without recording a write.
func (f *Fake) PutFile(name string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = bytes.Clone(data)
}

// Loads returns how many times Load was called.
func (f *Fake) Loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

// Resources returns the resources passed to each Load call.
func (f *Fake) Resources() []engine.Resources {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]engine.Resources(nil), f.resources...)
}

// Writes returns the names passed to WriteFile, in order.
func (f *Fake) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// Deletes returns the names passed to DeleteFile, in order.
func (f *Fake) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

// Execs returns the argument lists passed to Exec, in order.
func (f *Fake) Execs() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.execs))
	for i, args := range f.execs {
		out[i] = append([]string(nil), args...)
	}
	return out
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
var _ engine.Engine = (*Fake)(nil)
