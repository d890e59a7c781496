// Package engine provisions the media engine that clip jobs run against.
//
// An Engine owns a private virtual filesystem: inputs are staged into it by
// name, commands run against those names, and results are read back out.
// The Manager guarantees at most one engine is ever loaded per process.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotLoaded is returned by filesystem and exec calls made before Load succeeds.
	ErrNotLoaded = errors.New("engine not loaded")
	// ErrClosed is returned once the engine has been shut down.
	ErrClosed = errors.New("engine closed")
	// ErrInvalidName is returned for virtual filesystem names that are not plain file names.
	ErrInvalidName = errors.New("invalid virtual file name")
)

// Resources names the three artifacts an engine needs before it becomes ready.
// Each value is a location: an http(s) or file URL, a local path, or "path:<name>"
// to resolve an executable from $PATH without fetching anything.
type Resources struct {
	Core   string // ffmpeg executable
	Binary string // ffprobe executable
	Worker string // SHA256SUMS manifest covering Core and Binary; empty skips verification
}

// ProgressFunc receives progress ratios in [0, 1].
type ProgressFunc func(ratio float64)

// Engine is the contract the clip pipeline needs from a media engine.
type Engine interface {
	Load(ctx context.Context, res Resources) error
	// OnProgress subscribes to load progress.
	OnProgress(fn ProgressFunc)
	Ready() bool
	WriteFile(ctx context.Context, name string, r io.Reader) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	DeleteFile(ctx context.Context, name string) error
	// Exec runs args and reports to ExecProgress(ctx).
	Exec(ctx context.Context, args []string) error
	Close() error
}

// ExecError reports a command that ran but did not succeed.
type ExecError struct {
	ExitCode int
	Stderr   string
	Err      error
}

// Error formats the exit status and the tail of stderr.
func (e *ExecError) Error() string {
	if e == nil {
		return ""
	}
	if e.Stderr == "" {
		return fmt.Sprintf("engine exec failed (exit=%d)", e.ExitCode)
	}
	return fmt.Sprintf("engine exec failed (exit=%d): %s", e.ExitCode, e.Stderr)
}

// Unwrap exposes the underlying process error.
func (e *ExecError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Diagnostic returns the engine's own diagnostic text.
func (e *ExecError) Diagnostic() string {
	if e == nil {
		return ""
	}
	return e.Stderr
}
