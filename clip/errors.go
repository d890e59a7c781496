package clip

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindEngineNotReady  Kind = "engine not ready"
	KindInvalidRange    Kind = "invalid range"
	KindStagingFailed   Kind = "staging failed"
	KindExecutionFailed Kind = "execution failed"
	KindRetrievalFailed Kind = "retrieval failed"
)

// Sentinels for errors.Is; any *Error with the same Kind matches.
var (
	ErrEngineNotReady  = &Error{Kind: KindEngineNotReady}
	ErrInvalidRange    = &Error{Kind: KindInvalidRange}
	ErrStagingFailed   = &Error{Kind: KindStagingFailed}
	ErrExecutionFailed = &Error{Kind: KindExecutionFailed}
	ErrRetrievalFailed = &Error{Kind: KindRetrievalFailed}
)

// Error is what the pipeline returns. Its message never includes engine
// output; Detail and the wrapped cause are for logs and diagnostics.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to process video (%s)", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of err, or "" when err is not a pipeline error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func newError(kind Kind, err error) *Error {
	e := &Error{Kind: kind, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	var diag interface{ Diagnostic() string }
	if errors.As(err, &diag) && diag.Diagnostic() != "" {
		e.Detail = diag.Diagnostic()
	}
	return e
}
