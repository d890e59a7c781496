// Package session holds the trimmer's editing state: the selected source,
// the time range, the audio flag, and the processing and error flags.
package session

import (
	"errors"
	"sync"
)

// InvalidRangeMessage is the error text set when a requested range is rejected.
const InvalidRangeMessage = "Invalid time range"

// ErrBusy is returned by BeginProcessing while a job is already running.
var ErrBusy = errors.New("a clip is already being processed")

// Video identifies the selected source file.
type Video struct {
	Path string
	Name string
	Size int64
}

// State is a snapshot of the session.
type State struct {
	Video        *Video
	StartTime    float64
	EndTime      float64
	Duration     float64
	IsProcessing bool
	HasAudio     bool
	Error        string
}

// ClipLength is the selected range length in seconds.
func (s State) ClipLength() float64 {
	return s.EndTime - s.StartTime
}

// Initial returns the state after Reset.
func Initial() State {
	return State{HasAudio: true}
}

// Store guards a State. The zero value is not ready; use New.
type Store struct {
	mu    sync.RWMutex
	state State
}

// New returns a store in its initial state.
func New() *Store {
	return &Store{state: Initial()}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	if out.Video != nil {
		v := *out.Video
		out.Video = &v
	}
	return out
}

// Restore replaces the state wholesale, e.g. from persisted storage.
// A persisted processing flag is never trusted since no job survives a restart.
func (s *Store) Restore(st State) {
	st.IsProcessing = false
	if st.Video != nil {
		v := *st.Video
		st.Video = &v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// SetVideo selects a new source and clears any error.
func (s *Store) SetVideo(v Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Video = &v
	s.state.Error = ""
}

// SetTimeRange accepts 0 <= start < end <= duration. Anything else sets the
// error and leaves the previous range in place. It reports whether the range
// was accepted.
func (s *Store) SetTimeRange(start, end float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if start >= 0 && end <= s.state.Duration && start < end {
		s.state.StartTime = start
		s.state.EndTime = end
		s.state.Error = ""
		return true
	}
	s.state.Error = InvalidRangeMessage
	return false
}

// SetDuration records the source duration and selects through to its end.
// A start time that no longer fits is moved back to zero.
func (s *Store) SetDuration(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Duration = d
	s.state.EndTime = d
	if s.state.StartTime >= d {
		s.state.StartTime = 0
	}
}

// ToggleAudio flips whether exported clips keep their audio.
func (s *Store) ToggleAudio() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.HasAudio = !s.state.HasAudio
	return s.state.HasAudio
}

// SetAudio sets the audio flag explicitly.
func (s *Store) SetAudio(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.HasAudio = on
}

func (s *Store) SetProcessing(processing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsProcessing = processing
}

// BeginProcessing sets the processing flag unless it is already set.
func (s *Store) BeginProcessing() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsProcessing {
		return ErrBusy
	}
	s.state.IsProcessing = true
	return nil
}

// SetError sets the user-facing error; an empty message clears it.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = msg
}

// Reset returns every field to its initial value.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Initial()
}
