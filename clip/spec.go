package clip

import (
	"errors"
	"fmt"
	"math"
)

// TrimSpec is a requested edit of a source video.
type TrimSpec struct {
	StartTime      float64
	EndTime        float64
	SourceDuration float64
	IncludeAudio   bool
}

// Validate enforces 0 <= StartTime < EndTime <= SourceDuration.
func (s TrimSpec) Validate() error {
	for _, v := range []float64{s.StartTime, s.EndTime, s.SourceDuration} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("time values must be finite")
		}
	}
	switch {
	case s.StartTime < 0:
		return fmt.Errorf("start time %.3f is negative", s.StartTime)
	case s.StartTime >= s.EndTime:
		return fmt.Errorf("start time %.3f is not before end time %.3f", s.StartTime, s.EndTime)
	case s.EndTime > s.SourceDuration:
		return fmt.Errorf("end time %.3f exceeds source duration %.3f", s.EndTime, s.SourceDuration)
	}
	return nil
}

// Duration is the length of the requested clip in seconds.
func (s TrimSpec) Duration() float64 {
	return s.EndTime - s.StartTime
}
