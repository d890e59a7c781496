package engine

import (
	"context"
	"strconv"
	"strings"
)

type execProgressKey struct{}

// WithExecProgress returns a context whose Exec calls report command progress
// to fn. Load progress is reported separately through OnProgress.
func WithExecProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, execProgressKey{}, fn)
}

// ExecProgress returns the progress sink attached to ctx, or a no-op.
func ExecProgress(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(execProgressKey{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(float64) {}
}

// clipDuration returns the value of the -t flag in args, or 0 when absent.
func clipDuration(args []string) float64 {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-t" {
			d, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil || d <= 0 {
				return 0
			}
			return d
		}
	}
	return 0
}

// parseProgressLine converts one "-progress" key=value line into a ratio of total seconds.
func parseProgressLine(line string, total float64) (float64, bool) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return 0, false
	}
	switch key {
	case "progress":
		if value == "end" {
			return 1, true
		}
		return 0, false
	case "out_time_us", "out_time_ms":
		// ffmpeg reports both keys in microseconds.
		if total <= 0 {
			return 0, false
		}
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		ratio := float64(us) / 1e6 / total
		if ratio > 1 {
			ratio = 1
		}
		return ratio, true
	default:
		return 0, false
	}
}
