package clip

import (
	"strconv"

	"github.com/samber/lo"
)

// Fixed virtual filesystem names. They are safe only while one job at a time
// runs against an engine.
const (
	InputName  = "input.mp4"
	OutputName = "output.mp4"
	MediaType  = "video/mp4"
)

// BuildArgs returns the engine argv for spec: seek to the start, copy the video
// stream for the clip duration, and either copy or drop the audio stream.
func BuildArgs(spec TrimSpec) []string {
	audioFlag := ""
	audioCodec := []string{"-c:a", "copy"}
	if !spec.IncludeAudio {
		audioFlag = "-an"
		audioCodec = []string{"", ""}
	}

	args := []string{
		"-i", InputName,
		"-ss", formatSeconds(spec.StartTime),
		"-t", formatSeconds(spec.Duration()),
		audioFlag,
		"-c:v", "copy",
		audioCodec[0], audioCodec[1],
		OutputName,
	}
	return lo.Compact(args)
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
