package mpv

import (
	"os/exec"
	"strconv"

	"github.com/user/clip-trimmer/deps"
)

// PreviewOptions describes a looped preview of a time range.
type PreviewOptions struct {
	VideoPath  string
	SocketPath string
	Start      float64
	End        float64
	Mute       bool
}

// previewArgs builds the mpv argument list for opts.
func previewArgs(opts PreviewOptions) []string {
	socket := opts.SocketPath
	if socket == "" {
		socket = DefaultSocketPath
	}
	args := []string{
		"--input-ipc-server=" + socket,
		"--keep-open=yes",
	}
	if opts.End > opts.Start {
		start := strconv.FormatFloat(opts.Start, 'f', -1, 64)
		end := strconv.FormatFloat(opts.End, 'f', -1, 64)
		args = append(args,
			"--start="+start,
			"--ab-loop-a="+start,
			"--ab-loop-b="+end,
		)
	}
	if opts.Mute {
		args = append(args, "--mute=yes")
	}
	return append(args, opts.VideoPath)
}

// LaunchPreview starts mpv looping opts' range with the IPC socket enabled.
// It checks that mpv is installed first and returns an error with install link if not.
// Returns the *exec.Cmd for the running process which can be used for cleanup.
func LaunchPreview(opts PreviewOptions) (*exec.Cmd, error) {
	if err := deps.CheckMpv(); err != nil {
		return nil, err
	}

	cmd := exec.Command("mpv", previewArgs(opts)...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
