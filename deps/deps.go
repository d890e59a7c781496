package deps

import (
	"errors"
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Tool is an external program the trimmer can use.
type Tool struct {
	Name       string
	InstallURL string
	// Required tools are needed for exporting; the rest only enable extras.
	Required bool
}

// Tools lists every external program, in the order doctor reports them.
var Tools = []Tool{
	{Name: "ffmpeg", InstallURL: FfmpegInstallURL, Required: true},
	{Name: "ffprobe", InstallURL: FfmpegInstallURL, Required: true},
	{Name: "mpv", InstallURL: MpvInstallURL},
}

// Status is the result of looking up one tool.
type Status struct {
	Tool
	Path string
	Err  error
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

func check(name, installURL string) error {
	if _, err := lookPath(name); err != nil {
		return &DependencyError{Name: name, InstallURL: installURL}
	}
	return nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return check("mpv", MpvInstallURL)
}

// Lookup resolves every tool in Tools.
func Lookup() []Status {
	out := make([]Status, 0, len(Tools))
	for _, t := range Tools {
		st := Status{Tool: t}
		p, err := lookPath(t.Name)
		if err != nil {
			st.Err = &DependencyError{Name: t.Name, InstallURL: t.InstallURL}
		} else {
			st.Path = p
		}
		out = append(out, st)
	}
	return out
}

// CheckRequired reports every missing required tool, or nil.
func CheckRequired() error {
	var errs []error
	for _, st := range Lookup() {
		if st.Required && st.Err != nil {
			errs = append(errs, st.Err)
		}
	}
	return errors.Join(errs...)
}
