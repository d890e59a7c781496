package clip

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// unsafeChars matches characters that do not belong in a file name.
var unsafeChars = regexp.MustCompile(`[/\\:*?<>|\s]`)

// OutputPath computes where an exported clip is written.
// Folder is dir when set, otherwise the source's directory.
// Filename format: {stem}-{HHMMSS}-{HHMMSS}[-noaudio].mp4
func OutputPath(sourcePath, dir string, spec TrimSpec) string {
	if dir == "" {
		dir = filepath.Dir(sourcePath)
	}
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	stem = strings.ToLower(unsafeChars.ReplaceAllString(stem, "_"))
	if stem == "" || stem == "." {
		stem = "clip"
	}

	filename := fmt.Sprintf("%s-%s-%s", stem, compactTimestamp(spec.StartTime), compactTimestamp(spec.EndTime))
	if !spec.IncludeAudio {
		filename += "-noaudio"
	}
	return filepath.Join(dir, filename+".mp4")
}

func compactTimestamp(seconds float64) string {
	totalSecs := int(seconds)
	hours := totalSecs / 3600
	minutes := (totalSecs % 3600) / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%02d%02d%02d", hours, minutes, secs)
}
