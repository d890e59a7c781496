package clip

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	spec := TrimSpec{StartTime: 3725, EndTime: 3740, SourceDuration: 4000, IncludeAudio: true}

	got := OutputPath(filepath.Join("videos", "Match Day.mp4"), "", spec)
	assert.Equal(t, filepath.Join("videos", "match_day-010205-010220.mp4"), got)

	spec.IncludeAudio = false
	got = OutputPath(filepath.Join("videos", "game.mkv"), "exports", spec)
	assert.Equal(t, filepath.Join("exports", "game-010205-010220-noaudio.mp4"), got)

	got = OutputPath(filepath.Join("videos", "Half 1: Kick*Off?.mp4"), "", spec)
	assert.Equal(t, filepath.Join("videos", "half_1__kick_off_-010205-010220-noaudio.mp4"), got)
}
