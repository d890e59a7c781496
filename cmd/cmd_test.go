package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/clip-trimmer/engine"
	"github.com/user/clip-trimmer/engine/enginetest"
	"github.com/user/clip-trimmer/probe"
	"github.com/user/clip-trimmer/session"
)

type stubProber struct {
	duration string
	noAudio  bool
}

func (p stubProber) Probe(context.Context, string) (probe.Result, error) {
	r := probe.Result{
		Format:  probe.Format{Duration: p.duration},
		Streams: []probe.Stream{{CodecType: "video"}},
	}
	if !p.noAudio {
		r.Streams = append(r.Streams, probe.Stream{CodecType: "audio"})
	}
	return r, nil
}

type cliEnv struct {
	dir        string
	configPath string
	outDir     string
	prober     stubProber
	execErr    error
}

func newCLI(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.toml"),
		outDir:     filepath.Join(dir, "out"),
		prober:     stubProber{duration: "90.000000"},
	}
	contents := `
[paths]
database_path = "` + filepath.ToSlash(filepath.Join(dir, "data.db")) + `"
output_dir = "` + filepath.ToSlash(env.outDir) + `"

[logging]
level = "error"
`
	require.NoError(t, os.WriteFile(env.configPath, []byte(contents), 0o644))
	return env
}

// run executes one CLI invocation. Every invocation gets a fresh engine the
// way a new process would.
func (e *cliEnv) run(args ...string) (string, error) {
	ctx := &commandContext{
		engineFactory: func() engine.Engine {
			fake := enginetest.NewFake()
			fake.ExecErr = e.execErr
			return fake
		},
		prober: e.prober,
	}
	root := buildRootCommand(ctx)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) writeVideo(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(p, []byte("frames"), 0o600))
	return p
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	out := newCLI(t).mustRun(t, "version")
	assert.Contains(t, out, "clip-trimmer version "+Version)
}

func TestOpenSelectsFullRange(t *testing.T) {
	env := newCLI(t)
	video := env.writeVideo(t, "Match Day.mp4")

	out := env.mustRun(t, "open", video)
	assert.Contains(t, out, "Opened Match Day.mp4")
	assert.Contains(t, out, "0:01:30")

	status := env.mustRun(t, "status")
	assert.Contains(t, status, video)
	assert.Contains(t, status, "0:01:30.000")
	assert.Contains(t, status, "90.000s")
}

func TestOpenWithoutAudioTurnsAudioOff(t *testing.T) {
	env := newCLI(t)
	env.prober.noAudio = true
	out := env.mustRun(t, "open", env.writeVideo(t, "silent.mp4"))
	assert.Contains(t, out, "No audio stream found")
	assert.Contains(t, env.mustRun(t, "audio", "on"), "Audio: on")
}

func TestOpenMissingFile(t *testing.T) {
	env := newCLI(t)
	_, err := env.run("open", filepath.Join(env.dir, "nope.mp4"))
	assert.ErrorContains(t, err, "failed to open video")
}

func TestRangeRequiresVideo(t *testing.T) {
	_, err := newCLI(t).run("range", "1", "2")
	assert.ErrorIs(t, err, errNoVideo)
}

func TestRangeAcceptedAndRejected(t *testing.T) {
	env := newCLI(t)
	env.mustRun(t, "open", env.writeVideo(t, "game.mp4"))

	out := env.mustRun(t, "range", "0:10", "20.5")
	assert.Contains(t, out, "Range set: 0:00:10.000 - 0:00:20.500")

	_, err := env.run("range", "30", "0:20")
	assert.ErrorContains(t, err, "Invalid time range")

	status := env.mustRun(t, "status")
	assert.Contains(t, status, "0:00:10.000", "rejected range keeps the previous one")
	assert.Contains(t, status, "Invalid time range")

	_, err = env.run("range", "5", "2:00")
	assert.ErrorContains(t, err, "Invalid time range")

	_, err = env.run("range", "abc", "10")
	assert.ErrorContains(t, err, "invalid start time")
}

func TestAudioModes(t *testing.T) {
	env := newCLI(t)
	env.mustRun(t, "open", env.writeVideo(t, "game.mp4"))

	assert.Contains(t, env.mustRun(t, "audio"), "Audio: off")
	assert.Contains(t, env.mustRun(t, "audio", "toggle"), "Audio: on")
	assert.Contains(t, env.mustRun(t, "audio", "off"), "Audio: off")
	assert.Contains(t, env.mustRun(t, "audio", "true"), "Audio: on")

	_, err := env.run("audio", "loud")
	assert.ErrorContains(t, err, "expected on, off, or toggle")
}

func TestExportWritesClip(t *testing.T) {
	env := newCLI(t)
	env.mustRun(t, "open", env.writeVideo(t, "Match Day.mp4"))
	env.mustRun(t, "range", "5", "15")

	out := env.mustRun(t, "export")
	dest := filepath.Join(env.outDir, "match_day-000005-000015.mp4")
	assert.Contains(t, out, "Clip written: "+dest)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))

	_, err = env.run("export")
	assert.ErrorContains(t, err, "already exists")
	env.mustRun(t, "export", "--force")

	env.mustRun(t, "audio", "off")
	env.mustRun(t, "export")
	assert.FileExists(t, filepath.Join(env.outDir, "match_day-000005-000015-noaudio.mp4"))

	custom := filepath.Join(env.dir, "nested", "pick.mp4")
	env.mustRun(t, "export", "-o", custom)
	assert.FileExists(t, custom)
}

func TestExportFailureIsStoredInSession(t *testing.T) {
	env := newCLI(t)
	env.mustRun(t, "open", env.writeVideo(t, "game.mp4"))
	env.execErr = assert.AnError

	_, err := env.run("export")
	assert.EqualError(t, err, "failed to process video (execution failed)")
	assert.NoFileExists(t, filepath.Join(env.outDir, "game-000000-000130.mp4"))

	status := env.mustRun(t, "status")
	assert.Contains(t, status, "failed to process video (execution failed)")
}

func TestExportRequiresVideo(t *testing.T) {
	_, err := newCLI(t).run("export")
	assert.ErrorIs(t, err, errNoVideo)
}

func TestResetClearsSession(t *testing.T) {
	env := newCLI(t)
	env.mustRun(t, "open", env.writeVideo(t, "game.mp4"))

	assert.Contains(t, env.mustRun(t, "reset"), "Session cleared.")
	status := env.mustRun(t, "status")
	assert.Contains(t, status, "(none)")
	assert.Contains(t, status, "0:00:00.000")
}

func TestRecentListsOpenedVideos(t *testing.T) {
	env := newCLI(t)
	assert.Contains(t, env.mustRun(t, "recent"), "No videos opened yet.")

	env.mustRun(t, "open", env.writeVideo(t, "first.mp4"))
	env.mustRun(t, "open", env.writeVideo(t, "second.mp4"))

	out := env.mustRun(t, "recent", "-n", "1")
	assert.Contains(t, out, "second.mp4")
	assert.NotContains(t, out, "first.mp4")
}

func TestConfigInitAndShow(t *testing.T) {
	env := newCLI(t)
	target := filepath.Join(env.dir, "generated", "config.toml")

	out := env.mustRun(t, "config", "init", "--path", target)
	assert.Contains(t, out, target)
	assert.FileExists(t, target)

	_, err := env.run("config", "init", "--path", target)
	assert.Error(t, err, "existing config is not overwritten")

	show := env.mustRun(t, "config", "show")
	assert.Contains(t, show, "# "+env.configPath)
	assert.Contains(t, show, "[engine]")
	assert.Contains(t, show, filepath.ToSlash(env.outDir))
}

func TestDoctorLoadsEngine(t *testing.T) {
	env := newCLI(t)
	// The tool check depends on the host PATH, so only the output is checked.
	out, _ := env.run("doctor", "--load")
	assert.Contains(t, out, "ffmpeg")
	assert.Contains(t, out, "path:ffmpeg")
	assert.Contains(t, out, "Engine loaded successfully.")
}

func TestShouldSkipConfig(t *testing.T) {
	root := buildRootCommand(&commandContext{})
	cmd, _, err := root.Find([]string{"config", "init"})
	require.NoError(t, err)
	assert.True(t, shouldSkipConfig(cmd))

	cmd, _, err = root.Find([]string{"status"})
	require.NoError(t, err)
	assert.False(t, shouldSkipConfig(cmd))
}

func TestStatusPairsWithoutVideo(t *testing.T) {
	pairs := statusPairs(session.State{Error: "boom"})
	assert.Equal(t, [2]string{"Video", "(none)"}, pairs[0])
	assert.Equal(t, [2]string{"Error", "boom"}, pairs[len(pairs)-1])
}
