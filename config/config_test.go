package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, path, resolved)
	assert.Equal(t, "system", cfg.Engine.BaseURL)
	assert.Equal(t, "ffmpeg", cfg.Engine.Core)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.True(t, filepath.IsAbs(cfg.Paths.DatabasePath))
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[engine]
base_url = "https://cdn.example.com/ffmpeg/"
cache_dir = "` + filepath.ToSlash(filepath.Join(dir, "cache")) + `"

[logging]
level = "DEBUG"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "https://cdn.example.com/ffmpeg", cfg.Engine.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "SHA256SUMS", cfg.Engine.Worker)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\nbogus = 1\n"), 0o644))

	_, _, _, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.normalize())
	cfg.Engine.BaseURL = "ftp://example.com"
	cfg.Engine.Core = "bin/ffmpeg"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
	assert.Contains(t, err.Error(), "engine.core")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidateRequiresManifestForRemoteBase(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.normalize())
	cfg.Engine.BaseURL = "https://cdn.example.com"
	cfg.Engine.Worker = ""

	require.ErrorContains(t, cfg.Validate(), "engine.worker")
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	written, err := WriteSample(path)
	require.NoError(t, err)

	cfg, _, exists, err := Load(written)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, Default().Engine.Worker, cfg.Engine.Worker)

	_, err = WriteSample(path)
	require.Error(t, err)
}

func TestEncodeIncludesEngineSection(t *testing.T) {
	cfg := Default()
	out, err := cfg.Encode()
	require.NoError(t, err)
	assert.Contains(t, out, "base_url")
	assert.Contains(t, out, "system")
}
