package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.Engine.BaseURL = strings.TrimSpace(c.Engine.BaseURL)
	if c.Engine.BaseURL == "" {
		c.Engine.BaseURL = defaultEngineBaseURL
	}
	c.Engine.BaseURL = strings.TrimRight(c.Engine.BaseURL, "/")
	if isLocalPath(c.Engine.BaseURL) {
		expanded, err := expandPath(c.Engine.BaseURL)
		if err != nil {
			return fmt.Errorf("engine.base_url: %w", err)
		}
		c.Engine.BaseURL = expanded
	}

	for _, field := range []*string{&c.Engine.Core, &c.Engine.Binary, &c.Engine.Worker} {
		*field = strings.TrimSpace(*field)
	}
	if c.Engine.Core == "" {
		c.Engine.Core = defaultEngineCore
	}
	if c.Engine.Binary == "" {
		c.Engine.Binary = defaultEngineBinary
	}
	if c.Engine.LoadTimeoutSeconds == 0 {
		c.Engine.LoadTimeoutSeconds = defaultLoadTimeoutSeconds
	}

	var err error
	if c.Engine.CacheDir, err = expandPath(c.Engine.CacheDir); err != nil {
		return fmt.Errorf("engine.cache_dir: %w", err)
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}

	c.Preview.MpvSocket = strings.TrimSpace(c.Preview.MpvSocket)
	if c.Preview.MpvSocket == "" {
		c.Preview.MpvSocket = defaultMpvSocket
	}
	return nil
}

// isLocalPath reports whether a base URL refers to a directory on disk.
func isLocalPath(base string) bool {
	if base == "system" || strings.Contains(base, "://") {
		return false
	}
	return true
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return abs, nil
}
