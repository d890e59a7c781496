package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Engine.BaseURL != "system" && strings.Contains(c.Engine.BaseURL, "://") {
		u, err := url.Parse(c.Engine.BaseURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("engine.base_url: %w", err))
		} else if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
			errs = append(errs, fmt.Errorf("engine.base_url: unsupported scheme %q", u.Scheme))
		}
	}
	if c.Engine.BaseURL != "system" && c.Engine.Worker == "" {
		errs = append(errs, errors.New("engine.worker must be set when engine.base_url is not \"system\""))
	}
	if c.Engine.CacheDir == "" {
		errs = append(errs, errors.New("engine.cache_dir must be set"))
	}
	if c.Engine.LoadTimeoutSeconds < 0 {
		errs = append(errs, errors.New("engine.load_timeout_seconds must be >= 0"))
	}
	for name, value := range map[string]string{
		"engine.core":   c.Engine.Core,
		"engine.binary": c.Engine.Binary,
		"engine.worker": c.Engine.Worker,
	} {
		if strings.ContainsAny(value, `/\`) {
			errs = append(errs, fmt.Errorf("%s must be a plain file name, got %q", name, value))
		}
	}
	if c.Paths.DatabasePath == "" {
		errs = append(errs, errors.New("paths.database_path must be set"))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not recognised", c.Logging.Level))
	}

	return errors.Join(errs...)
}
