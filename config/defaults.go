package config

const (
	defaultConfigPath         = "~/.config/clip-trimmer/config.toml"
	defaultEngineBaseURL      = "system"
	defaultEngineCacheDir     = "~/.cache/clip-trimmer/engine"
	defaultEngineCore         = "ffmpeg"
	defaultEngineBinary       = "ffprobe"
	defaultEngineWorker       = "SHA256SUMS"
	defaultLoadTimeoutSeconds = 300
	defaultDatabasePath       = "~/.local/share/clip-trimmer/data.db"
	defaultOutputDir          = "."
	defaultLogLevel           = "warn"
	defaultLogFormat          = "console"
	defaultMpvSocket          = "/tmp/clip-trimmer-mpv.sock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Engine: Engine{
			BaseURL:            defaultEngineBaseURL,
			CacheDir:           defaultEngineCacheDir,
			Core:               defaultEngineCore,
			Binary:             defaultEngineBinary,
			Worker:             defaultEngineWorker,
			LoadTimeoutSeconds: defaultLoadTimeoutSeconds,
		},
		Paths: Paths{
			DatabasePath: defaultDatabasePath,
			OutputDir:    defaultOutputDir,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Preview: Preview{
			MpvSocket: defaultMpvSocket,
		},
	}
}
