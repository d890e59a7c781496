package cmd

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/user/clip-trimmer/config"
	"github.com/user/clip-trimmer/db"
	"github.com/user/clip-trimmer/deps"
	"github.com/user/clip-trimmer/editor"
	"github.com/user/clip-trimmer/engine"
	"github.com/user/clip-trimmer/logging"
	"github.com/user/clip-trimmer/session"
)

// errNoVideo is returned by commands that need an opened video.
var errNoVideo = errors.New("no video selected; run `clip-trimmer open <video>` first")

type commandContext struct {
	configFlag   string
	logLevelFlag string

	// engineFactory and prober replace the real engine in tests.
	engineFactory engine.Factory
	prober        editor.Prober

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
	logger     zerolog.Logger
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		level := cfg.Logging.Level
		if flag := strings.TrimSpace(c.logLevelFlag); flag != "" {
			level = flag
		}
		c.logger = logging.Configure(logging.Config{Level: level, Format: cfg.Logging.Format})
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// openSession opens the database and restores the persisted session into a store.
func (c *commandContext) openSession() (*sql.DB, *session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	database, err := db.Open(cfg.Paths.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	st, err := db.LoadSession(database)
	if err != nil {
		database.Close()
		return nil, nil, err
	}
	store := session.New()
	store.Restore(st)
	return database, store, nil
}

func (c *commandContext) saveSession(database *sql.DB, store *session.Store) error {
	return db.SaveSession(database, store.Snapshot())
}

// newEditor wires an engine manager, the clip pipeline, and store together.
// Callers must Close the returned manager.
func (c *commandContext) newEditor(store *session.Store) (*editor.Editor, *engine.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	res, err := engine.ResolveResources(cfg.Engine.BaseURL, engine.ResourceNames{
		Core:   cfg.Engine.Core,
		Binary: cfg.Engine.Binary,
		Worker: cfg.Engine.Worker,
	})
	if err != nil {
		return nil, nil, err
	}

	factory := c.engineFactory
	if factory == nil {
		if strings.HasPrefix(res.Core, "path:") {
			if err := deps.CheckRequired(); err != nil {
				return nil, nil, err
			}
		}
		engineLogger := logging.WithComponent("engine")
		factory = func() engine.Engine {
			return engine.NewFFmpeg(engine.Options{
				CacheDir:   cfg.Engine.CacheDir,
				HTTPClient: &http.Client{Timeout: c.loadTimeout()},
				Logger:     engineLogger,
			})
		}
	}
	manager := engine.NewManager(factory, res, logging.WithComponent("engine_manager").With().Str(logging.FieldBaseURL, cfg.Engine.BaseURL).Logger())

	var opts []editor.Option
	if c.prober != nil {
		opts = append(opts, editor.WithProber(c.prober))
	}
	return editor.New(manager, store, logging.WithComponent("editor"), opts...), manager, nil
}

// loadTimeout bounds engine initialization; zero means no limit.
func (c *commandContext) loadTimeout() time.Duration {
	if c.config == nil || c.config.Engine.LoadTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.config.Engine.LoadTimeoutSeconds) * time.Second
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
