package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrInitializationFailed is the only error Manager.Load reports. The underlying
// cause is logged, never returned, so callers see a stable message.
var ErrInitializationFailed = errors.New("failed to initialize video processing")

// Factory creates a fresh, unloaded engine.
type Factory func() Engine

// Manager lazily provisions exactly one ready engine per process.
//
// State machine: Unloaded -> Loading -> Ready, or Loading -> Unloaded on
// failure. A failed load retains nothing, so the next Load starts over.
type Manager struct {
	factory   Factory
	resources Resources
	logger    zerolog.Logger

	// done is cancelled by Close and aborts a load nobody can use any more.
	done     context.Context
	shutdown context.CancelFunc

	group    singleflight.Group
	mu       sync.RWMutex
	engine   Engine
	closed   bool
	progress atomic.Uint64
	loads    atomic.Int64
}

// NewManager returns a manager that builds engines with factory and loads them with res.
func NewManager(factory Factory, res Resources, logger zerolog.Logger) *Manager {
	done, shutdown := context.WithCancel(context.Background())
	return &Manager{
		factory:   factory,
		resources: res,
		logger:    logger,
		done:      done,
		shutdown:  shutdown,
	}
}

// Load makes the engine ready. It returns immediately when already ready and
// collapses concurrent callers onto a single load sequence.
//
// The shared load is not bound to any one caller's context: a caller whose
// context ends stops waiting and gets ErrInitializationFailed, while the load
// carries on for the others until it finishes or the manager is closed.
func (m *Manager) Load(ctx context.Context) (Engine, error) {
	if eng := m.Engine(); eng != nil {
		return eng, nil
	}

	ch := m.group.DoChan("load", func() (interface{}, error) {
		if eng := m.Engine(); eng != nil {
			return eng, nil
		}
		loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		defer cancel()
		stop := context.AfterFunc(m.done, cancel)
		defer stop()
		return m.load(loadCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Engine), nil
	case <-ctx.Done():
		m.logger.Warn().Err(ctx.Err()).Msg("stopped waiting for engine load")
		return nil, ErrInitializationFailed
	}
}

func (m *Manager) load(ctx context.Context) (Engine, error) {
	m.loads.Add(1)
	eng := m.factory()
	eng.OnProgress(m.setProgress)

	if err := eng.Load(ctx, m.resources); err != nil {
		m.logger.Error().Err(err).
			Str("core", m.resources.Core).
			Str("binary", m.resources.Binary).
			Str("worker", m.resources.Worker).
			Msg("failed to load engine")
		m.release(eng, "failed to release engine after load failure")
		return nil, ErrInitializationFailed
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.release(eng, "failed to release engine loaded after close")
		return nil, ErrInitializationFailed
	}
	m.engine = eng
	m.mu.Unlock()
	m.logger.Info().Msg("engine ready")
	return eng, nil
}

func (m *Manager) release(eng Engine, msg string) {
	if err := eng.Close(); err != nil {
		m.logger.Warn().Err(err).Msg(msg)
	}
}

// Ready reports whether an engine has been loaded.
func (m *Manager) Ready() bool {
	return m.Engine() != nil
}

// Engine returns the loaded engine, or nil before a successful Load.
func (m *Manager) Engine() Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

// Progress returns the engine's load progress.
func (m *Manager) Progress() float64 {
	return math.Float64frombits(m.progress.Load())
}

// LoadAttempts returns how many load sequences have been started.
func (m *Manager) LoadAttempts() int64 {
	return m.loads.Load()
}

func (m *Manager) setProgress(ratio float64) {
	if math.IsNaN(ratio) {
		return
	}
	ratio = math.Max(0, math.Min(1, ratio))
	m.progress.Store(math.Float64bits(ratio))
}

// Close releases the loaded engine and aborts a load in progress. The manager
// must not be reused afterwards.
func (m *Manager) Close() error {
	m.shutdown()
	m.mu.Lock()
	eng := m.engine
	m.engine = nil
	m.closed = true
	m.mu.Unlock()
	if eng == nil {
		return nil
	}
	return eng.Close()
}
