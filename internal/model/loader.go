package model

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// PrepareFunc makes a bundle available locally and returns its directory.
type PrepareFunc func(ctx context.Context) (string, error)

// Loader loads the model at most once per process. The outcome of the first
// load, success or failure, is returned to every later caller.
type Loader struct {
	prepare PrepareFunc
	logger  *slog.Logger

	mu    sync.Mutex
	done  bool
	err   error
	state atomic.Pointer[State]
	loads atomic.Int64
}

func NewLoader(prepare PrepareFunc, logger *slog.Logger) *Loader {
	return &Loader{prepare: prepare, logger: logger}
}

// NewDirLoader loads from a fixed directory without fetching.
func NewDirLoader(dir string, logger *slog.Logger) *Loader {
	return NewLoader(func(context.Context) (string, error) { return dir, nil }, logger)
}

// Load returns the shared state, preparing and loading it on first use.
// Concurrent first callers wait for the single load in progress.
func (l *Loader) Load(ctx context.Context) (*State, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done {
		return l.state.Load(), l.err
	}

	l.loads.Add(1)
	start := time.Now()

	state, err := l.load(ctx)
	l.done = true
	if err != nil {
		l.err = err
		l.logger.Error("model load failed", "error", err, "duration", time.Since(start).Round(time.Millisecond))
		return nil, err
	}

	l.state.Store(state)
	meta := state.Metadata()
	l.logger.Info("model loaded",
		"dir", meta.Dir,
		"estimator", meta.EstimatorType,
		"scores", meta.ScoreKind,
		"labels", meta.Labels,
		"features", meta.Features,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return state, nil
}

func (l *Loader) load(ctx context.Context) (*State, error) {
	dir, err := l.prepare(ctx)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadDir(dir)
}

// Current returns the loaded state, or nil before a successful load. It
// never blocks.
func (l *Loader) Current() *State {
	return l.state.Load()
}

// Loads reports how many load attempts ran.
func (l *Loader) Loads() int64 {
	return l.loads.Load()
}
