package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Aggregator polls its monitors on an interval and keeps the latest
// snapshot.
type Aggregator struct {
	monitors []Monitor
	state    *Snapshot
	interval time.Duration
	mu       sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

func NewAggregator(monitors []Monitor, interval time.Duration, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		monitors: monitors,
		state:    &Snapshot{Storage: make(StorageState)},
		interval: interval,
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// NewDefault watches host memory against the loaded bundle size, the volume
// holding modelDir and the current process.
func NewDefault(modelDir string, modelBytes func() int64, interval time.Duration, logger *slog.Logger) *Aggregator {
	return NewAggregator([]Monitor{
		NewMemoryMonitor(modelBytes),
		NewStorageMonitor([]string{modelDir}),
		NewProcessMonitor(),
	}, interval, logger)
}

func (a *Aggregator) Start(ctx context.Context) error {
	a.collect()

	go a.runLoop(ctx)

	a.logger.Debug("resource monitor started", "interval", a.interval, "monitors", len(a.monitors))
	return nil
}

func (a *Aggregator) Stop() error {
	a.stopOnce.Do(func() {
		close(a.done)
		a.logger.Debug("resource monitor stopped")
	})
	return nil
}

func (a *Aggregator) Snapshot() *Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone()
}

func (a *Aggregator) runLoop(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.collect()
		case <-ctx.Done():
			return
		case <-a.done:
			return
		}
	}
}

func (a *Aggregator) collect() {
	next := &Snapshot{
		Timestamp: time.Now(),
		Storage:   make(StorageState),
	}

	for _, m := range a.monitors {
		data, err := m.Collect()
		if err != nil {
			a.logger.Warn("monitor collection failed",
				"monitor", m.Name(),
				"error", err,
			)
			continue
		}

		switch v := data.(type) {
		case *MemoryState:
			next.Memory = *v
		case StorageState:
			next.Storage = v
		case *ProcessState:
			next.Process = *v
		}
	}

	a.mu.Lock()
	a.state = next
	a.mu.Unlock()
}
