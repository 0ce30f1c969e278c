package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockMonitor struct {
	name string
	data any
	err  error
}

func (m *mockMonitor) Name() string {
	return m.name
}

func (m *mockMonitor) Collect() (any, error) {
	return m.data, m.err
}

func TestAggregator_Snapshot(t *testing.T) {
	monitors := []Monitor{
		&mockMonitor{
			name: "memory",
			data: &MemoryState{UsedBytes: 1024, TotalBytes: 2048, UsagePercent: 50.0},
		},
		&mockMonitor{
			name: "process",
			data: &ProcessState{PID: 42, RSSBytes: 4096, Goroutines: 3},
		},
		&mockMonitor{
			name: "storage",
			data: StorageState{"models": {FreeBytes: 10, TotalBytes: 20}},
		},
	}

	agg := NewAggregator(monitors, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := agg.Start(ctx); err != nil {
		t.Fatalf("failed to start aggregator: %v", err)
	}
	defer func() { _ = agg.Stop() }()

	snap := agg.Snapshot()

	if snap.Memory.UsagePercent != 50.0 {
		t.Errorf("expected memory usage 50.0, got %f", snap.Memory.UsagePercent)
	}
	if snap.Process.PID != 42 {
		t.Errorf("expected pid 42, got %d", snap.Process.PID)
	}
	if snap.Storage["models"].FreeBytes != 10 {
		t.Errorf("expected 10 free bytes, got %d", snap.Storage["models"].FreeBytes)
	}
	if snap.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}
}

func TestAggregator_FailingMonitorSkipped(t *testing.T) {
	monitors := []Monitor{
		&mockMonitor{name: "memory", err: errors.New("boom")},
		&mockMonitor{name: "process", data: &ProcessState{PID: 7}},
	}

	agg := NewAggregator(monitors, time.Second, testLogger())
	if err := agg.Start(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	defer func() { _ = agg.Stop() }()

	snap := agg.Snapshot()
	if snap.Memory.TotalBytes != 0 {
		t.Errorf("expected empty memory state, got %+v", snap.Memory)
	}
	if snap.Process.PID != 7 {
		t.Errorf("expected pid 7, got %d", snap.Process.PID)
	}
}

func TestSnapshot_Clone(t *testing.T) {
	snap := &Snapshot{
		Storage: StorageState{
			"/": {UsedBytes: 100, TotalBytes: 200},
		},
	}

	clone := snap.Clone()
	snap.Storage["/tmp"] = DiskState{}

	if _, exists := clone.Storage["/tmp"]; exists {
		t.Error("clone storage should not have /tmp")
	}
	if clone.Storage["/"].TotalBytes != 200 {
		t.Errorf("clone lost entry: %+v", clone.Storage)
	}
}

func TestSnapshot_JSON(t *testing.T) {
	snap := &Snapshot{
		Memory:  MemoryState{UsagePercent: 25.5},
		Storage: StorageState{},
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, want := range []string{`"usage_percent":25.5`, `"rss_bytes"`, `"storage"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s should contain %s", data, want)
		}
	}
}

func TestAggregator_IntegrationWithRealMonitors(t *testing.T) {
	agg := NewDefault(t.TempDir(), nil, 100*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := agg.Start(ctx); err != nil {
		t.Fatalf("failed to start aggregator: %v", err)
	}
	defer func() { _ = agg.Stop() }()

	time.Sleep(150 * time.Millisecond)

	snap := agg.Snapshot()

	if snap.Memory.TotalBytes == 0 {
		t.Error("memory total should not be zero")
	}
	if len(snap.Storage) == 0 {
		t.Error("expected one storage entry")
	}
	if snap.Process.RSSBytes == 0 {
		t.Error("expected non-zero RSS")
	}
}

func TestAggregator_StopIdempotent(t *testing.T) {
	agg := NewAggregator(nil, time.Second, testLogger())

	if err := agg.Start(context.Background()); err != nil {
		t.Fatalf("failed to start: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := agg.Stop(); err != nil {
			t.Errorf("Stop() returned error on call %d: %v", i+1, err)
		}
	}
}
