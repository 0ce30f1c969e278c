// Package monitor samples host and process resources for the status
// endpoint and the fetcher's disk pre-flight.
package monitor

import "time"

type Monitor interface {
	Name() string
	Collect() (any, error)
}

// MemoryState is host memory plus ModelBytes, the on-disk size of the
// loaded bundle.
type MemoryState struct {
	UsedBytes      uint64  `json:"used_bytes"`
	TotalBytes     uint64  `json:"total_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	UsagePercent   float64 `json:"usage_percent"`
	ModelBytes     uint64  `json:"model_bytes,omitempty"`
}

type DiskState struct {
	FreeBytes    uint64  `json:"free_bytes"`
	UsedBytes    uint64  `json:"used_bytes"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// StorageState is keyed by the watched path, not the mount point.
type StorageState map[string]DiskState

// ProcessState describes the tagger process itself.
type ProcessState struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
	Goroutines int     `json:"goroutines"`
}

type Snapshot struct {
	Memory    MemoryState  `json:"memory"`
	Storage   StorageState `json:"storage"`
	Process   ProcessState `json:"process"`
	Timestamp time.Time    `json:"timestamp"`
}

// ModelFootprint is process RSS per byte of loaded bundle, 0 until both are
// known.
func (s *Snapshot) ModelFootprint() float64 {
	if s.Memory.ModelBytes == 0 || s.Process.RSSBytes == 0 {
		return 0
	}
	return float64(s.Process.RSSBytes) / float64(s.Memory.ModelBytes)
}

func (s *Snapshot) Clone() *Snapshot {
	clone := *s
	clone.Storage = make(StorageState, len(s.Storage))
	for k, v := range s.Storage {
		clone.Storage[k] = v
	}
	return &clone
}
