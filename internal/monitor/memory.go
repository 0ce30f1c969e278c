package monitor

import (
	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryMonitor samples host memory next to the on-disk size of the loaded
// model bundle, which bounds how much a reload will allocate.
type MemoryMonitor struct {
	modelBytes func() int64
}

// NewMemoryMonitor takes the size of the loaded bundle, 0 while none is
// loaded. A nil modelBytes reports no model.
func NewMemoryMonitor(modelBytes func() int64) *MemoryMonitor {
	return &MemoryMonitor{modelBytes: modelBytes}
}

func (m *MemoryMonitor) Name() string {
	return "memory"
}

func (m *MemoryMonitor) Collect() (any, error) {
	v, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}

	state := &MemoryState{
		UsedBytes:      v.Used,
		TotalBytes:     v.Total,
		AvailableBytes: v.Available,
		UsagePercent:   v.UsedPercent,
	}
	if m.modelBytes != nil {
		if n := m.modelBytes(); n > 0 {
			state.ModelBytes = uint64(n)
		}
	}
	return state, nil
}
