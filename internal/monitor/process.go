package monitor

import (
	"os"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

type ProcessMonitor struct {
	mu   sync.Mutex
	proc *process.Process
}

func NewProcessMonitor() *ProcessMonitor {
	return &ProcessMonitor{}
}

func (m *ProcessMonitor) Name() string {
	return "process"
}

func (m *ProcessMonitor) Collect() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.proc == nil {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return nil, err
		}
		m.proc = p
	}

	state := &ProcessState{
		PID:        m.proc.Pid,
		Goroutines: runtime.NumGoroutine(),
	}

	mem, err := m.proc.MemoryInfo()
	if err != nil {
		return nil, err
	}
	state.RSSBytes = mem.RSS

	// CPU and thread counts are best effort on restricted hosts.
	if pct, err := m.proc.CPUPercent(); err == nil {
		state.CPUPercent = pct
	}
	if n, err := m.proc.NumThreads(); err == nil {
		state.Threads = n
	}

	return state, nil
}
