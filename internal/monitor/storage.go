package monitor

import (
	"github.com/shirou/gopsutil/v4/disk"
)

type StorageMonitor struct {
	paths []string
}

func NewStorageMonitor(paths []string) *StorageMonitor {
	if len(paths) == 0 {
		paths = []string{"/"}
	}
	return &StorageMonitor{paths: paths}
}

func (m *StorageMonitor) Name() string {
	return "storage"
}

func (m *StorageMonitor) Collect() (any, error) {
	state := make(StorageState)

	for _, path := range m.paths {
		usage, err := disk.Usage(path)
		if err != nil {
			// Model dir may not exist yet before the first fetch.
			continue
		}

		state[path] = DiskState{
			FreeBytes:    usage.Free,
			UsedBytes:    usage.Used,
			TotalBytes:   usage.Total,
			UsagePercent: usage.UsedPercent,
		}
	}

	return state, nil
}

// DiskFree reports the bytes available on the volume holding path.
func DiskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
