package system

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// frameBudget is the memory a single composite or frame batch may need.
const frameBudget = 256 << 20

type Snapshot struct {
	LogicalCPUs  int
	TotalMemory  uint64
	AvailMemory  uint64
	UsedPercent  float64
	GoRoutines   int
	PoolCreated  int64
	PoolRecycled int64
}

// TakeSnapshot reads host CPU and memory figures. Fields that cannot be
// read stay zero.
func TakeSnapshot() Snapshot {
	s := Snapshot{GoRoutines: runtime.NumGoroutine()}
	if n, err := cpu.Counts(true); err == nil {
		s.LogicalCPUs = n
	} else {
		s.LogicalCPUs = runtime.NumCPU()
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.TotalMemory = vm.Total
		s.AvailMemory = vm.Available
		s.UsedPercent = vm.UsedPercent
	}
	s.PoolCreated, s.PoolRecycled = PoolStats()
	return s
}

func (s Snapshot) String() string {
	return fmt.Sprintf("CPU: %d | RAM: %.1f/%.1f GB (%.0f%%) | Goroutines: %d | Frames: %d new, %d reused",
		s.LogicalCPUs,
		float64(s.TotalMemory-s.AvailMemory)/(1<<30), float64(s.TotalMemory)/(1<<30), s.UsedPercent,
		s.GoRoutines, s.PoolCreated, s.PoolRecycled)
}

// RecommendedWorkers caps want by CPU count and by available memory.
// want <= 0 means "as many as the host allows".
func RecommendedWorkers(want int, s Snapshot) int {
	limit := s.LogicalCPUs
	if limit <= 0 {
		limit = 1
	}
	if s.AvailMemory > 0 {
		byMem := int(s.AvailMemory / frameBudget)
		if byMem < 1 {
			byMem = 1
		}
		limit = min(limit, byMem)
	}
	if want <= 0 || want > limit {
		return limit
	}
	return want
}
