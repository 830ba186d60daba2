package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// MemoryStats is one runtime.MemStats sample
type MemoryStats struct {
	HeapAlloc    uint64    `json:"heap_alloc_bytes"`
	HeapInuse    uint64    `json:"heap_inuse_bytes"`
	HeapSys      uint64    `json:"heap_sys_bytes"`
	Sys          uint64    `json:"sys_bytes"`
	NumGC        uint32    `json:"num_gc"`
	NumGoroutine int       `json:"num_goroutine"`
	Timestamp    time.Time `json:"timestamp"`
}

// ReadMemoryStats samples the runtime now
func ReadMemoryStats() MemoryStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return MemoryStats{
		HeapAlloc:    ms.HeapAlloc,
		HeapInuse:    ms.HeapInuse,
		HeapSys:      ms.HeapSys,
		Sys:          ms.Sys,
		NumGC:        ms.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
		Timestamp:    time.Now(),
	}
}

// MemoryMonitor samples memory on an interval and logs each sample as a
// system event. PDF rendering is the only allocation-heavy path.
type MemoryMonitor struct {
	interval time.Duration
	logger   *Logger

	mutex sync.RWMutex
	last  MemoryStats
}

// NewMemoryMonitor creates a new memory monitor
func NewMemoryMonitor(interval time.Duration, logger *Logger) *MemoryMonitor {
	return &MemoryMonitor{interval: interval, logger: logger}
}

// Run samples until ctx is done
func (mm *MemoryMonitor) Run(ctx context.Context) {
	mm.collect()

	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mm.collect()
		}
	}
}

func (mm *MemoryMonitor) collect() {
	stats := ReadMemoryStats()

	mm.mutex.Lock()
	mm.last = stats
	mm.mutex.Unlock()

	mm.logger.SystemLogger("memory_stats", fmt.Sprintf(
		"heap:%dKB/%dKB sys:%dKB gc:%d goroutines:%d",
		stats.HeapInuse/1024,
		stats.HeapSys/1024,
		stats.Sys/1024,
		stats.NumGC,
		stats.NumGoroutine,
	))
}

// Last returns the most recent sample, zero before the first one
func (mm *MemoryMonitor) Last() MemoryStats {
	mm.mutex.RLock()
	defer mm.mutex.RUnlock()
	return mm.last
}

// GetStats returns a fresh sample with derived heap utilization
func (mm *MemoryMonitor) GetStats() map[string]interface{} {
	stats := ReadMemoryStats()

	heapUtilization := float64(0)
	if stats.HeapSys > 0 {
		heapUtilization = float64(stats.HeapInuse) / float64(stats.HeapSys)
	}

	return map[string]interface{}{
		"heap_alloc_kb":    stats.HeapAlloc / 1024,
		"heap_inuse_kb":    stats.HeapInuse / 1024,
		"sys_kb":           stats.Sys / 1024,
		"num_gc":           stats.NumGC,
		"num_goroutine":    stats.NumGoroutine,
		"heap_utilization": heapUtilization,
	}
}
