package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Metrics struct for basic monitoring
type Metrics struct {
	Timestamp   time.Time              `json:"timestamp"`
	Uptime      string                 `json:"uptime"`
	Goroutines  int                    `json:"goroutines"`
	HeapAlloc   string                 `json:"heap_alloc"`
	ProcessRSS  string                 `json:"process_rss,omitempty"`
	ProcessCPU  float64                `json:"process_cpu_percent"`
	Threads     int32                  `json:"threads,omitempty"`
	TaskManager map[string]interface{} `json:"tasks,omitempty"`
}

// GetMetrics reports runtime and process statistics
func (h *Handlers) GetMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	metrics := Metrics{
		Timestamp:  time.Now(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  megabytes(m.Alloc),
	}

	proc, err := process.NewProcessWithContext(r.Context(), int32(os.Getpid()))
	if err != nil {
		slog.Debug("process stats unavailable", "error", err)
	} else {
		if mem, err := proc.MemoryInfoWithContext(r.Context()); err == nil {
			metrics.ProcessRSS = megabytes(mem.RSS)
		}
		if cpu, err := proc.CPUPercentWithContext(r.Context()); err == nil {
			metrics.ProcessCPU = cpu
		}
		if n, err := proc.NumThreadsWithContext(r.Context()); err == nil {
			metrics.Threads = n
		}
	}

	if h.taskManager != nil {
		metrics.TaskManager = h.taskManager.GetStats()
	}

	writeJSON(w, http.StatusOK, metrics)
}

func megabytes(b uint64) string {
	return fmt.Sprintf("%.2f MB", float64(b)/1024/1024)
}
