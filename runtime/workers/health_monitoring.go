package workers

import (
	"chatline/domain"
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthMonitoringWorker samples the resource usage of the server process
// and keeps the latest sample for the health endpoint.
type HealthMonitoringWorker struct {
	mu             sync.RWMutex
	log            *slog.Logger
	metricInterval time.Duration
	pid            int32
	last           domain.ProcessStats
}

func NewHealthMonitoringWorker(log *slog.Logger, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		metricInterval: metricInterval,
		pid:            int32(os.Getpid()),
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	w.sample(p)

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *HealthMonitoringWorker) sample(p *process.Process) {
	stats := domain.ProcessStats{
		PID:        domain.PID(w.pid),
		Goroutines: goruntime.NumGoroutine(),
		SampledAt:  time.Now().UTC(),
		Status:     domain.UNKNOWN,
	}
	if status, err := p.Status(); err == nil {
		stats.Status = domain.ToStatus(status)
	} else {
		w.log.Debug("Error while finding process status", "err", err)
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	} else {
		w.log.Debug("Error while finding process cpu usage", "err", err)
	}
	if mem, err := p.MemoryInfo(); err == nil {
		stats.RSSBytes = mem.RSS
	} else {
		w.log.Debug("Error while finding process ram usage", "err", err)
	}

	w.mu.Lock()
	w.last = stats
	w.mu.Unlock()
}

// Last returns the latest sample, zero valued before the first one.
func (w *HealthMonitoringWorker) Last() domain.ProcessStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}
