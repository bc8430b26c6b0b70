package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"
)

// Reporter periodically logs mirror throughput along with the process
// resource usage, so a long-running daemon leaves a trace of how it is
// doing in the logs.
type Reporter struct {
	mu     sync.Mutex
	logger *slog.Logger

	collector *Collector
	limiter   *Limiter
	interval  time.Duration

	// Own process handle for cpu and memory readings
	proc *process.Process

	// Control channels
	stopCh     chan struct{}
	doneCh     chan struct{}
	intervalCh chan time.Duration

	running bool
}

// NewReporter creates a Reporter over the given counters.
func NewReporter(collector *Collector, limiter *Limiter, interval time.Duration, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}

	// Failure to resolve our own pid just disables the cpu/rss fields.
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		proc = nil
	}

	return &Reporter{
		logger:     logger,
		collector:  collector,
		limiter:    limiter,
		interval:   interval,
		proc:       proc,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		intervalCh: make(chan time.Duration, 1),
	}
}

// SetInterval changes the reporting cadence, waking the loop so the
// change does not wait out the previous interval. Non-positive
// intervals are ignored.
func (r *Reporter) SetInterval(interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if interval <= 0 || interval == r.interval {
		return
	}
	r.interval = interval

	// Replace any pending change rather than queueing behind it
	select {
	case <-r.intervalCh:
	default:
	}
	r.intervalCh <- interval
}

// Start begins periodic reporting.
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	interval := r.interval
	r.mu.Unlock()

	go r.reportLoop(ctx)

	r.logger.Debug("stats reporter started", "interval", interval)
	return nil
}

// Stop stops reporting and waits for the loop to finish.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	<-r.doneCh
	r.logger.Debug("stats reporter stopped")
}

// reportLoop is the main reporting loop.
func (r *Reporter) reportLoop(ctx context.Context) {
	defer close(r.doneCh)

	r.mu.Lock()
	interval := r.interval
	r.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case interval := <-r.intervalCh:
			ticker.Reset(interval)
		case <-ticker.C:
			r.report()
		}
	}
}

// report logs one statistics line.
func (r *Reporter) report() {
	totals := r.collector.Totals()

	args := []any{
		"frames", humanize.Comma(int64(totals.Frames)),
		"copied", humanize.IBytes(totals.Bytes),
		"fps", fmt.Sprintf("%.1f", r.limiter.Measured()),
	}
	if totals.Overruns > 0 {
		args = append(args, "overruns", humanize.Comma(int64(totals.Overruns)))
	}

	if r.proc != nil {
		if cpu, err := r.proc.CPUPercent(); err == nil {
			args = append(args, "cpu", fmt.Sprintf("%.1f%%", cpu))
		}
		if mem, err := r.proc.MemoryInfo(); err == nil && mem != nil {
			args = append(args, "rss", humanize.IBytes(mem.RSS))
		}
	}

	r.logger.Info("mirror statistics", args...)
}
