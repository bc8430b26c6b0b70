package mirror

import (
	"sync/atomic"
	"time"
)

// Collector accumulates copy totals for one mirror run. It is safe to
// read from other goroutines while the loop is counting.
type Collector struct {
	start    time.Time
	frames   atomic.Uint64
	bytes    atomic.Uint64
	overruns atomic.Uint64
}

// NewCollector returns a Collector with the run clock started.
func NewCollector() *Collector {
	return &Collector{start: time.Now()}
}

// CountFrame records one copied frame of n bytes.
func (c *Collector) CountFrame(n int) {
	c.frames.Add(1)
	c.bytes.Add(uint64(n))
}

// CountOverrun records a frame that took longer than its time budget.
func (c *Collector) CountOverrun() {
	c.overruns.Add(1)
}

// Totals is a snapshot of the run counters.
type Totals struct {
	Frames   uint64
	Bytes    uint64
	Overruns uint64
	Elapsed  time.Duration
}

// AverageRate returns the mean frame rate over the whole run.
func (t Totals) AverageRate() float64 {
	if t.Elapsed <= 0 {
		return 0
	}
	return float64(t.Frames) / t.Elapsed.Seconds()
}

// Totals returns the counters accumulated since the collector was
// created.
func (c *Collector) Totals() Totals {
	return Totals{
		Frames:   c.frames.Load(),
		Bytes:    c.bytes.Load(),
		Overruns: c.overruns.Load(),
		Elapsed:  time.Since(c.start),
	}
}
