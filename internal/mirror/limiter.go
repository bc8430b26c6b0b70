package mirror

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRate is the frame rate used when no valid rate has been set.
const DefaultRate = 10

// Limiter paces the mirror loop to a target frame rate. Each frame gets
// a fixed time budget and the limiter sleeps away whatever part of the
// budget the copy itself did not use. A frame that overruns its budget
// is never penalised; the loop just starts the next one immediately.
type Limiter struct {
	interval atomic.Int64  // frame budget in nanoseconds
	rate     atomic.Int64  // requested frames per second
	measured atomic.Uint64 // math.Float64bits of the observed rate

	// measurement window, guarded by mu
	mu           sync.Mutex
	window       time.Duration
	measureCount int
	measureTime  time.Time
}

// NewLimiter returns a Limiter targeting the given rate. Rates of zero
// or below fall back to DefaultRate.
func NewLimiter(fps int) *Limiter {
	l := &Limiter{window: time.Second}
	l.interval.Store(int64(time.Second / DefaultRate))
	l.rate.Store(DefaultRate)
	l.measureTime = time.Now()
	l.SetRate(fps)
	return l
}

// SetRate changes the target frame rate. Rates of zero or below leave
// the current rate unchanged, so a bad reload cannot stall the loop.
func (l *Limiter) SetRate(fps int) {
	if fps <= 0 {
		return
	}
	l.rate.Store(int64(fps))
	l.interval.Store(int64(time.Second / time.Duration(fps)))

	l.mu.Lock()
	l.measureCount = 0
	l.measureTime = time.Now()
	l.mu.Unlock()
}

// Rate returns the requested frame rate.
func (l *Limiter) Rate() int {
	return int(l.rate.Load())
}

// Interval returns the time budget for one frame.
func (l *Limiter) Interval() time.Duration {
	return time.Duration(l.interval.Load())
}

// delay returns how long to sleep after a frame that took elapsed.
func (l *Limiter) delay(elapsed time.Duration) time.Duration {
	if d := l.Interval() - elapsed; d > 0 {
		return d
	}
	return 0
}

// Pace sleeps away the rest of the budget for a frame started at start
// and counts the frame towards the measured rate. It reports whether
// the frame overran its budget.
func (l *Limiter) Pace(start time.Time) bool {
	elapsed := time.Since(start)
	if d := l.delay(elapsed); d > 0 {
		time.Sleep(d)
	}
	l.measure()
	return elapsed > l.Interval()
}

// measure recomputes the observed frame rate once per window.
func (l *Limiter) measure() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.measureCount++
	elapsed := time.Since(l.measureTime)
	if elapsed < l.window {
		return
	}

	l.measured.Store(math.Float64bits(float64(l.measureCount) / elapsed.Seconds()))
	l.measureCount = 0
	l.measureTime = time.Now()
}

// Measured returns the observed frame rate over the last completed
// measurement window, or 0 before the first window completes.
func (l *Limiter) Measured() float64 {
	return math.Float64frombits(l.measured.Load())
}
