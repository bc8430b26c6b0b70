package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(10)
	assert.Equal(t, 10, l.Rate())
	assert.Equal(t, 100*time.Millisecond, l.Interval())

	l = NewLimiter(25)
	assert.Equal(t, 25, l.Rate())
	assert.Equal(t, 40*time.Millisecond, l.Interval())
}

func TestNewLimiter_NonPositiveUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultRate, NewLimiter(0).Rate())
	assert.Equal(t, DefaultRate, NewLimiter(-3).Rate())
}

func TestLimiter_SetRate(t *testing.T) {
	l := NewLimiter(10)

	l.SetRate(50)
	assert.Equal(t, 50, l.Rate())
	assert.Equal(t, 20*time.Millisecond, l.Interval())
}

func TestLimiter_SetRateKeepsCurrentOnNonPositive(t *testing.T) {
	l := NewLimiter(25)

	l.SetRate(0)
	assert.Equal(t, 25, l.Rate())
	assert.Equal(t, 40*time.Millisecond, l.Interval())

	l.SetRate(-1)
	assert.Equal(t, 25, l.Rate())
}

func TestLimiter_Delay(t *testing.T) {
	l := NewLimiter(10) // 100ms budget

	assert.Equal(t, 70*time.Millisecond, l.delay(30*time.Millisecond))
	assert.Equal(t, time.Duration(0), l.delay(100*time.Millisecond))
	// An overrunning frame is not penalised
	assert.Equal(t, time.Duration(0), l.delay(250*time.Millisecond))
}

func TestLimiter_PaceSleepsRemainder(t *testing.T) {
	l := NewLimiter(100) // 10ms budget

	start := time.Now()
	for i := 0; i < 5; i++ {
		assert.False(t, l.Pace(time.Now()))
	}
	elapsed := time.Since(start)

	// Five empty frames must take at least five budgets, give or take
	// scheduler slack.
	assert.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
}

func TestLimiter_PaceSkipsSleepWhenOverBudget(t *testing.T) {
	l := NewLimiter(10)

	start := time.Now()
	overran := l.Pace(time.Now().Add(-200 * time.Millisecond))
	elapsed := time.Since(start)

	assert.True(t, overran)
	assert.Less(t, elapsed, 50*time.Millisecond)
}

func TestLimiter_Measured(t *testing.T) {
	l := NewLimiter(500) // 2ms budget
	l.window = 20 * time.Millisecond

	assert.Equal(t, float64(0), l.Measured())

	for i := 0; i < 30; i++ {
		l.Pace(time.Now())
	}

	m := l.Measured()
	assert.Greater(t, m, float64(50))
	assert.Less(t, m, float64(600))
}
