package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollector_CountFrame(t *testing.T) {
	c := NewCollector()

	c.CountFrame(1024)
	c.CountFrame(1024)
	c.CountFrame(512)

	totals := c.Totals()
	assert.Equal(t, uint64(3), totals.Frames)
	assert.Equal(t, uint64(2560), totals.Bytes)
	assert.Greater(t, totals.Elapsed, time.Duration(0))
}

func TestCollector_CountOverrun(t *testing.T) {
	c := NewCollector()

	c.CountOverrun()
	c.CountOverrun()

	assert.Equal(t, uint64(2), c.Totals().Overruns)
}

func TestCollector_EmptyTotals(t *testing.T) {
	totals := NewCollector().Totals()
	assert.Equal(t, uint64(0), totals.Frames)
	assert.Equal(t, uint64(0), totals.Bytes)
	assert.Equal(t, uint64(0), totals.Overruns)
}

func TestTotals_AverageRate(t *testing.T) {
	totals := Totals{Frames: 100, Elapsed: 10 * time.Second}
	assert.InDelta(t, 10.0, totals.AverageRate(), 0.001)

	assert.Equal(t, float64(0), Totals{Frames: 5}.AverageRate())
}
