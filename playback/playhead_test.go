package playback

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayheadInterpolates(t *testing.T) {
	rows := []Bounds{{Top: 0, Bottom: 2, Left: 0, Right: 40}, {Top: 0, Bottom: 2, Left: 40, Right: 80}}
	p, err := NewPlayhead([]float64{0, 1, 3, 4}, []float64{2, 12, 32, 42}, []float64{0, 4}, rows, 8)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(0.0, p.X(-1))
	assert.Equal(2.0, p.X(0))
	assert.Equal(12.0, p.X(1))
	assert.InDelta(7.0, p.X(0.5), 1e-9)
	assert.InDelta(22.0, p.X(2), 1e-9)
	assert.InDelta(36.0, p.X(3.5), 1e-9)
	assert.Equal(42.0, p.X(4))
	assert.InDelta(61.0, p.X(6), 1e-9)
	assert.Equal(80.0, p.X(9))

	assert.Equal(rows[0], p.Row(-2))
	assert.Equal(rows[0], p.Row(3.9))
	assert.Equal(rows[1], p.Row(4))
	assert.Equal(rows[1], p.Row(7))
}

func TestPlayheadEmptyMeasure(t *testing.T) {
	rows := []Bounds{{Left: 0, Right: 40}, {Left: 40, Right: 80}}
	p, err := NewPlayhead([]float64{4}, []float64{42}, []float64{0, 4}, rows, 8)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, p.X(2), 1e-9)
	assert.InDelta(t, 61.0, p.X(6), 1e-9)
}

func TestPlayheadRejectsMismatch(t *testing.T) {
	_, err := NewPlayhead([]float64{0}, nil, []float64{0}, []Bounds{{}}, 4)
	assert.Error(t, err)
	_, err = NewPlayhead([]float64{1, 0}, []float64{0, 1}, []float64{0}, []Bounds{{}}, 4)
	assert.Error(t, err)
	_, err = NewPlayhead(nil, nil, nil, nil, 4)
	assert.Error(t, err)
}

func TestWatchdogStopsAtEnd(t *testing.T) {
	clock := &ManualClock{}
	s := NewScheduler(quarterMeasures(1), &Recorder{}, Config{Clock: clock, Timer: &ManualTimer{}, Logger: log.New(io.Discard)})
	require.NoError(t, s.Play())

	var frames int
	done := make(chan struct{})
	go func() {
		Watchdog(context.Background(), s, time.Millisecond, func(float64) { frames++ })
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	clock.Set(100)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watchdog did not return")
	}
	assert.Equal(t, Stopped, s.State())
	assert.Greater(t, frames, 0)
}

func TestWatchdogHonoursContext(t *testing.T) {
	s := NewScheduler(quarterMeasures(1), &Recorder{}, Config{Clock: &ManualClock{}, Timer: &ManualTimer{}, Logger: log.New(io.Discard)})
	require.NoError(t, s.Play())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Watchdog(ctx, s, time.Millisecond, nil)
	assert.Equal(t, Playing, s.State())
}
