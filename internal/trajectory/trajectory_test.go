package trajectory

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionIsSinusoid(t *testing.T) {
	g := NewGenerator(0.5, 0.8, LeftRight)
	assert.InDelta(t, 0, g.PositionAt(0), 1e-12)
	assert.InDelta(t, 0.8, g.PositionAt(0.5), 1e-12)
	assert.InDelta(t, -0.8, g.PositionAt(1.5), 1e-12)
	assert.InDelta(t, 0, g.PositionAt(2), 1e-12)
}

func TestShapesShareScalarPosition(t *testing.T) {
	for _, ts := range []float64{0, 0.13, 0.77, 1.9, 12.25} {
		want := PositionAt(ts, 1.3, 0.9)
		for _, s := range []Shape{LeftRight, Circular, Figure8} {
			g := NewGenerator(1.3, 0.9, s)
			assert.Equal(t, want, g.PositionAt(ts), "shape %d at %v", s, ts)
		}
	}
}

func TestPointsDifferByShape(t *testing.T) {
	const ts = 0.1
	_, yLR := PointAt(ts, 1, 1, LeftRight)
	_, yC := PointAt(ts, 1, 1, Circular)
	_, y8 := PointAt(ts, 1, 1, Figure8)
	assert.Equal(t, 0.0, yLR)
	assert.InDelta(t, math.Cos(2*math.Pi*ts), yC, 1e-12)
	assert.InDelta(t, math.Sin(4*math.Pi*ts)/2, y8, 1e-12)
	for _, s := range []Shape{LeftRight, Circular, Figure8} {
		x, _ := PointAt(ts, 1, 1, s)
		assert.InDelta(t, PositionAt(ts, 1, 1), x, 1e-12)
	}
}

func TestStartStopDrivesFrames(t *testing.T) {
	g := NewGenerator(1, 1, Circular)
	var frames atomic.Int32
	var last atomic.Value
	g.Start(time.Millisecond, func() float64 { return 0.25 }, func(f Frame) {
		frames.Add(1)
		last.Store(f)
	})
	require.True(t, g.Running())
	require.Eventually(t, func() bool { return frames.Load() >= 3 }, time.Second, time.Millisecond)
	g.Stop()
	g.Stop()
	assert.False(t, g.Running())

	n := frames.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, frames.Load(), "no frames after Stop")

	f := last.Load().(Frame)
	assert.Equal(t, 0.25, f.Time)
	assert.InDelta(t, 1, f.Position, 1e-12)
}

func TestStaleStopKeepsNewerDriver(t *testing.T) {
	g := NewGenerator(1, 1, LeftRight)
	var first, second atomic.Int32
	d1 := g.Start(time.Millisecond, func() float64 { return 0 }, func(Frame) { first.Add(1) })
	d2 := g.Start(time.Millisecond, func() float64 { return 0 }, func(Frame) { second.Add(1) })

	g.StopDriver(d1)
	require.True(t, g.Running(), "stopping a replaced driver must not cancel the current one")
	n := first.Load()
	require.Eventually(t, func() bool { return second.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, n, first.Load(), "replaced driver keeps ticking")

	g.StopDriver(d2)
	assert.False(t, g.Running())
}
