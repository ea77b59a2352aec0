// Package trajectory produces the moving source position used by the
// spatial mode.
//
// All three movement shapes share one scalar position, width*sin(2*pi*f*t).
// Only the 2D point returned by PointAt differs between shapes; the audible
// panning is identical. Whether shapes should eventually sound different is
// an open product question, so the shared scalar is kept as is.
package trajectory

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

type Shape int32

const (
	LeftRight Shape = iota
	Circular
	Figure8
)

// Frame is one sample of the trajectory delivered by Start.
type Frame struct {
	Time     float64
	Position float64
	X, Y     float64
}

// Generator evaluates the trajectory. Parameters are atomics so the render
// thread and a frame driver can read them while the control side writes.
type Generator struct {
	speedHz atomic.Uint64 // float64 bits
	width   atomic.Uint64 // float64 bits
	shape   atomic.Int32

	mu     sync.Mutex
	driver *Driver
}

func NewGenerator(speedHz, width float64, shape Shape) *Generator {
	g := &Generator{}
	g.Set(speedHz, width, shape)
	return g
}

// Set updates every parameter at once.
func (g *Generator) Set(speedHz, width float64, shape Shape) {
	g.SetSpeed(speedHz)
	g.SetWidth(width)
	g.SetShape(shape)
}

func (g *Generator) SetSpeed(hz float64) { g.speedHz.Store(math.Float64bits(hz)) }
func (g *Generator) SetWidth(w float64)  { g.width.Store(math.Float64bits(w)) }
func (g *Generator) SetShape(s Shape)    { g.shape.Store(int32(s)) }

func (g *Generator) Speed() float64 { return math.Float64frombits(g.speedHz.Load()) }
func (g *Generator) Width() float64 { return math.Float64frombits(g.width.Load()) }
func (g *Generator) Shape() Shape   { return Shape(g.shape.Load()) }

// PositionAt returns the lateral position in [-width, width] at time t.
func (g *Generator) PositionAt(t float64) float64 {
	return PositionAt(t, g.Speed(), g.Width())
}

// PointAt returns the 2D point for the current shape at time t.
func (g *Generator) PointAt(t float64) (x, y float64) {
	return PointAt(t, g.Speed(), g.Width(), g.Shape())
}

// FrameAt bundles position and point for time t.
func (g *Generator) FrameAt(t float64) Frame {
	x, y := g.PointAt(t)
	return Frame{Time: t, Position: g.PositionAt(t), X: x, Y: y}
}

// PositionAt is the stateless trajectory function.
func PositionAt(t, speedHz, width float64) float64 {
	return width * math.Sin(2*math.Pi*speedHz*t)
}

// PointAt is the stateless 2D trajectory function.
func PointAt(t, speedHz, width float64, shape Shape) (x, y float64) {
	theta := 2 * math.Pi * speedHz * t
	switch shape {
	case Circular:
		return width * math.Sin(theta), width * math.Cos(theta)
	case Figure8:
		return width * math.Sin(theta), width * math.Sin(2*theta) / 2
	default:
		return width * math.Sin(theta), 0
	}
}

// Start drives onFrame once per interval with the trajectory at clock() and
// returns the new driver. A running driver is signalled to exit but not
// waited for; whoever stopped it owns the wait.
func (g *Generator) Start(interval time.Duration, clock func() float64, onFrame func(Frame)) *Driver {
	d := StartDriver(interval, func() {
		onFrame(g.FrameAt(clock()))
	})
	g.mu.Lock()
	old := g.driver
	g.driver = d
	g.mu.Unlock()
	if old != nil {
		old.signal()
	}
	return d
}

// Stop halts the current frame driver and waits for it to exit. Safe to
// call when not running.
func (g *Generator) Stop() {
	g.mu.Lock()
	d := g.driver
	g.mu.Unlock()
	if d != nil {
		g.StopDriver(d)
	}
}

// StopDriver halts d and waits for it. The generator forgets d only if it
// is still the current driver, so a stale stop never cancels a newer run.
func (g *Generator) StopDriver(d *Driver) {
	g.mu.Lock()
	if g.driver == d {
		g.driver = nil
	}
	g.mu.Unlock()
	d.Stop()
}

// Running reports whether a frame driver is active.
func (g *Generator) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.driver != nil
}

// DefaultFrameInterval approximates a display refresh.
const DefaultFrameInterval = time.Second / 60

// Driver calls a function on a fixed tick until stopped.
type Driver struct {
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// StartDriver launches a goroutine calling tick every interval.
func StartDriver(interval time.Duration, tick func()) *Driver {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	d := &Driver{stop: make(chan struct{})}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-d.stop:
				return
			case <-t.C:
				tick()
			}
		}
	}()
	return d
}

func (d *Driver) signal() {
	d.once.Do(func() { close(d.stop) })
}

// Stop ends the driver and waits for the goroutine. Idempotent.
func (d *Driver) Stop() {
	d.signal()
	d.wg.Wait()
}
