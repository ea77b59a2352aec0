// Package automation provides control points that the control goroutine
// writes and the render thread samples without locking.
package automation

import (
	"math"
	"sync/atomic"
)

// DefaultTimeConstant is the smoothing time constant used by stages that
// follow continuously moving targets.
const DefaultTimeConstant = 0.020

// Param is a single control point. The control side stores a target with
// Set or SetImmediate; the render side advances towards it once per sample
// with Next, approaching exponentially with the configured time constant.
//
// Target and snap flags are atomics; current and coef belong to the render
// thread.
type Param struct {
	target atomic.Uint64 // float64 bits
	snap   atomic.Bool

	current float64
	coef    float64
}

// NewParam returns a control point at initial value v. A non-positive
// time constant makes every change immediate.
func NewParam(v float64, sampleRate int, timeConstant float64) *Param {
	p := &Param{current: v}
	p.target.Store(math.Float64bits(v))
	p.SetTimeConstant(sampleRate, timeConstant)
	return p
}

// Coefficient returns the per-sample one-pole coefficient for a time constant.
func Coefficient(sampleRate int, timeConstant float64) float64 {
	if sampleRate <= 0 || timeConstant <= 0 {
		return 1
	}
	return 1 - math.Exp(-1/(timeConstant*float64(sampleRate)))
}

// SetTimeConstant changes the smoothing speed. Call before the param is
// shared with the render thread.
func (p *Param) SetTimeConstant(sampleRate int, timeConstant float64) {
	p.coef = Coefficient(sampleRate, timeConstant)
}

// Set schedules an exponential approach to v.
func (p *Param) Set(v float64) {
	p.target.Store(math.Float64bits(v))
}

// SetImmediate schedules a jump to v at the next sample.
func (p *Param) SetImmediate(v float64) {
	p.target.Store(math.Float64bits(v))
	p.snap.Store(true)
}

// Target returns the most recently scheduled value.
func (p *Param) Target() float64 {
	return math.Float64frombits(p.target.Load())
}

// Next advances one sample and returns the new value.
func (p *Param) Next() float64 {
	t := p.Target()
	if p.snap.Load() {
		p.snap.Store(false)
		p.current = t
		return t
	}
	p.current += p.coef * (t - p.current)
	if math.Abs(t-p.current) < 1e-9 {
		p.current = t
	}
	return p.current
}

// Follow sets the target and advances one sample. Used by stages whose
// target is itself a function of render time.
func (p *Param) Follow(v float64) float64 {
	p.target.Store(math.Float64bits(v))
	return p.Next()
}

// Value returns the last value produced by Next.
func (p *Param) Value() float64 {
	return p.current
}

// Settled reports whether the current value has reached the target.
func (p *Param) Settled() bool {
	return !p.snap.Load() && p.current == p.Target()
}

// Snap jumps straight to the target. Only call while the render thread is
// not using the param, e.g. before a topology is published.
func (p *Param) Snap() {
	p.snap.Store(false)
	p.current = p.Target()
}
