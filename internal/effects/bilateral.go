package effects

import (
	"math"
	"sync/atomic"

	"github.com/cbegin/spatialfx-go/internal/automation"
	"github.com/cbegin/spatialfx-go/internal/lfo"
)

// Bilateral alternation algorithms.
const (
	BilateralSmooth int32 = iota
	BilateralHardCut
)

// Bilateral alternates the signal between the left and right ear. The pan
// value is a pure function of transport time so the live and offline paths
// agree sample for sample.
type Bilateral struct {
	rate      *automation.Param // Hz
	width     *automation.Param // 0..1
	algorithm atomic.Int32
	pan       float64
	disposed  bool
}

func NewBilateral(sampleRate int) *Bilateral {
	return &Bilateral{
		rate:  automation.NewParam(1, sampleRate, 0),
		width: automation.NewParam(1, sampleRate, 0),
	}
}

func (b *Bilateral) Name() string { return "bilateral" }

func (b *Bilateral) Rate() *automation.Param  { return b.rate }
func (b *Bilateral) Width() *automation.Param { return b.width }

func (b *Bilateral) SetAlgorithm(a int32) { b.algorithm.Store(a) }
func (b *Bilateral) Algorithm() int32     { return b.algorithm.Load() }

// PanAt returns the pan control value at time t seconds.
// Smooth: -w*sin(2*pi*f*t). Hard cut: -w then +w every 1/(2f) seconds with a
// short linear transition after each switch.
func (b *Bilateral) PanAt(t float64) float64 {
	return PanAt(t, b.rate.Target(), b.width.Target(), b.algorithm.Load())
}

// PanAt is the stateless form of Bilateral.PanAt.
func PanAt(t, rateHz, width float64, algorithm int32) float64 {
	osc := lfo.LFO{Depth: width, RateHz: rateHz, Waveform: lfo.WaveSine}
	if algorithm == BilateralHardCut {
		osc.Waveform = lfo.WaveHardCut
		osc.Ramp = lfo.DefaultRamp
		if width != 0 && rateHz <= 0 {
			return -width
		}
		return osc.At(t)
	}
	return -osc.At(t)
}

// SetPan sets the pan for subsequent frames. Called from the render thread.
func (b *Bilateral) SetPan(p float64) {
	b.pan = clamp(p, -1, 1)
}

func (b *Bilateral) Pan() float64 { return b.pan }

// Process applies a stereo balance pan: at -1 the right channel folds into
// the left, at +1 the left folds into the right.
func (b *Bilateral) Process(l, r float32) (float32, float32) {
	if b.disposed {
		return l, r
	}
	ol, or := StereoPan(float64(l), float64(r), b.pan)
	return float32(ol), float32(or)
}

// StereoPan pans a stereo pair with an equal-power balance law.
func StereoPan(l, r, pan float64) (float64, float64) {
	if pan <= 0 {
		x := (pan + 1) * math.Pi / 2
		return l + r*math.Cos(x), r * math.Sin(x)
	}
	x := pan * math.Pi / 2
	return l * math.Cos(x), r + l*math.Sin(x)
}

func (b *Bilateral) Reset() {}

func (b *Bilateral) Dispose() {
	b.disposed = true
}
