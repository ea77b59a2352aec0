package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/delay"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"

	"github.com/cbegin/spatialfx-go/internal/automation"
)

// Binaural position constants.
const (
	MaxITD           = 0.00066 // seconds, roughly head width over speed of sound
	CrossoverHz      = 1500.0
	FarLowAtten      = 0.3 // far-ear low band loses up to 30%
	FarHighAtten     = 0.7 // far-ear high band loses up to 70%
	PinnaNotchHz     = 8000.0
	PinnaNearQ       = 2.0
	PinnaFarQ        = 8.0
	pinnaNotchMix    = 0.5
	qRedesignEpsilon = 1e-3
)

// EarControls are the smoothed per-ear values a Binaural stage is applying.
type EarControls struct {
	Delay    float64 // samples
	LowGain  float64
	HighGain float64
	NotchQ   float64
}

type ear struct {
	line     *delay.Line
	split    biquad.Section
	notch    biquad.Section
	appliedQ float64

	delay *automation.Param
	low   *automation.Param
	high  *automation.Param
	q     *automation.Param
}

// Binaural places a sound at a lateral position in [-1, 1] (negative is
// left) using an interaural delay, a frequency-split level difference and a
// pinna-like notch on the far ear.
type Binaural struct {
	sampleRate int
	intensity  *automation.Param
	position   float64
	ears       [2]ear
	disposed   bool
}

func NewBinaural(sampleRate int) *Binaural {
	b := &Binaural{
		sampleRate: sampleRate,
		intensity:  automation.NewParam(0, sampleRate, automation.DefaultTimeConstant),
	}
	split := lowpass(CrossoverHz, butterworthQ, sampleRate)
	for i := range b.ears {
		e := &b.ears[i]
		e.line = newLine(MaxITD*1.5, sampleRate)
		e.split.Coefficients = split
		e.delay = automation.NewParam(0, sampleRate, automation.DefaultTimeConstant)
		e.low = automation.NewParam(1, sampleRate, automation.DefaultTimeConstant)
		e.high = automation.NewParam(1, sampleRate, automation.DefaultTimeConstant)
		e.q = automation.NewParam(PinnaNearQ, sampleRate, automation.DefaultTimeConstant)
		e.notch.Coefficients = notch(PinnaNotchHz, PinnaNearQ, sampleRate)
		e.appliedQ = PinnaNearQ
	}
	return b
}

func (b *Binaural) Name() string { return "binaural" }

// Intensity is the 0..1 control point scaling every cue.
func (b *Binaural) Intensity() *automation.Param { return b.intensity }

// SetPosition sets the lateral target for subsequent frames. Called from the
// render thread with the trajectory value for each frame.
func (b *Binaural) SetPosition(p float64) {
	b.position = clamp(p, -1, 1)
}

func (b *Binaural) Position() float64 { return b.position }

// Targets returns the unsmoothed per-ear controls for a position and
// intensity. Index 0 is the left ear.
func Targets(position, intensity float64, sampleRate int) [2]EarControls {
	f := math.Abs(position) * intensity
	near := EarControls{LowGain: 1, HighGain: 1, NotchQ: PinnaNearQ}
	far := EarControls{
		Delay:    f * MaxITD * float64(sampleRate),
		LowGain:  1 - FarLowAtten*f,
		HighGain: 1 - FarHighAtten*f,
		NotchQ:   PinnaNearQ + (PinnaFarQ-PinnaNearQ)*f,
	}
	switch {
	case position > 0:
		return [2]EarControls{far, near}
	case position < 0:
		return [2]EarControls{near, far}
	default:
		return [2]EarControls{near, near}
	}
}

// Controls returns the smoothed values applied on the last frame.
func (b *Binaural) Controls() [2]EarControls {
	var out [2]EarControls
	for i := range b.ears {
		e := &b.ears[i]
		out[i] = EarControls{Delay: e.delay.Value(), LowGain: e.low.Value(), HighGain: e.high.Value(), NotchQ: e.q.Value()}
	}
	return out
}

// Snap moves every smoothed control to its current target.
func (b *Binaural) Snap() {
	b.intensity.Snap()
	t := Targets(b.position, b.intensity.Value(), b.sampleRate)
	for i := range b.ears {
		e := &b.ears[i]
		e.delay.Set(t[i].Delay)
		e.low.Set(t[i].LowGain)
		e.high.Set(t[i].HighGain)
		e.q.Set(t[i].NotchQ)
		e.delay.Snap()
		e.low.Snap()
		e.high.Snap()
		e.q.Snap()
		e.redesignNotch(t[i].NotchQ, b.sampleRate)
	}
}

func (e *ear) redesignNotch(q float64, sampleRate int) {
	e.notch.Coefficients = notch(PinnaNotchHz, q, sampleRate)
	e.appliedQ = q
}

func (e *ear) process(x float64, c EarControls, intensity float64, sampleRate int) float64 {
	d := e.delay.Follow(c.Delay)
	lg := e.low.Follow(c.LowGain)
	hg := e.high.Follow(c.HighGain)
	q := e.q.Follow(c.NotchQ)
	if math.Abs(q-e.appliedQ) > qRedesignEpsilon {
		e.redesignNotch(q, sampleRate)
	}

	x = delayed(e.line, x, d)
	lo := e.split.ProcessSample(x)
	hi := x - lo
	y := lo*lg + hi*hg
	mix := pinnaNotchMix * intensity
	return y + mix*(e.notch.ProcessSample(y)-y)
}

func (b *Binaural) Process(l, r float32) (float32, float32) {
	if b.disposed {
		return l, r
	}
	in := b.intensity.Next()
	t := Targets(b.position, in, b.sampleRate)
	ol := b.ears[0].process(float64(l), t[0], in, b.sampleRate)
	or := b.ears[1].process(float64(r), t[1], in, b.sampleRate)
	return float32(ol), float32(or)
}

func (b *Binaural) Reset() {
	for i := range b.ears {
		e := &b.ears[i]
		e.line.Reset()
		e.split.Reset()
		e.notch.Reset()
	}
}

func (b *Binaural) Dispose() {
	b.disposed = true
	for i := range b.ears {
		b.ears[i].line = nil
	}
}
