package effects

import (
	"github.com/cwbudde/algo-dsp/dsp/delay"

	"github.com/cbegin/spatialfx-go/internal/automation"
)

// Depth tap layout: pre-delay followed by a small bank of early reflections
// with decreasing gains, alternating sides.
var (
	depthPreDelay = 0.020
	depthTapTimes = [6]float64{0.023, 0.037, 0.053, 0.071, 0.097, 0.131}
	depthTapGains = [6]float64{0.7, 0.55, 0.42, 0.32, 0.24, 0.18}
)

// DepthBypassBelow is the wet amount under which the stage passes audio
// through untouched.
const DepthBypassBelow = 0.001

// Depth adds early reflections for a sense of room. Dry gain is
// 1-0.5*wet and wet gain is wet.
type Depth struct {
	sampleRate int
	wet        *automation.Param
	line       *delay.Line
	taps       [6]float64 // in samples, pre-delay included
	bypassed   bool
	disposed   bool
}

func NewDepth(sampleRate int) *Depth {
	d := &Depth{
		sampleRate: sampleRate,
		wet:        automation.NewParam(0, sampleRate, automation.DefaultTimeConstant),
		line:       newLine(depthPreDelay+depthTapTimes[len(depthTapTimes)-1], sampleRate),
		bypassed:   true,
	}
	for i, tt := range depthTapTimes {
		d.taps[i] = (depthPreDelay + tt) * float64(sampleRate)
	}
	return d
}

func (d *Depth) Name() string { return "depth" }

// Wet is the 0..1 wet amount control point.
func (d *Depth) Wet() *automation.Param { return d.wet }

// Bypassed reports whether the last frame skipped processing.
func (d *Depth) Bypassed() bool { return d.bypassed }

func (d *Depth) Process(l, r float32) (float32, float32) {
	if d.disposed {
		return l, r
	}
	w := d.wet.Next()
	if w < DepthBypassBelow && d.wet.Target() < DepthBypassBelow {
		if !d.bypassed {
			d.line.Reset()
			d.bypassed = true
		}
		return l, r
	}
	d.bypassed = false

	x, y := float64(l), float64(r)
	d.line.Write((x + y) * 0.5)
	var wl, wr float64
	for i, tap := range d.taps {
		v := readDelayed(d.line, tap) * depthTapGains[i]
		if i%2 == 0 {
			wl += v
		} else {
			wr += v
		}
	}
	dry := 1 - 0.5*w
	return float32(x*dry + wl*w), float32(y*dry + wr*w)
}

func (d *Depth) Reset() {
	d.line.Reset()
}

func (d *Depth) Dispose() {
	d.disposed = true
	d.line = nil
}
