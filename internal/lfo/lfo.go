package lfo

import "math"

// Waveform constants.
const (
	WaveSine    = 0
	WaveHardCut = 1
)

// DefaultRamp is the transition time of a hard-cut switch.
const DefaultRamp = 0.010

// LFO is a low-frequency oscillator evaluated as a pure function of time.
// Both the live render thread and the offline renderer sample it by absolute
// transport time, so there is no phase state to drift between them.
type LFO struct {
	Depth    float64 // peak value; output lies in [-Depth, +Depth]
	RateHz   float64
	Waveform int     // WaveSine or WaveHardCut
	Ramp     float64 // hard-cut transition time in seconds
}

// At returns the oscillator value at time t seconds.
// Returns 0 if depth or rate is zero.
func (l LFO) At(t float64) float64 {
	if !l.Active() {
		return 0
	}
	switch l.Waveform {
	case WaveHardCut:
		ramp := l.Ramp
		if ramp <= 0 {
			ramp = DefaultRamp
		}
		return HardCut(t, l.RateHz, l.Depth, ramp)
	default:
		return Sine(t, l.RateHz, l.Depth)
	}
}

// Active returns true if the LFO has non-zero depth and rate.
func (l LFO) Active() bool {
	return l.Depth != 0 && l.RateHz > 0
}

// Sine returns depth*sin(2*pi*rate*t).
func Sine(t, rateHz, depth float64) float64 {
	return depth * math.Sin(2*math.Pi*rateHz*t)
}

// HalfPeriod is the time spent on each side by a hard-cut alternation.
func HalfPeriod(rateHz float64) float64 {
	return 1 / (2 * rateHz)
}

// HardCut alternates between -depth and +depth every 1/(2*rate) seconds,
// starting at -depth. After each switch the value moves linearly to the new
// side over ramp seconds (at most a quarter of a half period). The first
// segment has no ramp.
func HardCut(t, rateHz, depth, ramp float64) float64 {
	if rateHz <= 0 {
		return -depth
	}
	if t < 0 {
		t = 0
	}
	seg := HalfPeriod(rateHz)
	k := SegmentIndex(t, rateHz)
	cur := -depth
	if k%2 == 1 {
		cur = depth
	}
	if ramp > seg/4 {
		ramp = seg / 4
	}
	u := t - float64(k)*seg
	if k > 0 && ramp > 0 && u < ramp {
		prev := -cur
		return prev + (cur-prev)*(u/ramp)
	}
	return cur
}

// SegmentIndex returns which half period t falls in.
func SegmentIndex(t, rateHz float64) int64 {
	if rateHz <= 0 || t < 0 {
		return 0
	}
	return int64(math.Floor(t / HalfPeriod(rateHz)))
}
