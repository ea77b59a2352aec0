package effects

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"

	"github.com/cbegin/spatialfx-go/internal/automation"
	"github.com/cbegin/spatialfx-go/internal/params"
)

const (
	ToneLow = iota
	ToneMid
	ToneHigh
)

// ToneChain implements a 3-band tone shaper: low shelf (warmth), mid peak
// (clarity) and high shelf (air). Gains are control points in dB; the render
// thread redesigns a band only when its gain target changes.
type ToneChain struct {
	sampleRate int
	gains      [3]*automation.Param
	applied    [3]float64
	bands      [3][2]biquad.Section // [band][channel]
	disposed   bool
}

// NewToneChain creates a flat tone chain.
func NewToneChain(sampleRate int) *ToneChain {
	t := &ToneChain{sampleRate: sampleRate}
	for i := range t.gains {
		t.gains[i] = automation.NewParam(0, sampleRate, 0)
		t.design(i, 0)
	}
	return t
}

func (t *ToneChain) Name() string { return "tone" }

// Gain returns the control point for band (ToneLow, ToneMid, ToneHigh).
func (t *ToneChain) Gain(band int) *automation.Param {
	return t.gains[band]
}

// SetGains schedules all three band gains in dB.
func (t *ToneChain) SetGains(lowDB, midDB, highDB float64) {
	t.gains[ToneLow].Set(lowDB)
	t.gains[ToneMid].Set(midDB)
	t.gains[ToneHigh].Set(highDB)
}

func (t *ToneChain) design(band int, gainDB float64) {
	var c biquad.Coefficients
	switch band {
	case ToneLow:
		c = lowShelf(params.WarmthFreqHz, gainDB, butterworthQ, t.sampleRate)
	case ToneMid:
		c = peak(params.ClarityFreqHz, gainDB, params.ClarityQ, t.sampleRate)
	default:
		c = highShelf(params.AirFreqHz, gainDB, butterworthQ, t.sampleRate)
	}
	t.bands[band][0].Coefficients = c
	t.bands[band][1].Coefficients = c
	t.applied[band] = gainDB
}

// Response returns the combined magnitude of the three bands at freq using
// the currently applied gains.
func (t *ToneChain) Response(freq float64) float64 {
	m := 1.0
	for b := range t.bands {
		m *= magnitude(&t.bands[b][0].Coefficients, freq, t.sampleRate)
	}
	return m
}

func (t *ToneChain) Process(l, r float32) (float32, float32) {
	if t.disposed {
		return l, r
	}
	x, y := float64(l), float64(r)
	for b := range t.bands {
		g := t.gains[b].Next()
		if g != t.applied[b] {
			t.design(b, g)
		}
		if g == 0 {
			// 0 dB shelves and peaks are identities; keep state warm anyway.
			t.bands[b][0].ProcessSample(x)
			t.bands[b][1].ProcessSample(y)
			continue
		}
		x = t.bands[b][0].ProcessSample(x)
		y = t.bands[b][1].ProcessSample(y)
	}
	return float32(x), float32(y)
}

func (t *ToneChain) Reset() {
	for b := range t.bands {
		t.bands[b][0].Reset()
		t.bands[b][1].Reset()
	}
}

func (t *ToneChain) Dispose() {
	t.disposed = true
}
