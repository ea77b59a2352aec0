package effects

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/delay"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

const butterworthQ = 1 / math.Sqrt2

// passthrough leaves the signal untouched.
var passthrough = biquad.Coefficients{B0: 1}

// rbj holds the shared terms of the audio EQ cookbook designs. ok is false
// for corner frequencies outside (0, Nyquist); those bands pass audio
// through instead of muting it.
type rbj struct {
	cw, alpha float64
	ok        bool
}

func cookbook(freq, q float64, sampleRate int) rbj {
	sr := float64(sampleRate)
	if sr <= 0 || freq <= 0 || freq >= sr/2 || math.IsNaN(freq) {
		return rbj{}
	}
	if q <= 0 || math.IsNaN(q) {
		q = butterworthQ
	}
	w0 := 2 * math.Pi * freq / sr
	return rbj{cw: math.Cos(w0), alpha: math.Sin(w0) / (2 * q), ok: true}
}

func normalize(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	return biquad.Coefficients{B0: b0 / a0, B1: b1 / a0, B2: b2 / a0, A1: a1 / a0, A2: a2 / a0}
}

func lowShelf(freq, gainDB, q float64, sampleRate int) biquad.Coefficients {
	r := cookbook(freq, q, sampleRate)
	if !r.ok {
		return passthrough
	}
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * r.alpha
	return normalize(
		a*((a+1)-(a-1)*r.cw+beta),
		2*a*((a-1)-(a+1)*r.cw),
		a*((a+1)-(a-1)*r.cw-beta),
		(a+1)+(a-1)*r.cw+beta,
		-2*((a-1)+(a+1)*r.cw),
		(a+1)+(a-1)*r.cw-beta,
	)
}

func highShelf(freq, gainDB, q float64, sampleRate int) biquad.Coefficients {
	r := cookbook(freq, q, sampleRate)
	if !r.ok {
		return passthrough
	}
	a := math.Pow(10, gainDB/40)
	beta := 2 * math.Sqrt(a) * r.alpha
	return normalize(
		a*((a+1)+(a-1)*r.cw+beta),
		-2*a*((a-1)+(a+1)*r.cw),
		a*((a+1)+(a-1)*r.cw-beta),
		(a+1)-(a-1)*r.cw+beta,
		2*((a-1)-(a+1)*r.cw),
		(a+1)-(a-1)*r.cw-beta,
	)
}

func peak(freq, gainDB, q float64, sampleRate int) biquad.Coefficients {
	r := cookbook(freq, q, sampleRate)
	if !r.ok {
		return passthrough
	}
	a := math.Pow(10, gainDB/40)
	return normalize(1+r.alpha*a, -2*r.cw, 1-r.alpha*a, 1+r.alpha/a, -2*r.cw, 1-r.alpha/a)
}

func notch(freq, q float64, sampleRate int) biquad.Coefficients {
	r := cookbook(freq, q, sampleRate)
	if !r.ok {
		return passthrough
	}
	return normalize(1, -2*r.cw, 1, 1+r.alpha, -2*r.cw, 1-r.alpha)
}

func lowpass(freq, q float64, sampleRate int) biquad.Coefficients {
	r := cookbook(freq, q, sampleRate)
	if !r.ok {
		return passthrough
	}
	b := (1 - r.cw) / 2
	return normalize(b, 1-r.cw, b, 1+r.alpha, -2*r.cw, 1-r.alpha)
}

// magnitude evaluates |H| of c at freq.
func magnitude(c *biquad.Coefficients, freq float64, sampleRate int) float64 {
	return math.Sqrt(c.MagnitudeSquared(freq, float64(sampleRate)))
}

// newLine allocates a delay line holding maxDelay seconds plus the guard
// samples the cubic reader needs.
func newLine(maxDelay float64, sampleRate int) *delay.Line {
	n := int(math.Ceil(maxDelay*float64(sampleRate))) + 4
	// n is always positive, so New cannot fail.
	l, _ := delay.New(n)
	return l
}

// readDelayed returns the signal d samples behind the most recent write;
// d = 0 is the sample just written.
func readDelayed(l *delay.Line, d float64) float64 {
	return l.ReadFractional(d + 1)
}

// delayed writes x and returns the signal d samples behind it.
func delayed(l *delay.Line, x, d float64) float64 {
	l.Write(x)
	return readDelayed(l, d)
}
