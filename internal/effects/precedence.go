package effects

import (
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/delay"

	"github.com/cbegin/spatialfx-go/internal/automation"
)

const (
	// LagGain is the level of the delayed channel relative to the lead (about -3 dB).
	LagGain = 0.7
	// MaxPrecedenceDelay bounds the delay line in seconds.
	MaxPrecedenceDelay = 0.060

	LeadLeft  int32 = 0
	LeadRight int32 = 1
)

// Precedence widens a signal with the Haas effect: the lagging channel is
// delayed by a few tens of milliseconds and attenuated, so the image is
// localized towards the lead channel while sounding wider.
type Precedence struct {
	sampleRate int
	delayMs    *automation.Param
	lead       atomic.Int32
	lines      [2]*delay.Line
	disposed   bool
}

func NewPrecedence(sampleRate int) *Precedence {
	return &Precedence{
		sampleRate: sampleRate,
		delayMs:    automation.NewParam(20, sampleRate, automation.DefaultTimeConstant),
		lines: [2]*delay.Line{
			newLine(MaxPrecedenceDelay, sampleRate),
			newLine(MaxPrecedenceDelay, sampleRate),
		},
	}
}

func (p *Precedence) Name() string { return "precedence" }

// Delay is the lag in milliseconds.
func (p *Precedence) Delay() *automation.Param { return p.delayMs }

func (p *Precedence) SetLead(ch int32) { p.lead.Store(ch) }
func (p *Precedence) Lead() int32      { return p.lead.Load() }

func (p *Precedence) Process(l, r float32) (float32, float32) {
	if p.disposed {
		return l, r
	}
	d := p.delayMs.Next() * float64(p.sampleRate) / 1000
	dl := delayed(p.lines[0], float64(l), d)
	dr := delayed(p.lines[1], float64(r), d)
	if p.lead.Load() == LeadRight {
		return float32(dl * LagGain), r
	}
	return l, float32(dr * LagGain)
}

func (p *Precedence) Reset() {
	for _, line := range p.lines {
		line.Reset()
	}
}

func (p *Precedence) Dispose() {
	p.disposed = true
	p.lines = [2]*delay.Line{}
}
