package effects

import (
	"github.com/tphakala/simd/f32"

	"github.com/cbegin/spatialfx-go/internal/automation"
)

// Master is the final gain stage.
type Master struct {
	gain     *automation.Param
	gains    []float32 // per-frame gain of the last block
	disposed bool
}

func NewMaster(sampleRate int) *Master {
	return &Master{gain: automation.NewParam(1, sampleRate, automation.DefaultTimeConstant)}
}

func (m *Master) Name() string { return "master" }

// Gain is the linear output gain control point.
func (m *Master) Gain() *automation.Param { return m.gain }

func (m *Master) Process(l, r float32) (float32, float32) {
	if m.disposed {
		return l, r
	}
	g := float32(m.gain.Next())
	return l * g, r * g
}

// ProcessBlock scales interleaved stereo in place and records the gain
// applied to each frame. Once the gain has settled the whole block is scaled
// with one vector call.
func (m *Master) ProcessBlock(dst []float32) {
	if m.disposed {
		return
	}
	n := len(dst) / 2
	if cap(m.gains) < n {
		m.gains = make([]float32, n)
	}
	m.gains = m.gains[:n]
	if m.gain.Settled() {
		g := float32(m.gain.Value())
		f32.Scale(dst, dst, g)
		for i := range m.gains {
			m.gains[i] = g
		}
		return
	}
	for i := range m.gains {
		g := float32(m.gain.Next())
		m.gains[i] = g
		dst[2*i] *= g
		dst[2*i+1] *= g
	}
}

// Gains returns the per-frame gain applied by the last ProcessBlock.
func (m *Master) Gains() []float32 { return m.gains }

func (m *Master) Reset() {}

func (m *Master) Dispose() {
	m.disposed = true
}
