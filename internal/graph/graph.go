// Package graph assembles the per-mode processing topology from the stage
// library and drives it from absolute sample time.
package graph

import (
	"errors"
	"fmt"

	"github.com/cbegin/spatialfx-go/internal/automation"
	"github.com/cbegin/spatialfx-go/internal/effects"
	"github.com/cbegin/spatialfx-go/internal/params"
	"github.com/cbegin/spatialfx-go/internal/settings"
)

var ErrUnsupportedMode = errors.New("graph: unsupported mode")

type StageKind int

const (
	StageTone StageKind = iota
	StageBinaural
	StageBilateral
	StagePrecedence
	StageDepth
	StageMaster
)

func (k StageKind) String() string {
	switch k {
	case StageTone:
		return "tone"
	case StageBinaural:
		return "binaural"
	case StageBilateral:
		return "bilateral"
	case StagePrecedence:
		return "precedence"
	case StageDepth:
		return "depth"
	case StageMaster:
		return "master"
	}
	return fmt.Sprintf("stage(%d)", int(k))
}

// Endpoint names for the graph's input and output.
const (
	Source      = "source"
	Destination = "destination"
)

// Connection records one edge of a built topology.
type Connection struct {
	From, To string
}

// Plan returns the ordered stage kinds used for mode.
func Plan(mode settings.Mode) ([]StageKind, error) {
	var positioner StageKind
	switch mode {
	case settings.ModeSpatial:
		positioner = StageBinaural
	case settings.ModeBilateral, settings.ModeEMDR:
		positioner = StageBilateral
	case settings.ModeHaas:
		positioner = StagePrecedence
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, mode)
	}
	return []StageKind{StageTone, positioner, StageDepth, StageMaster}, nil
}

// Topology is a built, connected processing graph for one mode. A topology
// has exactly one owner; it is never shared between the live engine and an
// offline render.
type Topology interface {
	Mode() settings.Mode
	SampleRate() int

	// Apply schedules the control points for s. Fields that the mode does
	// not use are ignored.
	Apply(s settings.Settings)
	// Snap moves every control point to its target as of frame. Only call
	// while no other goroutine is inside Process.
	Snap(frame int64)
	// Reset clears filter and delay state so the next Process starts from
	// silence, exactly like a freshly built topology.
	Reset()
	// Process renders interleaved stereo in place. startFrame is the
	// absolute frame index of dst[0], which fixes every time-varying
	// automation value.
	Process(dst []float32, startFrame int64)
	// MasterGains returns the master gain applied to each frame of the last
	// Process call. The slice is reused by the next call.
	MasterGains() []float32

	Stages() []effects.Stage
	Connections() []Connection
	ControlPoints() map[string]*automation.Param
	// ControlValues reports the values applied on the last processed frame.
	ControlValues() map[string]float64

	Dispose()
	Disposed() bool
}

// Build plans and connects the topology for mode.
func Build(mode settings.Mode, sampleRate int) (Topology, error) {
	kinds, err := Plan(mode)
	if err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("graph: invalid sample rate %d", sampleRate)
	}
	b := newBase(mode, sampleRate)
	switch kinds[1] {
	case StageBinaural:
		return newSpatial(b), nil
	case StageBilateral:
		return newBilateral(b), nil
	default:
		return newWiden(b), nil
	}
}

// Swap returns next after disposing old. next must already be built and
// configured; old is released only once its replacement exists.
func Swap(old, next Topology) Topology {
	if old != nil && old != next {
		old.Dispose()
	}
	return next
}

// base holds the stages every mode shares.
type base struct {
	mode       settings.Mode
	sampleRate int

	tone   *effects.ToneChain
	depth  *effects.Depth
	master *effects.Master

	stages      []effects.Stage
	connections []Connection
	chain       *effects.Chain // per-frame stages ahead of master
	disposed    bool
}

func newBase(mode settings.Mode, sampleRate int) *base {
	return &base{
		mode:       mode,
		sampleRate: sampleRate,
		tone:       effects.NewToneChain(sampleRate),
		depth:      effects.NewDepth(sampleRate),
		master:     effects.NewMaster(sampleRate),
	}
}

// connect fixes the stage order tone -> positioner -> depth -> master.
func (b *base) connect(positioner effects.Stage) {
	b.stages = []effects.Stage{b.tone, positioner, b.depth, b.master}
	b.chain = effects.NewChain()
	for _, s := range b.stages[:len(b.stages)-1] {
		b.chain.Add(s)
	}
	prev := Source
	for _, s := range b.stages {
		b.connections = append(b.connections, Connection{From: prev, To: s.Name()})
		prev = s.Name()
	}
	b.connections = append(b.connections, Connection{From: prev, To: Destination})
}

func (b *base) Mode() settings.Mode { return b.mode }
func (b *base) SampleRate() int     { return b.sampleRate }

func (b *base) applyCommon(s settings.Settings) {
	b.tone.SetGains(s.Physical(params.Warmth), s.Physical(params.Clarity), s.Physical(params.Air))
	b.depth.Wet().Set(s.Physical(params.Depth))
	b.master.Gain().Set(s.Physical(params.MasterVolume))
}

func (b *base) snapCommon() {
	for i := effects.ToneLow; i <= effects.ToneHigh; i++ {
		b.tone.Gain(i).Snap()
	}
	b.depth.Wet().Snap()
	b.master.Gain().Snap()
}

func (b *base) Stages() []effects.Stage {
	out := make([]effects.Stage, len(b.stages))
	copy(out, b.stages)
	return out
}

func (b *base) Connections() []Connection {
	out := make([]Connection, len(b.connections))
	copy(out, b.connections)
	return out
}

func (b *base) commonPoints() map[string]*automation.Param {
	return map[string]*automation.Param{
		"tone.low":    b.tone.Gain(effects.ToneLow),
		"tone.mid":    b.tone.Gain(effects.ToneMid),
		"tone.high":   b.tone.Gain(effects.ToneHigh),
		"depth.wet":   b.depth.Wet(),
		"master.gain": b.master.Gain(),
	}
}

func values(points map[string]*automation.Param) map[string]float64 {
	out := make(map[string]float64, len(points))
	for k, p := range points {
		out[k] = p.Value()
	}
	return out
}

// render runs the per-frame chain. position is called once per frame with
// the frame's absolute time before the chain processes it.
func (b *base) render(dst []float32, startFrame int64, position func(t float64)) {
	if b.disposed {
		return
	}
	sr := float64(b.sampleRate)
	for i := 0; i+1 < len(dst); i += 2 {
		position(float64(startFrame+int64(i/2)) / sr)
		dst[i], dst[i+1] = b.chain.Process(dst[i], dst[i+1])
	}
	b.master.ProcessBlock(dst)
}

func (b *base) Reset() {
	if b.disposed {
		return
	}
	b.chain.Reset()
	b.master.Reset()
}

func (b *base) MasterGains() []float32 { return b.master.Gains() }

func (b *base) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	for _, s := range b.stages {
		s.Dispose()
	}
	b.stages = nil
	b.connections = nil
	b.chain = nil
}

func (b *base) Disposed() bool { return b.disposed }
