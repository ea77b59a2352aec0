package graph

import (
	"github.com/cbegin/spatialfx-go/internal/automation"
	"github.com/cbegin/spatialfx-go/internal/effects"
	"github.com/cbegin/spatialfx-go/internal/params"
	"github.com/cbegin/spatialfx-go/internal/settings"
	"github.com/cbegin/spatialfx-go/internal/trajectory"
)

// SpatialTopology moves the source around the head along a trajectory.
type SpatialTopology struct {
	*base
	Binaural   *effects.Binaural
	Trajectory *trajectory.Generator
}

func newSpatial(b *base) *SpatialTopology {
	t := &SpatialTopology{
		base:       b,
		Binaural:   effects.NewBinaural(b.sampleRate),
		Trajectory: trajectory.NewGenerator(0, 0, trajectory.LeftRight),
	}
	b.connect(t.Binaural)
	return t
}

// ShapeOf converts a settings movement shape to the trajectory shape.
func ShapeOf(s settings.MovementShape) trajectory.Shape {
	switch s {
	case settings.ShapeCircular:
		return trajectory.Circular
	case settings.ShapeFigure8:
		return trajectory.Figure8
	}
	return trajectory.LeftRight
}

func (t *SpatialTopology) Apply(s settings.Settings) {
	t.applyCommon(s)
	t.Trajectory.Set(s.Physical(params.TravelSpeed), s.Physical(params.TravelWidth), ShapeOf(s.MovementShape))
	t.Binaural.Intensity().Set(s.Physical(params.EffectIntensity))
}

func (t *SpatialTopology) Snap(frame int64) {
	t.snapCommon()
	t.Binaural.SetPosition(t.Trajectory.PositionAt(float64(frame) / float64(t.sampleRate)))
	t.Binaural.Snap()
}

func (t *SpatialTopology) Process(dst []float32, startFrame int64) {
	t.render(dst, startFrame, func(ts float64) {
		t.Binaural.SetPosition(t.Trajectory.PositionAt(ts))
	})
}

func (t *SpatialTopology) ControlPoints() map[string]*automation.Param {
	m := t.commonPoints()
	m["binaural.intensity"] = t.Binaural.Intensity()
	return m
}

func (t *SpatialTopology) ControlValues() map[string]float64 {
	m := values(t.ControlPoints())
	m["binaural.position"] = t.Binaural.Position()
	c := t.Binaural.Controls()
	for i, side := range [2]string{"left", "right"} {
		m["binaural."+side+".delay"] = c[i].Delay
		m["binaural."+side+".low"] = c[i].LowGain
		m["binaural."+side+".high"] = c[i].HighGain
		m["binaural."+side+".q"] = c[i].NotchQ
	}
	return m
}

// BilateralTopology alternates the signal between ears, smoothly or with
// hard cuts. It serves both the bilateral and EMDR modes.
type BilateralTopology struct {
	*base
	Bilateral *effects.Bilateral
}

func newBilateral(b *base) *BilateralTopology {
	t := &BilateralTopology{base: b, Bilateral: effects.NewBilateral(b.sampleRate)}
	b.connect(t.Bilateral)
	return t
}

func (t *BilateralTopology) Apply(s settings.Settings) {
	t.applyCommon(s)
	t.Bilateral.Rate().Set(s.Physical(params.BilateralFrequency))
	t.Bilateral.Width().Set(s.Physical(params.BilateralWidth))
	alg := effects.BilateralSmooth
	if s.BilateralAlgorithm == settings.AlgorithmHardCut {
		alg = effects.BilateralHardCut
	}
	t.Bilateral.SetAlgorithm(alg)
}

func (t *BilateralTopology) Snap(frame int64) {
	t.snapCommon()
	t.Bilateral.Rate().Snap()
	t.Bilateral.Width().Snap()
	t.Bilateral.SetPan(t.Bilateral.PanAt(float64(frame) / float64(t.sampleRate)))
}

func (t *BilateralTopology) Process(dst []float32, startFrame int64) {
	t.render(dst, startFrame, func(ts float64) {
		t.Bilateral.SetPan(t.Bilateral.PanAt(ts))
	})
}

func (t *BilateralTopology) ControlPoints() map[string]*automation.Param {
	m := t.commonPoints()
	m["bilateral.rate"] = t.Bilateral.Rate()
	m["bilateral.width"] = t.Bilateral.Width()
	return m
}

func (t *BilateralTopology) ControlValues() map[string]float64 {
	m := values(t.ControlPoints())
	m["bilateral.pan"] = t.Bilateral.Pan()
	return m
}

// WidenTopology applies the precedence (Haas) widener.
type WidenTopology struct {
	*base
	Precedence *effects.Precedence
}

func newWiden(b *base) *WidenTopology {
	t := &WidenTopology{base: b, Precedence: effects.NewPrecedence(b.sampleRate)}
	b.connect(t.Precedence)
	return t
}

func (t *WidenTopology) Apply(s settings.Settings) {
	t.applyCommon(s)
	t.Precedence.Delay().Set(s.Physical(params.HaasDelay))
	lead := effects.LeadLeft
	if s.LeadChannel == settings.LeadRight {
		lead = effects.LeadRight
	}
	t.Precedence.SetLead(lead)
}

func (t *WidenTopology) Snap(int64) {
	t.snapCommon()
	t.Precedence.Delay().Snap()
}

func (t *WidenTopology) Process(dst []float32, startFrame int64) {
	t.render(dst, startFrame, func(float64) {})
}

func (t *WidenTopology) ControlPoints() map[string]*automation.Param {
	m := t.commonPoints()
	m["precedence.delay"] = t.Precedence.Delay()
	return m
}

func (t *WidenTopology) ControlValues() map[string]float64 {
	m := values(t.ControlPoints())
	m["precedence.lead"] = float64(t.Precedence.Lead())
	return m
}
