// Package params converts normalized 0-100 slider values into physical units
// and back.
package params

import (
	"errors"
	"fmt"
	"math"
)

// Curve selects how a normalized value is spread over a physical range.
type Curve int

const (
	Linear Curve = iota
	// Exponential maps v to min*(max/min)^(v/100). Requires min > 0.
	Exponential
	// Logarithmic maps v to min+(max-min)*ln(1+(e-1)*v/100), a taper that
	// rises quickly at the bottom of the slider and flattens towards the top.
	Logarithmic
)

func (c Curve) String() string {
	switch c {
	case Linear:
		return "linear"
	case Exponential:
		return "exponential"
	case Logarithmic:
		return "logarithmic"
	default:
		return fmt.Sprintf("curve(%d)", int(c))
	}
}

// Mapping describes how one settings field maps to its physical unit.
type Mapping struct {
	Min   float64
	Max   float64
	Curve Curve
	Unit  string
}

var errEmptyRange = errors.New("params: mapping has an empty range")

// Validate reports whether m can be evaluated and inverted.
func (m Mapping) Validate() error {
	if m.Min == m.Max {
		return errEmptyRange
	}
	if m.Curve == Exponential && (m.Min <= 0 || m.Max <= 0) {
		return fmt.Errorf("params: exponential mapping needs positive bounds, got [%g, %g]", m.Min, m.Max)
	}
	switch m.Curve {
	case Linear, Exponential, Logarithmic:
		return nil
	default:
		return fmt.Errorf("params: unknown curve %v", m.Curve)
	}
}

// Clamp bounds a normalized value to [0, 100]; NaN becomes 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ToPhysical maps a normalized value to m's physical unit.
func ToPhysical(value float64, m Mapping) float64 {
	x := Clamp(value) / 100
	switch m.Curve {
	case Exponential:
		return m.Min * math.Pow(m.Max/m.Min, x)
	case Logarithmic:
		return m.Min + (m.Max-m.Min)*math.Log(1+(math.E-1)*x)
	default:
		return m.Min + x*(m.Max-m.Min)
	}
}

// ToNormalized is the exact inverse of ToPhysical. Physical values outside
// the mapping's range come back outside [0, 100]; callers clamp if needed.
func ToNormalized(physical float64, m Mapping) float64 {
	if math.IsNaN(physical) {
		physical = m.Min
	}
	var x float64
	switch m.Curve {
	case Exponential:
		x = math.Log(physical/m.Min) / math.Log(m.Max/m.Min)
	case Logarithmic:
		x = (math.Exp((physical-m.Min)/(m.Max-m.Min)) - 1) / (math.E - 1)
	default:
		x = (physical - m.Min) / (m.Max - m.Min)
	}
	return x * 100
}
