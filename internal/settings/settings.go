// Package settings defines the user-facing settings record shared by the live
// engine, the offline renderer and the undo history.
package settings

import (
	"errors"
	"fmt"

	"github.com/cbegin/spatialfx-go/internal/params"
)

// Version is the current settings record version.
const Version = 1

type Mode string

const (
	ModeSpatial   Mode = "8d-spatial"
	ModeBilateral Mode = "bilateral"
	ModeEMDR      Mode = "emdr"
	ModeHaas      Mode = "haas"
)

// Modes lists every supported mode.
var Modes = []Mode{ModeSpatial, ModeBilateral, ModeEMDR, ModeHaas}

func (m Mode) Valid() bool {
	switch m {
	case ModeSpatial, ModeBilateral, ModeEMDR, ModeHaas:
		return true
	}
	return false
}

type MovementShape string

const (
	ShapeLeftRight MovementShape = "left-right"
	ShapeCircular  MovementShape = "circular"
	ShapeFigure8   MovementShape = "figure-8"
)

func (s MovementShape) Valid() bool {
	return s == ShapeLeftRight || s == ShapeCircular || s == ShapeFigure8
}

type BilateralAlgorithm string

const (
	AlgorithmSmooth  BilateralAlgorithm = "smooth"
	AlgorithmHardCut BilateralAlgorithm = "hard-cut"
)

func (a BilateralAlgorithm) Valid() bool {
	return a == AlgorithmSmooth || a == AlgorithmHardCut
}

type LeadChannel string

const (
	LeadLeft  LeadChannel = "left"
	LeadRight LeadChannel = "right"
)

func (c LeadChannel) Valid() bool {
	return c == LeadLeft || c == LeadRight
}

// Choice fields take one of a closed set of strings rather than 0-100.
const (
	FieldMode               params.Field = "mode"
	FieldMovementShape      params.Field = "movementShape"
	FieldBilateralAlgorithm params.Field = "bilateralAlgorithm"
	FieldLeadChannel        params.Field = "leadChannel"
)

var (
	ErrUnknownField  = errors.New("settings: unknown field")
	ErrInvalidChoice = errors.New("settings: invalid choice")
)

// Settings is a complete, always-valid parameter record. All numeric fields
// are normalized to [0, 100]; fields unused by the current mode are inert.
// Settings holds no references, so assignment copies it.
type Settings struct {
	Version int  `json:"version"`
	Mode    Mode `json:"mode"`

	Warmth       float64 `json:"warmth"`
	Clarity      float64 `json:"clarity"`
	Air          float64 `json:"air"`
	MasterVolume float64 `json:"masterVolume"`

	TravelSpeed     float64       `json:"travelSpeed"`
	TravelWidth     float64       `json:"travelWidth"`
	EffectIntensity float64       `json:"effectIntensity"`
	MovementShape   MovementShape `json:"movementShape"`

	Depth float64 `json:"depth"`

	BilateralFrequency float64            `json:"bilateralFrequency"`
	BilateralWidth     float64            `json:"bilateralWidth"`
	BilateralAlgorithm BilateralAlgorithm `json:"bilateralAlgorithm"`

	HaasDelay   float64     `json:"haasDelay"`
	LeadChannel LeadChannel `json:"leadChannel"`
}

func base() Settings {
	return Settings{
		Version:            Version,
		Warmth:             50,
		Clarity:            50,
		Air:                50,
		MasterVolume:       80,
		TravelSpeed:        50,
		TravelWidth:        80,
		EffectIntensity:    70,
		MovementShape:      ShapeLeftRight,
		Depth:              0,
		BilateralFrequency: 50,
		BilateralWidth:     100,
		BilateralAlgorithm: AlgorithmSmooth,
		HaasDelay:          30,
		LeadChannel:        LeadLeft,
	}
}

// Defaults returns the default settings for mode. Unknown modes fall back to
// the spatial defaults.
func Defaults(mode Mode) Settings {
	s := base()
	switch mode {
	case ModeBilateral:
		s.Mode = ModeBilateral
	case ModeEMDR:
		s.Mode = ModeEMDR
		s.BilateralAlgorithm = AlgorithmHardCut
	case ModeHaas:
		s.Mode = ModeHaas
		s.Depth = 15
	default:
		s.Mode = ModeSpatial
		s.Depth = 30
	}
	return s
}

// StickyFields survive a mode switch.
var StickyFields = []params.Field{params.Warmth, params.Clarity, params.Air, params.MasterVolume}

// SwitchMode returns mode's defaults with the sticky fields carried over from
// prev.
func SwitchMode(prev Settings, mode Mode) Settings {
	next := Defaults(mode)
	for _, f := range StickyFields {
		v, _ := prev.Get(f)
		_ = next.Set(f, v)
	}
	return next
}

// Get returns the normalized value of numeric field f.
func (s Settings) Get(f params.Field) (float64, error) {
	p := s.field(f)
	if p == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return *p, nil
}

// Set stores v into numeric field f, clamped to [0, 100].
func (s *Settings) Set(f params.Field, v float64) error {
	p := s.field(f)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*p = params.Clamp(v)
	return nil
}

// Physical returns the physical value of numeric field f.
func (s Settings) Physical(f params.Field) float64 {
	v, _ := s.Get(f)
	return params.Physical(f, v)
}

// Choice returns the string value of a choice field.
func (s Settings) Choice(f params.Field) (string, error) {
	switch f {
	case FieldMode:
		return string(s.Mode), nil
	case FieldMovementShape:
		return string(s.MovementShape), nil
	case FieldBilateralAlgorithm:
		return string(s.BilateralAlgorithm), nil
	case FieldLeadChannel:
		return string(s.LeadChannel), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, f)
}

// SetChoice stores a choice field. Mode is accepted here but callers that
// own a graph should route mode changes through SwitchMode instead.
func (s *Settings) SetChoice(f params.Field, v string) error {
	switch f {
	case FieldMode:
		if !Mode(v).Valid() {
			return fmt.Errorf("%w: mode %q", ErrInvalidChoice, v)
		}
		s.Mode = Mode(v)
	case FieldMovementShape:
		if !MovementShape(v).Valid() {
			return fmt.Errorf("%w: movement shape %q", ErrInvalidChoice, v)
		}
		s.MovementShape = MovementShape(v)
	case FieldBilateralAlgorithm:
		if !BilateralAlgorithm(v).Valid() {
			return fmt.Errorf("%w: bilateral algorithm %q", ErrInvalidChoice, v)
		}
		s.BilateralAlgorithm = BilateralAlgorithm(v)
	case FieldLeadChannel:
		if !LeadChannel(v).Valid() {
			return fmt.Errorf("%w: lead channel %q", ErrInvalidChoice, v)
		}
		s.LeadChannel = LeadChannel(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return nil
}

// IsChoice reports whether f is a choice (non-numeric) field.
func IsChoice(f params.Field) bool {
	switch f {
	case FieldMode, FieldMovementShape, FieldBilateralAlgorithm, FieldLeadChannel:
		return true
	}
	return false
}

// Normalize clamps every numeric field and replaces invalid choices with the
// mode defaults, so the result is always a valid record.
func (s Settings) Normalize() Settings {
	if !s.Mode.Valid() {
		s.Mode = ModeSpatial
	}
	def := Defaults(s.Mode)
	for _, f := range params.Fields {
		p := s.field(f)
		*p = params.Clamp(*p)
	}
	if !s.MovementShape.Valid() {
		s.MovementShape = def.MovementShape
	}
	if !s.BilateralAlgorithm.Valid() {
		s.BilateralAlgorithm = def.BilateralAlgorithm
	}
	if !s.LeadChannel.Valid() {
		s.LeadChannel = def.LeadChannel
	}
	s.Version = Version
	return s
}

func (s *Settings) field(f params.Field) *float64 {
	switch f {
	case params.Warmth:
		return &s.Warmth
	case params.Clarity:
		return &s.Clarity
	case params.Air:
		return &s.Air
	case params.MasterVolume:
		return &s.MasterVolume
	case params.TravelSpeed:
		return &s.TravelSpeed
	case params.TravelWidth:
		return &s.TravelWidth
	case params.EffectIntensity:
		return &s.EffectIntensity
	case params.Depth:
		return &s.Depth
	case params.BilateralFrequency:
		return &s.BilateralFrequency
	case params.BilateralWidth:
		return &s.BilateralWidth
	case params.HaasDelay:
		return &s.HaasDelay
	}
	return nil
}
