package spatialfx

import (
	"github.com/cbegin/spatialfx-go/internal/history"
	"github.com/cbegin/spatialfx-go/internal/params"
	"github.com/cbegin/spatialfx-go/internal/pcm"
	"github.com/cbegin/spatialfx-go/internal/settings"
	"github.com/cbegin/spatialfx-go/internal/trajectory"
)

type (
	Settings = settings.Settings
	Mode     = settings.Mode
	Field    = params.Field
	Buffer   = pcm.Buffer
	Snapshot = history.Snapshot
	Frame    = trajectory.Frame
)

const (
	ModeSpatial   = settings.ModeSpatial
	ModeBilateral = settings.ModeBilateral
	ModeEMDR      = settings.ModeEMDR
	ModeHaas      = settings.ModeHaas
)

// Numeric fields accepted by UpdateParameter.
const (
	FieldWarmth             = params.Warmth
	FieldClarity            = params.Clarity
	FieldAir                = params.Air
	FieldMasterVolume       = params.MasterVolume
	FieldTravelSpeed        = params.TravelSpeed
	FieldTravelWidth        = params.TravelWidth
	FieldEffectIntensity    = params.EffectIntensity
	FieldDepth              = params.Depth
	FieldBilateralFrequency = params.BilateralFrequency
	FieldBilateralWidth     = params.BilateralWidth
	FieldHaasDelay          = params.HaasDelay
)

// Choice fields accepted by UpdateChoice.
const (
	FieldMode               = settings.FieldMode
	FieldMovementShape      = settings.FieldMovementShape
	FieldBilateralAlgorithm = settings.FieldBilateralAlgorithm
	FieldLeadChannel        = settings.FieldLeadChannel
)

// DefaultSettings returns the defaults for mode.
func DefaultSettings(mode Mode) Settings {
	return settings.Defaults(mode)
}

// NewBuffer allocates a silent buffer.
func NewBuffer(sampleRate, channels, frames int) *Buffer {
	return pcm.New(sampleRate, channels, frames)
}

// State is the engine lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StatePlaying
	StatePaused
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	}
	return "unknown"
}
