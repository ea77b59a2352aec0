package settings

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes s as JSON for persistence next to a saved track.
func Marshal(s Settings) ([]byte, error) {
	s = s.Normalize()
	return json.MarshalIndent(s, "", "  ")
}

// Unmarshal decodes a persisted settings record. Missing fields take the
// defaults of the record's mode, numeric fields are clamped and unknown
// choices are rejected.
func Unmarshal(data []byte) (Settings, error) {
	var head struct {
		Version int  `json:"version"`
		Mode    Mode `json:"mode"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Settings{}, fmt.Errorf("settings: decode: %w", err)
	}
	if head.Version > Version {
		return Settings{}, fmt.Errorf("settings: unsupported version %d", head.Version)
	}
	mode := head.Mode
	if mode == "" {
		mode = ModeSpatial
	}
	if !mode.Valid() {
		return Settings{}, fmt.Errorf("%w: mode %q", ErrInvalidChoice, head.Mode)
	}
	s := Defaults(mode)
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: decode: %w", err)
	}
	if !s.MovementShape.Valid() {
		return Settings{}, fmt.Errorf("%w: movement shape %q", ErrInvalidChoice, s.MovementShape)
	}
	if !s.BilateralAlgorithm.Valid() {
		return Settings{}, fmt.Errorf("%w: bilateral algorithm %q", ErrInvalidChoice, s.BilateralAlgorithm)
	}
	if !s.LeadChannel.Valid() {
		return Settings{}, fmt.Errorf("%w: lead channel %q", ErrInvalidChoice, s.LeadChannel)
	}
	return s.Normalize(), nil
}
