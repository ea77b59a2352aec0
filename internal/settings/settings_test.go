package settings

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/spatialfx-go/internal/params"
)

func TestDefaultsAreValidForEveryMode(t *testing.T) {
	for _, m := range Modes {
		s := Defaults(m)
		assert.Equal(t, m, s.Mode)
		assert.Equal(t, s, s.Normalize(), "defaults for %s should already be normalized", m)
		for _, f := range params.Fields {
			v, err := s.Get(f)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	}
	assert.Equal(t, AlgorithmHardCut, Defaults(ModeEMDR).BilateralAlgorithm)
	assert.Equal(t, AlgorithmSmooth, Defaults(ModeBilateral).BilateralAlgorithm)
}

func TestSwitchModePreservesStickyFields(t *testing.T) {
	for _, from := range Modes {
		for _, to := range Modes {
			prev := Defaults(from)
			require.NoError(t, prev.Set(params.Warmth, 12))
			require.NoError(t, prev.Set(params.Clarity, 81))
			require.NoError(t, prev.Set(params.Air, 33))
			require.NoError(t, prev.Set(params.MasterVolume, 64))
			require.NoError(t, prev.Set(params.TravelSpeed, 99))
			require.NoError(t, prev.Set(params.Depth, 77))

			next := SwitchMode(prev, to)
			want := Defaults(to)
			want.Warmth, want.Clarity, want.Air, want.MasterVolume = 12, 81, 33, 64
			assert.Equal(t, want, next, "%s -> %s", from, to)
		}
	}
}

func TestSetClampsSilently(t *testing.T) {
	s := Defaults(ModeSpatial)
	require.NoError(t, s.Set(params.TravelWidth, 140))
	assert.Equal(t, 100.0, s.TravelWidth)
	require.NoError(t, s.Set(params.TravelWidth, -5))
	assert.Equal(t, 0.0, s.TravelWidth)
	require.NoError(t, s.Set(params.TravelWidth, math.NaN()))
	assert.Equal(t, 0.0, s.TravelWidth)

	err := s.Set("bogus", 1)
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = s.Get("bogus")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestChoices(t *testing.T) {
	s := Defaults(ModeSpatial)
	require.NoError(t, s.SetChoice(FieldMovementShape, "figure-8"))
	assert.Equal(t, ShapeFigure8, s.MovementShape)
	require.NoError(t, s.SetChoice(FieldLeadChannel, "right"))
	got, err := s.Choice(FieldLeadChannel)
	require.NoError(t, err)
	assert.Equal(t, "right", got)

	assert.ErrorIs(t, s.SetChoice(FieldBilateralAlgorithm, "wobble"), ErrInvalidChoice)
	assert.ErrorIs(t, s.SetChoice(FieldMode, "surround"), ErrInvalidChoice)
	assert.ErrorIs(t, s.SetChoice(params.Warmth, "x"), ErrUnknownField)
	assert.True(t, IsChoice(FieldMode))
	assert.False(t, IsChoice(params.Depth))
}

func TestJSONRoundTrip(t *testing.T) {
	s := Defaults(ModeHaas)
	s.HaasDelay = 42.5
	s.LeadChannel = LeadRight
	data, err := Marshal(s)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestUnmarshalFillsAndClamps(t *testing.T) {
	got, err := Unmarshal([]byte(`{"mode":"emdr","bilateralWidth":250}`))
	require.NoError(t, err)
	want := Defaults(ModeEMDR)
	want.BilateralWidth = 100
	assert.Equal(t, want, got)

	_, err = Unmarshal([]byte(`{"mode":"surround"}`))
	assert.ErrorIs(t, err, ErrInvalidChoice)
	_, err = Unmarshal([]byte(`{"mode":"haas","leadChannel":"center"}`))
	assert.ErrorIs(t, err, ErrInvalidChoice)
	_, err = Unmarshal([]byte(`{"version":7}`))
	assert.Error(t, err)
	_, err = Unmarshal([]byte(`{`))
	assert.Error(t, err)
}
