package params

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllCurves(t *testing.T) {
	mappings := map[string]Mapping{
		"linear":      {Min: -12, Max: 12, Curve: Linear},
		"exponential": {Min: 0.05, Max: 5, Curve: Exponential},
		"logarithmic": {Min: 5, Max: 60, Curve: Logarithmic},
	}
	rng := rand.New(rand.NewSource(1))
	for name, m := range mappings {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, m.Validate())
			for i := 0; i < 1000; i++ {
				v := rng.Float64() * 100
				got := ToNormalized(ToPhysical(v, m), m)
				require.InDelta(t, v, got, 1e-6, "value %v", v)
			}
			assert.InDelta(t, 0, ToNormalized(ToPhysical(0, m), m), 1e-6)
			assert.InDelta(t, 100, ToNormalized(ToPhysical(100, m), m), 1e-6)
		})
	}
}

func TestRoundTripRegisteredFields(t *testing.T) {
	for _, f := range Fields {
		m, ok := For(f)
		require.True(t, ok, f)
		require.NoError(t, m.Validate(), f)
		for v := 0.0; v <= 100; v += 0.5 {
			assert.InDelta(t, v, ToNormalized(ToPhysical(v, m), m), 1e-6, "%s at %v", f, v)
		}
	}
}

func TestEndpoints(t *testing.T) {
	m := Mapping{Min: 0.25, Max: 4, Curve: Exponential}
	assert.InDelta(t, 0.25, ToPhysical(0, m), 1e-12)
	assert.InDelta(t, 4, ToPhysical(100, m), 1e-12)
	assert.InDelta(t, 1, ToPhysical(50, m), 1e-12)

	l := Mapping{Min: 5, Max: 60, Curve: Logarithmic}
	assert.InDelta(t, 5, ToPhysical(0, l), 1e-12)
	assert.InDelta(t, 60, ToPhysical(100, l), 1e-12)
	// Log taper sits above the linear midpoint.
	assert.Greater(t, ToPhysical(50, l), 32.5)
}

func TestMappedFrequencies(t *testing.T) {
	assert.InDelta(t, 0.5, Physical(TravelSpeed, 50), 1e-12)
	assert.InDelta(t, 1.0, Physical(BilateralFrequency, 50), 1e-12)
	assert.InDelta(t, 0.0, Physical(Warmth, 50), 1e-12)
}

func TestNaNAndOutOfRange(t *testing.T) {
	m := Mapping{Min: -12, Max: 12, Curve: Linear}
	assert.Equal(t, -12.0, ToPhysical(math.NaN(), m))
	assert.Equal(t, 12.0, ToPhysical(250, m))
	assert.Equal(t, -12.0, ToPhysical(-3, m))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
}

func TestValidate(t *testing.T) {
	assert.Error(t, Mapping{Min: 0, Max: 5, Curve: Exponential}.Validate())
	assert.Error(t, Mapping{Min: 3, Max: 3}.Validate())
	assert.Error(t, Mapping{Min: 0, Max: 1, Curve: Curve(9)}.Validate())
	assert.NoError(t, Mapping{Min: 0, Max: 1}.Validate())
}
