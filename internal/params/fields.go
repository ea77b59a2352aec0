package params

// Field names a numeric settings field. The string is the JSON key.
type Field string

const (
	Warmth             Field = "warmth"
	Clarity            Field = "clarity"
	Air                Field = "air"
	MasterVolume       Field = "masterVolume"
	TravelSpeed        Field = "travelSpeed"
	TravelWidth        Field = "travelWidth"
	EffectIntensity    Field = "effectIntensity"
	Depth              Field = "depth"
	BilateralFrequency Field = "bilateralFrequency"
	BilateralWidth     Field = "bilateralWidth"
	HaasDelay          Field = "haasDelay"
)

// Fields lists every numeric field in a stable order.
var Fields = []Field{
	Warmth, Clarity, Air, MasterVolume,
	TravelSpeed, TravelWidth, EffectIntensity, Depth,
	BilateralFrequency, BilateralWidth, HaasDelay,
}

// Tone-chain corner frequencies, fixed per field.
const (
	WarmthFreqHz  = 200.0
	ClarityFreqHz = 3000.0
	ClarityQ      = 1.0
	AirFreqHz     = 8000.0
)

var table = map[Field]Mapping{
	Warmth:             {Min: -12, Max: 12, Curve: Linear, Unit: "dB"},
	Clarity:            {Min: -12, Max: 12, Curve: Linear, Unit: "dB"},
	Air:                {Min: -12, Max: 12, Curve: Linear, Unit: "dB"},
	MasterVolume:       {Min: 0, Max: 1.25, Curve: Linear, Unit: "ratio"},
	TravelSpeed:        {Min: 0.05, Max: 5, Curve: Exponential, Unit: "Hz"},
	TravelWidth:        {Min: 0, Max: 1, Curve: Linear, Unit: "ratio"},
	EffectIntensity:    {Min: 0, Max: 1, Curve: Linear, Unit: "ratio"},
	Depth:              {Min: 0, Max: 1, Curve: Linear, Unit: "ratio"},
	BilateralFrequency: {Min: 0.25, Max: 4, Curve: Exponential, Unit: "Hz"},
	BilateralWidth:     {Min: 0, Max: 1, Curve: Linear, Unit: "ratio"},
	HaasDelay:          {Min: 5, Max: 60, Curve: Logarithmic, Unit: "ms"},
}

// For returns the mapping registered for f.
func For(f Field) (Mapping, bool) {
	m, ok := table[f]
	return m, ok
}

// Physical maps a normalized value of field f to its physical unit.
// Unknown fields map linearly onto [0, 1].
func Physical(f Field, value float64) float64 {
	m, ok := table[f]
	if !ok {
		m = Mapping{Min: 0, Max: 1}
	}
	return ToPhysical(value, m)
}

// Known reports whether f is a registered numeric field.
func Known(f Field) bool {
	_, ok := table[f]
	return ok
}
