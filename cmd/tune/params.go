package main

import "github.com/pthm-cable/spray/demos"

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name, also the YAML key
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Starting value
}

// ParamVector holds the set of all tunable fountain parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
// Order must match Apply.
func NewParamVector() *ParamVector {
	d := demos.DefaultFountainParams()
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "rate", Min: 5, Max: 200, Default: d.Rate},
			{Name: "jet_speed", Min: 0.1, Max: 0.8, Default: d.JetSpeed},
			{Name: "spread", Min: 0, Max: 0.2, Default: d.Spread},
			{Name: "gravity", Min: 0.002, Max: 0.03, Default: d.Gravity},
			{Name: "damping", Min: 0.9, Max: 1.0, Default: d.Damping},
			{Name: "resilience", Min: 0, Max: 1, Default: d.Resilience},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return out
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return out
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return out
}

// Apply converts clamped raw values into fountain parameters.
func (pv *ParamVector) Apply(values []float64) demos.FountainParams {
	c := pv.Clamp(values)
	return demos.FountainParams{
		Rate:       c[0],
		JetSpeed:   c[1],
		Spread:     c[2],
		Gravity:    c[3],
		Damping:    c[4],
		Resilience: c[5],
	}
}

// Map returns values keyed by parameter name, for YAML output.
func (pv *ParamVector) Map(values []float64) map[string]float64 {
	c := pv.Clamp(values)
	out := make(map[string]float64, len(c))
	for i, spec := range pv.Specs {
		out[spec.Name] = c[i]
	}
	return out
}
