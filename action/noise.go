package action

import (
	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
)

// Noise field octave settings.
const (
	noiseAlpha   = 2.0
	noiseBeta    = 2.0
	noiseOctaves = 3
)

// Offsets decorrelating the three acceleration axes.
var noiseOffsets = [3]r3.Vec{
	{},
	{X: 31.4, Y: 47.1, Z: 12.9},
	{X: 73.3, Y: 5.7, Z: 91.1},
}

// Turbulence accelerates particles through a coherent noise field. Nearby
// particles are pushed alike, unlike RandomAccel which samples per particle.
type Turbulence struct {
	Magnitude float64 // Peak acceleration per unit time
	Frequency float64 // Spatial frequency of the field

	field *perlin.Perlin
}

// NewTurbulence builds a turbulence field. The field is fixed by seed, so
// replaying a recorded Turbulence reproduces the same pushes.
func NewTurbulence(magnitude, frequency float64, seed int64) Turbulence {
	return Turbulence{
		Magnitude: magnitude,
		Frequency: frequency,
		field:     perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, seed),
	}
}

func (Turbulence) Kind() Kind { return KindTurbulence }

func (a Turbulence) validate() error {
	if a.field == nil || a.Frequency <= 0 {
		return ErrInvalidAction
	}
	return nil
}

// Sample returns the field's acceleration at pos.
func (a Turbulence) Sample(pos r3.Vec) r3.Vec {
	q := r3.Scale(a.Frequency, pos)
	var out [3]float64
	for i, off := range noiseOffsets {
		s := r3.Add(q, off)
		out[i] = a.field.Noise3D(s.X, s.Y, s.Z)
	}
	return r3.Scale(a.Magnitude, r3.Vec{X: out[0], Y: out[1], Z: out[2]})
}

func (a Turbulence) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		pt.Vel = r3.Add(pt.Vel, r3.Scale(dt, a.Sample(pt.Pos)))
	})
}
