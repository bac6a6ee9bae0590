package action

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/domain"
)

// Gravity adds a constant acceleration.
type Gravity struct {
	Dir r3.Vec
}

func (Gravity) Kind() Kind { return KindGravity }

func (a Gravity) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		pt.Vel = r3.Add(pt.Vel, r3.Scale(dt, a.Dir))
	})
}

// Damping scales velocity by Damping (per unit time) for particles whose
// speed lies in [VLow, VHigh]. VHigh of zero means no upper bound.
type Damping struct {
	Damping r3.Vec
	VLow    float64
	VHigh   float64
}

func (Damping) Kind() Kind { return KindDamping }

func (a Damping) Apply(p *Pass) error {
	lowSq := a.VLow * a.VLow
	highSq := math.Inf(1)
	if a.VHigh > 0 {
		highSq = a.VHigh * a.VHigh
	}
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		v2 := r3.Norm2(pt.Vel)
		if v2 < lowSq || v2 > highSq {
			return
		}
		pt.Vel = r3.Vec{
			X: pt.Vel.X * (1 - (1-a.Damping.X)*dt),
			Y: pt.Vel.Y * (1 - (1-a.Damping.Y)*dt),
			Z: pt.Vel.Z * (1 - (1-a.Damping.Z)*dt),
		}
	})
}

// SpeedLimit clamps speed to [Min, Max]. Max of zero means no upper bound.
type SpeedLimit struct {
	Min, Max float64
}

func (SpeedLimit) Kind() Kind { return KindSpeedLimit }

func (a SpeedLimit) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		speed := r3.Norm(pt.Vel)
		if speed == 0 {
			return
		}
		if speed < a.Min {
			pt.Vel = r3.Scale(a.Min/speed, pt.Vel)
		} else if a.Max > 0 && speed > a.Max {
			pt.Vel = r3.Scale(a.Max/speed, pt.Vel)
		}
	})
}

// inverseSquare is the shared falloff of the attraction actions: a unit
// vector along d scaled by magDT / (|d|² + eps). It returns false outside
// maxRadius or for coincident points.
func inverseSquare(d r3.Vec, magDT, eps, maxRadius float64) (r3.Vec, bool) {
	r2 := r3.Norm2(d)
	if r2 == 0 || (maxRadius > 0 && r2 > maxRadius*maxRadius) {
		return r3.Vec{}, false
	}
	return r3.Scale(magDT/(math.Sqrt(r2)*(r2+eps)), d), true
}

// OrbitPoint accelerates particles toward Center. MaxRadius of zero means
// unlimited range.
type OrbitPoint struct {
	Center    r3.Vec
	Magnitude float64
	Epsilon   float64
	MaxRadius float64
}

func (OrbitPoint) Kind() Kind { return KindOrbitPoint }

func (a OrbitPoint) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		if acc, ok := inverseSquare(r3.Sub(a.Center, pt.Pos), a.Magnitude*dt, a.Epsilon, a.MaxRadius); ok {
			pt.Vel = r3.Add(pt.Vel, acc)
		}
	})
}

// OrbitLine accelerates particles toward the nearest point of the infinite
// line through Point along Axis.
type OrbitLine struct {
	Point     r3.Vec
	Axis      r3.Vec
	Magnitude float64
	Epsilon   float64
	MaxRadius float64
}

func (OrbitLine) Kind() Kind { return KindOrbitLine }

func (a OrbitLine) validate() error {
	if r3.Norm2(a.Axis) == 0 {
		return ErrInvalidAction
	}
	return nil
}

func (a OrbitLine) Apply(p *Pass) error {
	axis := r3.Unit(a.Axis)
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		w := r3.Sub(pt.Pos, a.Point)
		toLine := r3.Sub(r3.Scale(r3.Dot(w, axis), axis), w)
		if acc, ok := inverseSquare(toLine, a.Magnitude*dt, a.Epsilon, a.MaxRadius); ok {
			pt.Vel = r3.Add(pt.Vel, acc)
		}
	})
}

// Vortex swirls particles around the axis through Center, tangentially and
// right-handed about Axis.
type Vortex struct {
	Center    r3.Vec
	Axis      r3.Vec
	Magnitude float64
	Epsilon   float64
	MaxRadius float64
}

func (Vortex) Kind() Kind { return KindVortex }

func (a Vortex) validate() error {
	if r3.Norm2(a.Axis) == 0 {
		return ErrInvalidAction
	}
	return nil
}

func (a Vortex) Apply(p *Pass) error {
	axis := r3.Unit(a.Axis)
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		w := r3.Sub(pt.Pos, a.Center)
		radial := r3.Sub(w, r3.Scale(r3.Dot(w, axis), axis))
		r := r3.Norm(radial)
		if r == 0 || (a.MaxRadius > 0 && r > a.MaxRadius) {
			return
		}
		tangent := r3.Cross(axis, r3.Scale(1/r, radial))
		pt.Vel = r3.Add(pt.Vel, r3.Scale(a.Magnitude*dt/(r*r+a.Epsilon), tangent))
	})
}

// Explosion pushes particles away from Center with a Gaussian shock front
// of radius Velocity*Age and width StdDev.
type Explosion struct {
	Center    r3.Vec
	Velocity  float64
	Magnitude float64
	StdDev    float64
	Epsilon   float64
	Age       float64
}

func (Explosion) Kind() Kind { return KindExplosion }

func (a Explosion) validate() error {
	if a.StdDev <= 0 {
		return ErrInvalidAction
	}
	return nil
}

func (a Explosion) Apply(p *Pass) error {
	radius := a.Velocity * a.Age
	inv2Sigma2 := 1 / (2 * a.StdDev * a.StdDev)
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		d := r3.Sub(pt.Pos, a.Center)
		r := r3.Norm(d)
		if r == 0 {
			return
		}
		diff := r - radius
		mag := a.Magnitude * dt * math.Exp(-diff*diff*inv2Sigma2) / (r*r + a.Epsilon)
		pt.Vel = r3.Add(pt.Vel, r3.Scale(mag/r, d))
	})
}

// Jet accelerates particles inside Domain by a sample of Accel.
type Jet struct {
	Domain domain.Domain
	Accel  domain.Domain
}

func (Jet) Kind() Kind { return KindJet }

func (a Jet) validate() error {
	if a.Domain == nil || a.Accel == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a Jet) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		if a.Domain.Within(pt.Pos) {
			pt.Vel = r3.Add(pt.Vel, r3.Scale(dt, a.Accel.Generate(p.Rng)))
		}
	})
}

// RandomAccel adds a sampled acceleration.
type RandomAccel struct {
	Domain domain.Domain
}

func (RandomAccel) Kind() Kind { return KindRandomAccel }

func (a RandomAccel) validate() error {
	if a.Domain == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a RandomAccel) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		pt.Vel = r3.Add(pt.Vel, r3.Scale(dt, a.Domain.Generate(p.Rng)))
	})
}

// RandomDisplace adds a sampled displacement.
type RandomDisplace struct {
	Domain domain.Domain
}

func (RandomDisplace) Kind() Kind { return KindRandomDisplace }

func (a RandomDisplace) validate() error {
	if a.Domain == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a RandomDisplace) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		pt.Pos = r3.Add(pt.Pos, r3.Scale(dt, a.Domain.Generate(p.Rng)))
	})
}

// RandomVelocity replaces velocity with a sample.
type RandomVelocity struct {
	Domain domain.Domain
}

func (RandomVelocity) Kind() Kind { return KindRandomVelocity }

func (a RandomVelocity) validate() error {
	if a.Domain == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a RandomVelocity) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		pt.Vel = a.Domain.Generate(p.Rng)
	})
}

// TargetColor blends color toward Color at rate Scale per unit time.
type TargetColor struct {
	Color components.Color
	Scale float64
}

func (TargetColor) Kind() Kind { return KindTargetColor }

func (a TargetColor) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		k := a.Scale * dt
		pt.Color.R += (a.Color.R - pt.Color.R) * k
		pt.Color.G += (a.Color.G - pt.Color.G) * k
		pt.Color.B += (a.Color.B - pt.Color.B) * k
		pt.Color.A += (a.Color.A - pt.Color.A) * k
	})
}

// TargetSize blends size toward Size, per component rate Scale.
type TargetSize struct {
	Size  r3.Vec
	Scale r3.Vec
}

func (TargetSize) Kind() Kind { return KindTargetSize }

func (a TargetSize) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		pt.Size.X += (a.Size.X - pt.Size.X) * a.Scale.X * dt
		pt.Size.Y += (a.Size.Y - pt.Size.Y) * a.Scale.Y * dt
		pt.Size.Z += (a.Size.Z - pt.Size.Z) * a.Scale.Z * dt
	})
}

// TargetVelocity blends velocity toward Vel at rate Scale.
type TargetVelocity struct {
	Vel   r3.Vec
	Scale float64
}

func (TargetVelocity) Kind() Kind { return KindTargetVelocity }

func (a TargetVelocity) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		pt.Vel = r3.Add(pt.Vel, r3.Scale(a.Scale*dt, r3.Sub(a.Vel, pt.Vel)))
	})
}
