package action

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/domain"
	"github.com/pthm-cable/spray/shadow"
)

// Template describes the initial state of spawned particles.
// Nil domains fall back to zero velocity, white color and unit size.
type Template struct {
	Velocity    domain.Domain
	Color       domain.Domain // sampled as RGB
	Alpha       float64
	Size        domain.Domain
	StartingAge float64
	AgeSigma    float64 // Gaussian jitter on StartingAge
	Mass        float64 // 0 means 1
}

// DefaultTemplate is a resting, opaque white, unit-size particle.
func DefaultTemplate() Template {
	return Template{Alpha: 1}
}

// fill initializes p at pos from the template.
func (t Template) fill(p *Pass, pt *components.Particle, pos r3.Vec) {
	pt.Pos = pos
	pt.PosB = pos
	if t.Velocity != nil {
		pt.Vel = t.Velocity.Generate(p.Rng)
	}
	pt.VelB = pt.Vel

	pt.Color = components.Color{R: 1, G: 1, B: 1, A: t.Alpha}
	if t.Color != nil {
		pt.Color = components.ColorFromVec(t.Color.Generate(p.Rng), t.Alpha)
	}

	pt.Size = r3.Vec{X: 1, Y: 1, Z: 1}
	if t.Size != nil {
		pt.Size = t.Size.Generate(p.Rng)
	}

	pt.Age = t.StartingAge
	if t.AgeSigma != 0 {
		pt.Age += p.Rng.NormFloat64() * t.AgeSigma
	}
	pt.Mass = t.Mass
	if pt.Mass == 0 {
		pt.Mass = 1
	}
}

// Source spawns Rate particles per unit time at points of Position.
// The fractional part of Rate*dt becomes one extra particle with matching
// probability, so low rates still emit on average.
type Source struct {
	Rate     float64
	Position domain.Domain
	Template Template
}

func (Source) Kind() Kind { return KindSource }

func (a Source) validate() error {
	if a.Position == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a Source) Apply(p *Pass) error {
	dt, err := p.TimeStep()
	if err != nil {
		return err
	}
	want := a.Rate * dt
	count := int(math.Floor(want))
	if p.Rng.Float64() < want-float64(count) {
		count++
	}
	p.Group.Spawn(count, func(pt *components.Particle) {
		a.Template.fill(p, pt, a.Position.Generate(p.Rng))
	})
	return nil
}

// Vertex spawns one particle at Pos. Color applies when the template has no
// color domain.
type Vertex struct {
	Pos      r3.Vec
	Color    components.Color
	Template Template
}

func (Vertex) Kind() Kind { return KindVertex }

func (a Vertex) Apply(p *Pass) error {
	p.Group.Spawn(1, func(pt *components.Particle) {
		a.Template.fill(p, pt, a.Pos)
		if a.Template.Color == nil {
			pt.Color = a.Color
		}
	})
	return nil
}

// Move integrates position by velocity (explicit Euler).
type Move struct{}

func (Move) Kind() Kind { return KindMove }

func (Move) Apply(p *Pass) error {
	return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
		pt.Pos = r3.Add(pt.Pos, r3.Scale(dt, pt.Vel))
	})
}

// KillOld kills particles older than AgeLimit, or younger when KillLessThan
// is set.
type KillOld struct {
	AgeLimit     float64
	KillLessThan bool
}

func (KillOld) Kind() Kind { return KindKillOld }

func (a KillOld) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		if (!a.KillLessThan && pt.Age > a.AgeLimit) || (a.KillLessThan && pt.Age < a.AgeLimit) {
			pt.Kill()
		}
	})
}

// Sink kills particles whose position is inside (KillInside) or outside the
// domain.
type Sink struct {
	KillInside bool
	Domain     domain.Domain
}

func (Sink) Kind() Kind { return KindSink }

func (a Sink) validate() error {
	if a.Domain == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a Sink) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		if a.Domain.Within(pt.Pos) == a.KillInside {
			pt.Kill()
		}
	})
}

// SinkVelocity is Sink tested against velocity instead of position.
type SinkVelocity struct {
	KillInside bool
	Domain     domain.Domain
}

func (SinkVelocity) Kind() Kind { return KindSinkVelocity }

func (a SinkVelocity) validate() error {
	if a.Domain == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a SinkVelocity) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		if a.Domain.Within(pt.Vel) == a.KillInside {
			pt.Kill()
		}
	})
}

// CopyVertexB saves position and/or velocity into the checkpoint fields.
type CopyVertexB struct {
	CopyPos bool
	CopyVel bool
}

func (CopyVertexB) Kind() Kind { return KindCopyVertexB }

func (a CopyVertexB) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		if a.CopyPos {
			pt.PosB = pt.Pos
		}
		if a.CopyVel {
			pt.VelB = pt.Vel
		}
	})
}

// Restore steers particles back to their checkpoint position so they arrive
// after TimeLeft time units. With TimeLeft <= 0 they snap there and stop.
type Restore struct {
	TimeLeft float64
}

func (Restore) Kind() Kind { return KindRestore }

func (a Restore) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		if a.TimeLeft <= 0 {
			pt.Pos = pt.PosB
			pt.Vel = r3.Vec{}
			return
		}
		pt.Vel = r3.Scale(1/a.TimeLeft, r3.Sub(pt.PosB, pt.Pos))
	})
}

// Callback calls Fn on every live particle. Fn must not issue actions.
type Callback struct {
	Fn func(v *shadow.View, pt *components.Particle)
}

func (Callback) Kind() Kind { return KindCallback }

func (a Callback) validate() error {
	if a.Fn == nil {
		return ErrInvalidAction
	}
	return nil
}

func (a Callback) Apply(p *Pass) error {
	return p.Each(func(_ int, pt *components.Particle) {
		a.Fn(p.View, pt)
	})
}
