package action

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/domain"
)

// obstacle checks that d is a domain Bounce and Avoid can work against.
func obstacle(d domain.Domain) error {
	switch d.(type) {
	case domain.Surface, domain.Sphere:
		return nil
	case nil:
		return ErrInvalidAction
	default:
		return ErrUnsupportedDomain
	}
}

// reflect splits v into normal and tangential parts against n and returns
// the bounced velocity. Friction is skipped for slow tangential motion.
func reflect(v, n r3.Vec, friction, resilience, cutoffSq float64) r3.Vec {
	vn := r3.Scale(r3.Dot(n, v), n)
	vt := r3.Sub(v, vn)
	if r3.Norm2(vt) <= cutoffSq {
		return r3.Sub(vt, r3.Scale(resilience, vn))
	}
	return r3.Sub(r3.Scale(1-friction, vt), r3.Scale(resilience, vn))
}

// Bounce reflects particles that would cross the domain during the next dt.
// Resilience scales the normal component, Friction removes a fraction of the
// tangential component unless its square is at most CutoffSq.
// Supported domains are the planar surfaces and spheres.
type Bounce struct {
	Friction   float64
	Resilience float64
	CutoffSq   float64
	Domain     domain.Domain
}

func (Bounce) Kind() Kind { return KindBounce }

func (a Bounce) validate() error { return obstacle(a.Domain) }

func (a Bounce) Apply(p *Pass) error {
	switch d := a.Domain.(type) {
	case domain.Surface:
		return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
			next := r3.Add(pt.Pos, r3.Scale(dt, pt.Vel))
			distOld := d.PlaneDistance(pt.Pos)
			distNew := d.PlaneDistance(next)
			if (distOld >= 0) == (distNew >= 0) {
				return
			}
			// Where along the step the plane is crossed
			t := distOld / (distOld - distNew)
			hit := r3.Add(pt.Pos, r3.Scale(t*dt, pt.Vel))
			if !d.OnSurface(hit) {
				return
			}
			pt.Vel = reflect(pt.Vel, d.Normal(), a.Friction, a.Resilience, a.CutoffSq)
		})
	case domain.Sphere:
		return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
			next := r3.Add(pt.Pos, r3.Scale(dt, pt.Vel))
			distOld := d.Distance(pt.Pos)
			distNew := d.Distance(next)
			if (distOld >= 0) == (distNew >= 0) {
				return
			}
			n := r3.Sub(pt.Pos, d.Center)
			if r3.Norm2(n) == 0 {
				return
			}
			pt.Vel = reflect(pt.Vel, r3.Unit(n), a.Friction, a.Resilience, a.CutoffSq)
		})
	default:
		return ErrUnsupportedDomain
	}
}

// Avoid steers particles away from the domain when their current velocity
// would reach it within LookAhead time units. The push grows as
// Magnitude / (distance² + Epsilon).
// Supported domains are the planar surfaces and spheres.
type Avoid struct {
	Magnitude float64
	Epsilon   float64
	LookAhead float64
	Domain    domain.Domain
}

func (Avoid) Kind() Kind { return KindAvoid }

func (a Avoid) validate() error { return obstacle(a.Domain) }

func (a Avoid) Apply(p *Pass) error {
	switch d := a.Domain.(type) {
	case domain.Surface:
		n := d.Normal()
		return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
			ahead := r3.Add(pt.Pos, r3.Scale(a.LookAhead, pt.Vel))
			distOld := d.PlaneDistance(pt.Pos)
			distNew := d.PlaneDistance(ahead)
			if (distOld >= 0) == (distNew >= 0) {
				return
			}
			t := distOld / (distOld - distNew)
			if !d.OnSurface(r3.Add(pt.Pos, r3.Scale(t*a.LookAhead, pt.Vel))) {
				return
			}
			// Push back toward the side the particle is on
			side := 1.0
			if distOld < 0 {
				side = -1
			}
			push := a.Magnitude * dt / (distOld*distOld + a.Epsilon)
			pt.Vel = r3.Add(pt.Vel, r3.Scale(side*push, n))
		})
	case domain.Sphere:
		return p.EachWithDT(func(_ int, pt *components.Particle, dt float64) {
			dist := d.Distance(pt.Pos)
			if dist < 0 {
				return
			}
			v2 := r3.Norm2(pt.Vel)
			if v2 == 0 {
				return
			}
			// Closest approach of the velocity ray to the centre
			toCenter := r3.Sub(d.Center, pt.Pos)
			tc := r3.Dot(toCenter, pt.Vel) / v2
			if tc < 0 || tc > a.LookAhead {
				return
			}
			closest := r3.Add(pt.Pos, r3.Scale(tc, pt.Vel))
			off := r3.Sub(closest, d.Center)
			if r3.Norm(off) >= d.ROut {
				return
			}
			if r3.Norm2(off) == 0 {
				// Head-on: sidestep along any direction perpendicular to motion
				off = r3.Cross(pt.Vel, r3.Vec{Z: 1})
				if r3.Norm2(off) == 0 {
					off = r3.Cross(pt.Vel, r3.Vec{X: 1})
				}
			}
			push := a.Magnitude * dt / (dist*dist + a.Epsilon)
			pt.Vel = r3.Add(pt.Vel, r3.Scale(push, r3.Unit(off)))
		})
	default:
		return ErrUnsupportedDomain
	}
}
