package action

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
)

// neighbor is a frozen copy of one particle's kinematics, taken before an
// all-pairs action starts so results do not depend on visiting order.
type neighbor struct {
	index int
	pos   r3.Vec
	vel   r3.Vec
}

func (p *Pass) snapshot() ([]neighbor, error) {
	begin, end, err := p.View.Bounds()
	if err != nil {
		return nil, err
	}
	out := make([]neighbor, 0, end-begin)
	p.Group.ForRange(begin, end, func(i int, pt *components.Particle) {
		out = append(out, neighbor{index: i, pos: pt.Pos, vel: pt.Vel})
	})
	return out, nil
}

// Gravitate attracts every particle toward every other particle.
type Gravitate struct {
	Magnitude float64
	Epsilon   float64
	MaxRadius float64
}

func (Gravitate) Kind() Kind { return KindGravitate }

func (a Gravitate) Apply(p *Pass) error {
	others, err := p.snapshot()
	if err != nil {
		return err
	}
	return p.EachWithDT(func(i int, pt *components.Particle, dt float64) {
		for _, o := range others {
			if o.index == i {
				continue
			}
			if acc, ok := inverseSquare(r3.Sub(o.pos, pt.Pos), a.Magnitude*dt, a.Epsilon, a.MaxRadius); ok {
				pt.Vel = r3.Add(pt.Vel, acc)
			}
		}
	})
}

// Follow accelerates each particle toward the next live particle in the
// group, forming chains.
type Follow struct {
	Magnitude float64
	Epsilon   float64
	MaxRadius float64
}

func (Follow) Kind() Kind { return KindFollow }

func (a Follow) Apply(p *Pass) error {
	chain, err := p.snapshot()
	if err != nil {
		return err
	}
	next := make(map[int]r3.Vec, len(chain))
	for k := 0; k+1 < len(chain); k++ {
		next[chain[k].index] = chain[k+1].pos
	}
	return p.EachWithDT(func(i int, pt *components.Particle, dt float64) {
		target, ok := next[i]
		if !ok {
			return
		}
		if acc, ok := inverseSquare(r3.Sub(target, pt.Pos), a.Magnitude*dt, a.Epsilon, a.MaxRadius); ok {
			pt.Vel = r3.Add(pt.Vel, acc)
		}
	})
}

// MatchVelocity nudges each particle's velocity toward its neighbors',
// weighted by inverse squared distance.
type MatchVelocity struct {
	Magnitude float64
	Epsilon   float64
	MaxRadius float64
}

func (MatchVelocity) Kind() Kind { return KindMatchVelocity }

func (a MatchVelocity) Apply(p *Pass) error {
	others, err := p.snapshot()
	if err != nil {
		return err
	}
	maxSq := a.MaxRadius * a.MaxRadius
	return p.EachWithDT(func(i int, pt *components.Particle, dt float64) {
		for _, o := range others {
			if o.index == i {
				continue
			}
			r2 := r3.Norm2(r3.Sub(o.pos, pt.Pos))
			if (a.MaxRadius > 0 && r2 > maxSq) || r2+a.Epsilon == 0 {
				continue
			}
			pt.Vel = r3.Add(pt.Vel, r3.Scale(a.Magnitude*dt/(r2+a.Epsilon), r3.Sub(o.vel, pt.Vel)))
		}
	})
}
