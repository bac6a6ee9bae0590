package demos

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/action"
	"github.com/pthm-cable/spray/domain"
	"github.com/pthm-cable/spray/engine"
)

// seed spawns n particles in one pass.
func seed(ctx *engine.Context, n int, pos domain.Domain, tmpl action.Template) error {
	prev := ctx.TimeStep()
	ctx.SetTimeStep(1)
	defer ctx.SetTimeStep(prev)
	return ctx.Do(action.Source{Rate: float64(n), Position: pos, Template: tmpl})
}

// ExplosionPeriod is the length in frames of one blast-and-reassemble cycle.
const ExplosionPeriod = 240

// Explosion blows a shell of particles apart with a shock wave, then pulls
// them back to where they started.
func Explosion() Demo {
	center := r3.Vec{Z: 3}
	const count = 3000
	const blast = 150.0

	return Demo{
		ID:             "explosion",
		Name:           "Explosion",
		Description:    "Shock wave through a shell, then reassembly",
		Category:       "field",
		Capacity:       count,
		Dynamic:        true,
		CameraDistance: 18,
		CameraHeight:   4,
		Setup: func(ctx *engine.Context) error {
			err := seed(ctx, count, domain.NewSphere(center, 1, 0.9), action.Template{
				Color: domain.NewLine(r3.Vec{X: 1, Y: 0.4, Z: 0.1}, r3.Vec{X: 1, Y: 0.9, Z: 0.3}),
				Alpha: 1,
			})
			if err != nil {
				return err
			}
			return ctx.Do(action.CopyVertexB{CopyPos: true, CopyVel: true})
		},
		Body: func(ctx *engine.Context, s State) error {
			phase := math.Mod(s.Time, ExplosionPeriod)
			if phase >= blast {
				return ctx.Do(
					action.Restore{TimeLeft: ExplosionPeriod - phase},
					action.Move{},
				)
			}

			acts := []action.Action{
				action.Explosion{
					Center: center, Velocity: 0.1, Magnitude: 0.5, StdDev: 0.5, Epsilon: 0.1, Age: phase,
				},
			}
			if s.Toggles.Gravity {
				acts = append(acts, action.Gravity{Dir: r3.Vec{Z: -0.002}})
			}
			if s.Toggles.Swirl {
				acts = append(acts, action.Vortex{Center: center, Axis: up, Magnitude: 0.01, Epsilon: 0.5})
			}
			if s.Toggles.Damping {
				acts = append(acts, action.Damping{Damping: r3.Vec{X: 0.98, Y: 0.98, Z: 0.98}, VLow: 0.01})
			}
			if s.Toggles.Bounce {
				acts = append(acts, action.Bounce{Friction: 0.3, Resilience: 0.5, CutoffSq: 1e-4, Domain: ground})
			}
			acts = append(acts, action.Move{})
			return ctx.Do(acts...)
		},
	}
}

// Flock steers a swarm of boids around a goal while they align with their
// neighbours and avoid an obstacle.
func Flock() Demo {
	goal := r3.Vec{Z: 3}
	obstacle := domain.NewSphere(goal, 0.6, 0)

	return Demo{
		ID:             "flock",
		Name:           "Flock",
		Description:    "Boids aligning, cohering and avoiding",
		Category:       "field",
		Capacity:       400,
		CameraDistance: 10,
		CameraHeight:   4,
		Setup: func(ctx *engine.Context) error {
			return seed(ctx, 300, domain.NewBox(r3.Vec{X: -2, Y: -2, Z: 2}, r3.Vec{X: 2, Y: 2, Z: 4}), action.Template{
				Velocity: domain.NewBlob(r3.Vec{X: 0.02}, 0.01),
				Color:    domain.NewBox(r3.Vec{X: 0.2, Y: 0.2, Z: 0.2}, r3.Vec{X: 1, Y: 1, Z: 1}),
				Alpha:    1,
			})
		},
		Body: func(ctx *engine.Context, s State) error {
			acts := []action.Action{
				action.MatchVelocity{Magnitude: 0.0005, Epsilon: 0.1, MaxRadius: 1},
				action.Gravitate{Magnitude: 0.00005, Epsilon: 0.4, MaxRadius: 1},
				action.OrbitPoint{Center: goal, Magnitude: 0.0005, Epsilon: 0.2},
			}
			if s.Toggles.Swirl {
				acts = append(acts, action.Follow{Magnitude: 0.0005, Epsilon: 0.2, MaxRadius: 2})
			}
			if s.Toggles.Gravity {
				acts = append(acts, action.Gravity{Dir: r3.Vec{Z: -0.0005}})
			}
			if s.Toggles.Damping {
				acts = append(acts, action.Damping{Damping: r3.Vec{X: 0.999, Y: 0.999, Z: 0.99}})
			}
			if s.Toggles.Avoid {
				acts = append(acts,
					action.Avoid{Magnitude: 0.02, Epsilon: 0.1, LookAhead: 20, Domain: obstacle},
					action.Avoid{Magnitude: 0.01, Epsilon: 0.1, LookAhead: 20, Domain: ground},
				)
			}
			if s.Toggles.Bounce {
				acts = append(acts, action.Bounce{Resilience: 0.8, Domain: ground})
			}
			acts = append(acts,
				action.SpeedLimit{Min: 0.02, Max: 0.06},
				action.Move{},
			)
			return ctx.Do(acts...)
		},
	}
}

// Atom orbits a cloud of electrons around a nucleus.
func Atom() Demo {
	nucleus := r3.Vec{Z: 3}
	core := domain.NewSphere(nucleus, 0.3, 0)

	return Demo{
		ID:             "atom",
		Name:           "Atom",
		Description:    "Particles in orbit around a central point",
		Category:       "field",
		Capacity:       600,
		CameraDistance: 9,
		CameraHeight:   3,
		Setup: func(ctx *engine.Context) error {
			return seed(ctx, 500, domain.NewSphere(nucleus, 2, 1.5), action.Template{
				Velocity: domain.NewSphere(r3.Vec{}, 0.05, 0.04),
				Color:    domain.NewBox(r3.Vec{X: 0.3, Y: 0.3, Z: 0.9}, r3.Vec{X: 0.6, Y: 0.8, Z: 1}),
				Alpha:    1,
			})
		},
		Body: func(ctx *engine.Context, s State) error {
			acts := []action.Action{
				action.OrbitPoint{Center: nucleus, Magnitude: 0.005, Epsilon: 0.2},
			}
			if s.Toggles.Swirl {
				acts = append(acts, action.OrbitLine{Point: nucleus, Axis: up, Magnitude: 0.002, Epsilon: 0.2})
			}
			if s.Toggles.Damping {
				acts = append(acts, action.Damping{Damping: r3.Vec{X: 0.999, Y: 0.999, Z: 0.999}})
			}
			if s.Toggles.Avoid {
				acts = append(acts, action.Avoid{Magnitude: 0.01, Epsilon: 0.05, LookAhead: 5, Domain: core})
			}
			if s.Toggles.Bounce {
				acts = append(acts, action.Bounce{Resilience: 1, Domain: core})
			}
			acts = append(acts,
				action.TargetSize{Size: r3.Vec{X: 1.5, Y: 1.5, Z: 1.5}, Scale: r3.Vec{X: 0.01, Y: 0.01, Z: 0.01}},
				action.SpeedLimit{Max: 0.2},
				action.Move{},
			)
			return ctx.Do(acts...)
		},
	}
}
