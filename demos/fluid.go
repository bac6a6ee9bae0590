package demos

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/action"
	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/domain"
	"github.com/pthm-cable/spray/engine"
)

// Units throughout are world units and frames: rates are particles per
// frame, velocities units per frame, accelerations units per frame².

var (
	up     = r3.Vec{Z: 1}
	ground = domain.NewPlane(r3.Vec{}, up)
)

// below kills particles that fall under z.
func below(z float64) action.Sink {
	return action.Sink{KillInside: true, Domain: domain.NewPlane(r3.Vec{Z: z}, up)}
}

// FountainParams are the tunable knobs of the fountain.
type FountainParams struct {
	Rate       float64 // particles per frame
	JetSpeed   float64 // nozzle exit speed
	Spread     float64 // radius of the exit velocity disc
	Gravity    float64 // downward acceleration
	Damping    float64 // per-frame velocity retention
	Resilience float64 // basin bounce
}

// DefaultFountainParams returns the fountain as shipped.
func DefaultFountainParams() FountainParams {
	return FountainParams{Rate: 60, JetSpeed: 0.35, Spread: 0.07, Gravity: 0.01, Damping: 0.99, Resilience: 0.4}
}

// Fountain sprays water up from a nozzle into a round basin.
func Fountain() Demo {
	return FountainWith(DefaultFountainParams())
}

// FountainWith builds the fountain with the given parameters.
func FountainWith(p FountainParams) Demo {
	nozzle := domain.NewDisc(r3.Vec{Z: 0.1}, up, 0.1, 0)
	basin := domain.NewDisc(r3.Vec{}, up, 4, 0)
	statue := domain.NewSphere(r3.Vec{X: 1.5, Z: 2.5}, 0.6, 0)
	spray := action.Template{
		Velocity: domain.NewDisc(r3.Vec{Z: p.JetSpeed}, up, p.Spread, 0),
		Color:    domain.NewLine(r3.Vec{X: 0.8, Y: 0.9, Z: 1}, r3.Vec{X: 0.2, Y: 0.4, Z: 1}),
		Alpha:    1,
		Size:     domain.NewPoint(r3.Vec{X: 1, Y: 1, Z: 1}),
	}

	return Demo{
		ID:             "fountain",
		Name:           "Fountain",
		Description:    "Water jet falling back into a basin",
		Category:       "fluid",
		Capacity:       8000,
		CameraDistance: 14,
		CameraHeight:   5,
		Body: func(ctx *engine.Context, s State) error {
			acts := []action.Action{
				action.Source{Rate: p.Rate, Position: nozzle, Template: spray},
			}
			if s.Toggles.Gravity {
				acts = append(acts, action.Gravity{Dir: r3.Vec{Z: -p.Gravity}})
			}
			if s.Toggles.Damping {
				acts = append(acts, action.Damping{Damping: r3.Vec{X: p.Damping, Y: p.Damping, Z: p.Damping}})
			}
			if s.Toggles.Swirl {
				acts = append(acts, action.Vortex{Axis: up, Magnitude: 0.002, Epsilon: 0.1, MaxRadius: 3})
			}
			if s.Toggles.Avoid {
				acts = append(acts, action.Avoid{Magnitude: 0.05, Epsilon: 0.1, LookAhead: 10, Domain: statue})
			}
			if s.Toggles.Bounce {
				acts = append(acts,
					action.Bounce{Friction: 0.1, Resilience: p.Resilience, CutoffSq: 1e-4, Domain: basin},
					action.Bounce{Friction: 0.1, Resilience: 0.6, Domain: statue},
				)
			}
			acts = append(acts,
				action.TargetSize{Size: r3.Vec{X: 2, Y: 2, Z: 2}, Scale: r3.Vec{X: 0.01, Y: 0.01, Z: 0.01}},
				below(-2),
				action.KillOld{AgeLimit: 300},
				action.Move{},
			)
			return ctx.Do(acts...)
		},
	}
}

// Waterfall pours a sheet of water down three ledges into a pool.
func Waterfall() Demo {
	lip := domain.NewLine(r3.Vec{X: -1, Y: -3, Z: 6}, r3.Vec{X: 1, Y: -3, Z: 6})
	ledges := []domain.Domain{
		domain.NewRectangle(r3.Vec{X: -2, Y: -3, Z: 4}, r3.Vec{X: 4}, r3.Vec{Y: 2}),
		domain.NewRectangle(r3.Vec{X: -2, Y: -1, Z: 2}, r3.Vec{X: 4}, r3.Vec{Y: 2}),
		domain.NewRectangle(r3.Vec{X: -2, Y: 1, Z: 0}, r3.Vec{X: 4}, r3.Vec{Y: 4}),
	}
	rock := domain.NewSphere(r3.Vec{Y: -0.2, Z: 2.6}, 0.4, 0)
	outflow := domain.NewBox(r3.Vec{X: -2, Y: 3, Z: -0.5}, r3.Vec{X: 2, Y: 5, Z: 1})
	world := domain.NewBox(r3.Vec{X: -6, Y: -6, Z: -1}, r3.Vec{X: 6, Y: 8, Z: 8})
	water := action.Template{
		Velocity: domain.NewBlob(r3.Vec{Y: 0.06}, 0.004),
		Color:    domain.NewBox(r3.Vec{X: 0.5, Y: 0.7, Z: 0.9}, r3.Vec{X: 0.7, Y: 0.9, Z: 1}),
		Alpha:    0.9,
	}

	return Demo{
		ID:             "waterfall",
		Name:           "Waterfall",
		Description:    "Water spilling over stepped ledges",
		Category:       "fluid",
		Capacity:       10000,
		CameraDistance: 16,
		CameraHeight:   6,
		Body: func(ctx *engine.Context, s State) error {
			acts := []action.Action{
				action.Source{Rate: 50, Position: lip, Template: water},
			}
			if s.Toggles.Gravity {
				acts = append(acts, action.Gravity{Dir: r3.Vec{Z: -0.01}})
			}
			if s.Toggles.Damping {
				acts = append(acts, action.Damping{Damping: r3.Vec{X: 0.98, Y: 0.98, Z: 1}, VLow: 0.02})
			}
			if s.Toggles.Swirl {
				acts = append(acts, action.OrbitLine{
					Point: r3.Vec{Z: 3}, Axis: r3.Vec{X: 1}, Magnitude: 0.001, Epsilon: 0.5, MaxRadius: 3,
				})
			}
			if s.Toggles.Avoid {
				acts = append(acts, action.Avoid{Magnitude: 0.02, Epsilon: 0.1, LookAhead: 8, Domain: rock})
			}
			if s.Toggles.Bounce {
				for _, l := range ledges {
					acts = append(acts, action.Bounce{Friction: 0.05, Resilience: 0.3, CutoffSq: 1e-4, Domain: l})
				}
				acts = append(acts, action.Bounce{Friction: 0.1, Resilience: 0.5, Domain: rock})
			}
			acts = append(acts,
				action.Jet{Domain: outflow, Accel: domain.NewPoint(r3.Vec{Y: 0.003})},
				action.TargetVelocity{Vel: r3.Vec{Y: 0.05}, Scale: 0.002},
				action.Sink{KillInside: false, Domain: world},
				action.KillOld{AgeLimit: 600},
				action.Move{},
			)
			return ctx.Do(acts...)
		},
	}
}

// Rain drops water from a cloud onto the ground and an umbrella.
func Rain() Demo {
	cloud := domain.NewRectangle(r3.Vec{X: -5, Y: -5, Z: 10}, r3.Vec{X: 10}, r3.Vec{Y: 10})
	umbrella := domain.NewDisc(r3.Vec{Z: 3}, up, 2, 0)
	drop := action.Template{
		Velocity: domain.NewBlob(r3.Vec{Z: -0.15}, 0.01),
		Color:    domain.NewPoint(r3.Vec{X: 0.6, Y: 0.7, Z: 0.9}),
		Alpha:    0.8,
		Size:     domain.NewPoint(r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}),
	}
	puddle := components.Color{R: 0.3, G: 0.4, B: 0.6}
	gusts := action.NewTurbulence(0.003, 0.2, 11)

	return Demo{
		ID:             "rain",
		Name:           "Rain",
		Description:    "Drops falling on an umbrella and splashing on the ground",
		Category:       "fluid",
		Capacity:       12000,
		CameraDistance: 18,
		CameraHeight:   4,
		Body: func(ctx *engine.Context, s State) error {
			acts := []action.Action{
				action.Source{Rate: 40, Position: cloud, Template: drop},
				action.RandomDisplace{Domain: domain.NewBlob(r3.Vec{}, 0.002)},
			}
			if s.Toggles.Gravity {
				acts = append(acts, action.Gravity{Dir: r3.Vec{Z: -0.005}})
			}
			if s.Toggles.Swirl {
				// Gusts
				acts = append(acts, gusts)
			}
			if s.Toggles.Damping {
				acts = append(acts, action.Damping{Damping: r3.Vec{X: 0.95, Y: 0.95, Z: 0.99}})
			}
			if s.Toggles.Avoid {
				acts = append(acts, action.Avoid{Magnitude: 0.01, Epsilon: 0.5, LookAhead: 15, Domain: umbrella})
			}
			if s.Toggles.Bounce {
				acts = append(acts,
					action.Bounce{Friction: 0.2, Resilience: 0.3, Domain: umbrella},
					action.Bounce{Friction: 0.5, Resilience: 0.2, CutoffSq: 1e-4, Domain: ground},
				)
			}
			acts = append(acts,
				action.SinkVelocity{KillInside: true, Domain: domain.NewSphere(r3.Vec{}, 0.005, 0)},
				action.TargetColor{Color: puddle, Scale: 0.02},
				below(-1),
				action.KillOld{AgeLimit: 400},
				action.Move{},
			)
			return ctx.Do(acts...)
		},
	}
}
