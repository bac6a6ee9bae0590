// Package action defines the closed set of per-pass particle operations.
//
// An action is a plain value whose parameters are fixed when it is built.
// The only values an action re-reads at execution time are the ones the
// interpreter publishes through the pass's shadow view: the timestep and the
// iteration bounds of the current group.
package action

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/shadow"
	"github.com/pthm-cable/spray/store"
)

// ErrUnsupportedDomain is returned when an action is given a domain kind it
// cannot work against.
var ErrUnsupportedDomain = errors.New("unsupported domain")

// ErrInvalidAction is returned for actions with missing parameters.
var ErrInvalidAction = errors.New("invalid action")

// Kind identifies an action.
type Kind uint8

const (
	KindAvoid Kind = iota
	KindBounce
	KindCallback
	KindCallList
	KindCopyVertexB
	KindDamping
	KindExplosion
	KindFollow
	KindGravitate
	KindGravity
	KindJet
	KindKillOld
	KindMatchVelocity
	KindMove
	KindOrbitLine
	KindOrbitPoint
	KindRandomAccel
	KindRandomDisplace
	KindRandomVelocity
	KindRestore
	KindSink
	KindSinkVelocity
	KindSource
	KindSpeedLimit
	KindTargetColor
	KindTargetSize
	KindTargetVelocity
	KindTurbulence
	KindVertex
	KindVortex

	numKinds
)

var kindNames = [numKinds]string{
	KindAvoid:          "avoid",
	KindBounce:         "bounce",
	KindCallback:       "callback",
	KindCallList:       "call_list",
	KindCopyVertexB:    "copy_vertex_b",
	KindDamping:        "damping",
	KindExplosion:      "explosion",
	KindFollow:         "follow",
	KindGravitate:      "gravitate",
	KindGravity:        "gravity",
	KindJet:            "jet",
	KindKillOld:        "kill_old",
	KindMatchVelocity:  "match_velocity",
	KindMove:           "move",
	KindOrbitLine:      "orbit_line",
	KindOrbitPoint:     "orbit_point",
	KindRandomAccel:    "random_accel",
	KindRandomDisplace: "random_displace",
	KindRandomVelocity: "random_velocity",
	KindRestore:        "restore",
	KindSink:           "sink",
	KindSinkVelocity:   "sink_velocity",
	KindSource:         "source",
	KindSpeedLimit:     "speed_limit",
	KindTargetColor:    "target_color",
	KindTargetSize:     "target_size",
	KindTargetVelocity: "target_velocity",
	KindTurbulence:     "turbulence",
	KindVertex:         "vertex",
	KindVortex:         "vortex",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds returns every action kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Action is one step of simulation logic applied to the current group.
type Action interface {
	Kind() Kind
	// Apply runs the action against every live particle of the pass.
	Apply(p *Pass) error
}

// validator is implemented by actions that check their parameters before
// being recorded or run.
type validator interface {
	validate() error
}

// Validate checks an action's parameters.
func Validate(a Action) error {
	if a == nil {
		return fmt.Errorf("nil action: %w", ErrInvalidAction)
	}
	if v, ok := a.(validator); ok {
		if err := v.validate(); err != nil {
			return fmt.Errorf("%s: %w", a.Kind(), err)
		}
	}
	return nil
}

// Pass is what an action sees while it runs: the shadow view of the pass,
// the current group and the simulation's random source.
type Pass struct {
	View  *shadow.View
	Group *store.Group
	Rng   *rand.Rand

	setLoop func(bool)
}

// NewPass binds a pass for action execution. setLoop is called around every
// per-particle loop so the interpreter can publish the loop flag.
func NewPass(view *shadow.View, group *store.Group, rng *rand.Rand, setLoop func(bool)) *Pass {
	return &Pass{View: view, Group: group, Rng: rng, setLoop: setLoop}
}

// TimeStep returns the pass timestep.
func (p *Pass) TimeStep() (float64, error) {
	return p.View.TimeStep()
}

// Each runs fn on every live particle inside the published bounds.
func (p *Pass) Each(fn func(i int, pt *components.Particle)) error {
	begin, end, err := p.View.Bounds()
	if err != nil {
		return err
	}
	p.loop(true)
	defer p.loop(false)
	p.Group.ForRange(begin, end, fn)
	return nil
}

// EachWithDT is Each with the pass timestep passed through.
func (p *Pass) EachWithDT(fn func(i int, pt *components.Particle, dt float64)) error {
	dt, err := p.View.TimeStep()
	if err != nil {
		return err
	}
	return p.Each(func(i int, pt *components.Particle) {
		fn(i, pt, dt)
	})
}

func (p *Pass) loop(in bool) {
	if p.setLoop != nil {
		p.setLoop(in)
	}
}
