package demos

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/spray/engine"
	"github.com/pthm-cable/spray/store"
)

var errNotStarted = errors.New("no demo running")

// Mode selects how a Player feeds a demo body to the engine.
type Mode uint8

const (
	// ModeImmediate re-runs the body inside a pass every step.
	ModeImmediate Mode = iota
	// ModeList records the body once and replays the list every step.
	ModeList
)

func (m Mode) String() string {
	if m == ModeList {
		return "list"
	}
	return "immediate"
}

// Player runs one demo at a time against a context. It owns the demo's
// group and recorded list and re-records the list whenever what the body
// would issue may have changed.
type Player struct {
	ctx   *engine.Context
	demo  Demo
	group store.GroupHandle
	list  engine.ListHandle

	mode    Mode
	policy  store.SpawnPolicy
	toggles Toggles
	time    float64
	stale   bool
}

// NewPlayer creates a player with default toggles in immediate mode.
func NewPlayer(ctx *engine.Context) *Player {
	return &Player{ctx: ctx, toggles: DefaultToggles()}
}

// Start tears down the running demo, if any, and sets up d in a fresh group
// of capacity d.Capacity (or capacity when d leaves it zero).
func (p *Player) Start(d Demo, capacity int) error {
	if err := p.Stop(); err != nil {
		return err
	}
	if d.Capacity > 0 {
		capacity = d.Capacity
	}
	h, err := p.ctx.CreateGroup(d.ID, capacity)
	if err != nil {
		return fmt.Errorf("start %s: %w", d.ID, err)
	}
	g, err := p.ctx.Store().Group(h)
	if err != nil {
		return err
	}
	g.SetPolicy(p.policy)
	if err := p.ctx.SetCurrentGroup(h); err != nil {
		return err
	}
	p.demo = d
	p.group = h
	p.list = p.ctx.NewList()
	p.time = 0
	p.stale = true

	if d.Setup != nil {
		if err := d.Setup(p.ctx); err != nil {
			return fmt.Errorf("setup %s: %w", d.ID, err)
		}
	}
	return nil
}

// Stop frees the running demo's group and list.
func (p *Player) Stop() error {
	if !p.list.IsZero() {
		if err := p.ctx.DeleteList(p.list); err != nil {
			return err
		}
		p.list = engine.ListHandle{}
	}
	if !p.group.IsZero() {
		if err := p.ctx.DeleteGroup(p.group); err != nil {
			return err
		}
		p.group = store.GroupHandle{}
	}
	p.demo = Demo{}
	return nil
}

// Demo returns the running demo.
func (p *Player) Demo() Demo { return p.demo }

// Group returns the running demo's group.
func (p *Player) Group() store.GroupHandle { return p.group }

// Time returns frames elapsed since the demo started.
func (p *Player) Time() float64 { return p.time }

// Mode returns the execution mode.
func (p *Player) Mode() Mode { return p.mode }

// SetMode switches between immediate and list execution.
func (p *Player) SetMode(m Mode) {
	if m != p.mode {
		p.mode = m
		p.stale = true
	}
}

// SpawnPolicy returns the policy given to groups created by Start.
func (p *Player) SpawnPolicy() store.SpawnPolicy { return p.policy }

// SetSpawnPolicy sets the policy for groups created by later Starts. It is in
// force before the demo's Setup spawns anything.
func (p *Player) SetSpawnPolicy(policy store.SpawnPolicy) { p.policy = policy }

// Toggles returns the current feature switches.
func (p *Player) Toggles() Toggles { return p.toggles }

// SetToggles replaces the feature switches. A recorded list is rebuilt on
// the next step when they differ.
func (p *Player) SetToggles(t Toggles) {
	if t != p.toggles {
		p.toggles = t
		p.stale = true
	}
}

// ListLen returns the length of the recorded list, or 0 in immediate mode.
func (p *Player) ListLen() int {
	if p.mode != ModeList || p.list.IsZero() {
		return 0
	}
	n, err := p.ctx.ListLen(p.list)
	if err != nil {
		return 0
	}
	return n
}

// Frame advances one displayed frame as steps engine passes.
func (p *Player) Frame(steps int) error {
	if p.demo.Body == nil {
		return errNotStarted
	}
	if err := p.ctx.SetCurrentGroup(p.group); err != nil {
		return err
	}
	return p.ctx.AdvanceSteps(steps, p.step)
}

func (p *Player) step() error {
	s := State{Toggles: p.toggles, Time: p.time}
	p.time += p.ctx.TimeStep()

	if p.mode == ModeImmediate {
		return p.ctx.Run(func(ctx *engine.Context) error {
			return p.demo.Body(ctx, s)
		})
	}

	if p.stale || p.demo.Dynamic {
		if err := p.record(s); err != nil {
			return err
		}
	}
	return p.ctx.Replay(p.list)
}

func (p *Player) record(s State) error {
	if err := p.ctx.BeginRecording(p.list); err != nil {
		return err
	}
	bodyErr := p.demo.Body(p.ctx, s)
	if err := p.ctx.EndRecording(); err != nil {
		return err
	}
	if bodyErr != nil {
		return fmt.Errorf("record %s: %w", p.demo.ID, bodyErr)
	}
	p.stale = false
	return nil
}
