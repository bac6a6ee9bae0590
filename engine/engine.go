// Package engine runs actions against particle groups.
//
// A Context is the whole simulation: the particle store, the current group,
// recorded action lists and the shadow state published to actions. Actions
// reach it three ways. Inside a recording bracket Do appends to the list
// being recorded. Inside Run or Replay it executes against the running pass.
// Anywhere else it runs a standalone single-action pass.
//
// A Context is not safe for concurrent use. Every call is expected to come
// from the goroutine driving the frame loop.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/action"
	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/shadow"
	"github.com/pthm-cable/spray/store"
)

var (
	// ErrReentrancy is returned when a pass is started from inside a pass,
	// an action is issued from inside an action loop, or the running pass's
	// group is restructured through the store.
	ErrReentrancy = store.ErrReentrancy
	// ErrRecording is returned for operations that conflict with the
	// recording bracket.
	ErrRecording = errors.New("recording conflict")
)

// PhaseCompact is the timer phase covering end-of-pass compaction.
const PhaseCompact = "compact"

// maxCallDepth bounds nested CallList expansion.
const maxCallDepth = 32

// PhaseTimer receives a phase name before each action runs.
// telemetry.PerfCollector satisfies it.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Options configures a Context.
type Options struct {
	Budget   int     // sum of all group capacities
	Seed     int64   // random source seed
	TimeStep float64 // 0 means 1
	Logger   *slog.Logger
	Timer    PhaseTimer
}

// Context is an explicit simulation context.
type Context struct {
	store   *store.Store
	current store.GroupHandle

	world  *ecs.World
	lists  *ecs.Map1[actionList]
	filter *ecs.Filter1[actionList]

	pub   shadow.Publisher
	pass  *action.Pass
	group *store.Group
	depth int

	recording ListHandle
	template  action.Template

	rng   *rand.Rand
	dt    float64
	log   *slog.Logger
	timer PhaseTimer
}

// New creates a context with an empty store.
func New(opts Options) *Context {
	dt := opts.TimeStep
	if dt <= 0 {
		dt = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	world := ecs.NewWorld()
	return &Context{
		store:    store.New(opts.Budget),
		world:    world,
		lists:    ecs.NewMap1[actionList](world),
		filter:   ecs.NewFilter1[actionList](world),
		template: action.DefaultTemplate(),
		rng:      rand.New(rand.NewSource(opts.Seed)),
		dt:       dt,
		log:      logger,
		timer:    opts.Timer,
	}
}

// Store exposes the particle store.
func (c *Context) Store() *store.Store { return c.store }

// Rand returns the simulation's random source.
func (c *Context) Rand() *rand.Rand { return c.rng }

// SetTimer installs or clears the phase timer.
func (c *Context) SetTimer(t PhaseTimer) { c.timer = t }

// CreateGroup allocates a group. The first group created becomes current.
func (c *Context) CreateGroup(name string, capacity int) (store.GroupHandle, error) {
	h, err := c.store.CreateGroup(name, capacity)
	if err != nil {
		return store.GroupHandle{}, err
	}
	if c.current.IsZero() {
		c.current = h
	}
	c.log.Debug("group_created", "group", h.ID(), "name", name, "capacity", capacity)
	return h, nil
}

// DeleteGroup frees a group. Deleting the current group leaves no group
// current.
func (c *Context) DeleteGroup(h store.GroupHandle) error {
	if c.pub.InPass() {
		return fmt.Errorf("delete group %d: %w", h.ID(), ErrReentrancy)
	}
	if err := c.store.DeleteGroup(h); err != nil {
		return err
	}
	if h == c.current {
		c.current = store.GroupHandle{}
	}
	c.log.Debug("group_deleted", "group", h.ID())
	return nil
}

// SetCurrentGroup selects the group that passes run against.
func (c *Context) SetCurrentGroup(h store.GroupHandle) error {
	if c.pub.InPass() {
		return fmt.Errorf("set current group %d: %w", h.ID(), ErrReentrancy)
	}
	if _, err := c.store.Group(h); err != nil {
		return err
	}
	c.current = h
	return nil
}

// CurrentGroup returns the current group handle.
func (c *Context) CurrentGroup() store.GroupHandle { return c.current }

// SetTimeStep sets the dt used by subsequent passes.
func (c *Context) SetTimeStep(dt float64) {
	if dt > 0 {
		c.dt = dt
	}
}

// TimeStep returns the dt of subsequent passes.
func (c *Context) TimeStep() float64 { return c.dt }

// SetTemplate sets the sticky template used by Vertex.
func (c *Context) SetTemplate(t action.Template) { c.template = t }

// Template returns the sticky template.
func (c *Context) Template() action.Template { return c.template }

// Vertex issues a Vertex action built from the sticky template.
func (c *Context) Vertex(pos r3.Vec, color components.Color) error {
	return c.Do(action.Vertex{Pos: pos, Color: color, Template: c.template})
}

// AdvanceSteps splits one frame into n steps of dt = 1/n and calls step for
// each. The previous dt is restored afterwards.
func (c *Context) AdvanceSteps(n int, step func() error) error {
	if n < 1 {
		n = 1
	}
	prev := c.dt
	c.dt = 1 / float64(n)
	defer func() { c.dt = prev }()

	for i := 0; i < n; i++ {
		if err := step(); err != nil {
			return fmt.Errorf("step %d of %d: %w", i+1, n, err)
		}
	}
	return nil
}

// Passes returns the number of passes run so far.
func (c *Context) Passes() uint64 { return c.pub.Passes() }

// InPass reports whether a pass is running.
func (c *Context) InPass() bool { return c.pub.InPass() }

// Recording reports whether a recording bracket is open.
func (c *Context) Recording() bool { return c.pub.Recording() }

// Run executes body as one immediate-mode pass over the current group.
// Actions body issues through Do run in order against the pass.
func (c *Context) Run(body func(*Context) error) error {
	if err := c.canStartPass("run"); err != nil {
		return err
	}
	if err := c.beginPass(); err != nil {
		return err
	}
	defer c.endPass()
	return body(c)
}

// Do issues actions. See the package comment for where they go.
func (c *Context) Do(acts ...action.Action) error {
	if c.pub.InLoop() {
		return fmt.Errorf("action issued inside an action loop: %w", ErrReentrancy)
	}
	for _, a := range acts {
		if err := action.Validate(a); err != nil {
			return err
		}
	}

	switch {
	case c.pub.Recording():
		return c.record(acts)
	case c.pub.InPass():
		return c.execAll(acts)
	default:
		if err := c.beginPass(); err != nil {
			return err
		}
		defer c.endPass()
		return c.execAll(acts)
	}
}

func (c *Context) canStartPass(op string) error {
	if c.pub.InPass() {
		return fmt.Errorf("%s: pass already running: %w", op, ErrReentrancy)
	}
	if c.pub.Recording() {
		return fmt.Errorf("%s: list %d is recording: %w", op, c.recording.ID(), ErrRecording)
	}
	return nil
}

// beginPass ages the current group and publishes a fresh view.
func (c *Context) beginPass() error {
	g, err := c.store.Group(c.current)
	if err != nil {
		return fmt.Errorf("begin pass: %w", err)
	}
	g.ForEachLive(func(_ int, p *components.Particle) {
		p.Age++
	})
	g.BeginPass()
	view := c.pub.Begin(c.dt, 0, g.Len())
	c.group = g
	c.pass = action.NewPass(view, g, c.rng, c.pub.SetLoop)
	return nil
}

func (c *Context) execAll(acts []action.Action) error {
	for _, a := range acts {
		if err := c.exec(a); err != nil {
			return err
		}
	}
	return nil
}

// exec runs one action and republishes the bounds so particles it spawned
// are visited by the actions after it.
func (c *Context) exec(a action.Action) error {
	if c.timer != nil {
		c.timer.StartPhase(a.Kind().String())
	}
	if err := a.Apply(c.pass); err != nil {
		return fmt.Errorf("%s: %w", a.Kind(), err)
	}
	c.pub.SetBounds(0, c.group.Len())
	return nil
}

// endPass compacts the group and expires the view.
func (c *Context) endPass() {
	if c.timer != nil {
		c.timer.StartPhase(PhaseCompact)
	}
	c.group.EndPass()
	c.pub.End()
	c.pass = nil
	c.group = nil
	c.depth = 0
}

// ReadBack copies live particles of the current group into dst.
func (c *Context) ReadBack(start, maxCount int, dst *store.Buffers) (int, error) {
	g, err := c.store.Group(c.current)
	if err != nil {
		return 0, err
	}
	return g.ReadBack(start, maxCount, dst), nil
}

// LiveCount returns the number of live particles in the current group.
func (c *Context) LiveCount() (int, error) {
	g, err := c.store.Group(c.current)
	if err != nil {
		return 0, err
	}
	return g.LiveCount(), nil
}
