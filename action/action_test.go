package action

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/domain"
	"github.com/pthm-cable/spray/shadow"
	"github.com/pthm-cable/spray/store"
)

// harness runs actions against one group the way the interpreter does.
type harness struct {
	pub   shadow.Publisher
	group *store.Group
	rng   *rand.Rand
	dt    float64
}

func newHarness(t *testing.T, capacity int, dt float64) *harness {
	t.Helper()
	s := store.New(capacity)
	h, err := s.CreateGroup("test", capacity)
	if err != nil {
		t.Fatal(err)
	}
	g, err := s.Group(h)
	if err != nil {
		t.Fatal(err)
	}
	return &harness{group: g, rng: rand.New(rand.NewSource(1)), dt: dt}
}

func (h *harness) run(t *testing.T, acts ...Action) {
	t.Helper()
	h.group.BeginPass()
	view := h.pub.Begin(h.dt, 0, h.group.Len())
	p := NewPass(view, h.group, h.rng, h.pub.SetLoop)
	for _, a := range acts {
		if err := Validate(a); err != nil {
			t.Fatalf("validate %s: %v", a.Kind(), err)
		}
		if err := a.Apply(p); err != nil {
			t.Fatalf("apply %s: %v", a.Kind(), err)
		}
		h.pub.SetBounds(0, h.group.Len())
	}
	h.group.EndPass()
	h.pub.End()
}

func (h *harness) add(pos, vel r3.Vec) {
	h.group.Spawn(1, func(p *components.Particle) {
		p.Pos, p.Vel = pos, vel
	})
}

func near(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestMoveIsExplicitEuler(t *testing.T) {
	h := newHarness(t, 4, 0.1)
	h.add(r3.Vec{}, r3.Vec{X: 1})

	h.run(t, Move{})

	got := h.group.At(0).Pos
	if !near(got, r3.Vec{X: 0.1}, 1e-12) {
		t.Errorf("expected pos (0.1,0,0), got %v", got)
	}
}

func TestBounceOffPlane(t *testing.T) {
	h := newHarness(t, 4, 0.1)
	h.add(r3.Vec{Z: 0.05}, r3.Vec{Z: -1})

	floor := domain.NewPlane(r3.Vec{}, r3.Vec{Z: 1})
	h.run(t, Bounce{Friction: 0, Resilience: 1, Domain: floor}, Move{})

	pt := h.group.At(0)
	if !near(pt.Vel, r3.Vec{Z: 1}, 1e-9) {
		t.Errorf("expected vel (0,0,1), got %v", pt.Vel)
	}
	if pt.Pos.Z < 0 {
		t.Errorf("particle tunnelled through plane: z=%v", pt.Pos.Z)
	}
}

func TestBounceFriction(t *testing.T) {
	tests := []struct {
		name     string
		friction float64
		cutoffSq float64
		wantVX   float64
	}{
		{"no friction", 0, 0, 2},
		{"half friction", 0.5, 0, 1},
		{"below cutoff", 0.5, 9, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 1, 0.1)
			h.add(r3.Vec{Z: 0.05}, r3.Vec{X: 2, Z: -1})
			floor := domain.NewPlane(r3.Vec{}, r3.Vec{Z: 1})
			h.run(t, Bounce{Friction: tc.friction, Resilience: 0.5, CutoffSq: tc.cutoffSq, Domain: floor})

			v := h.group.At(0).Vel
			if math.Abs(v.X-tc.wantVX) > 1e-9 {
				t.Errorf("expected vx %v, got %v", tc.wantVX, v.X)
			}
			if math.Abs(v.Z-0.5) > 1e-9 {
				t.Errorf("expected vz 0.5, got %v", v.Z)
			}
		})
	}
}

func TestBounceMissesOutsideFootprint(t *testing.T) {
	h := newHarness(t, 1, 0.1)
	h.add(r3.Vec{X: 5, Z: 0.05}, r3.Vec{Z: -1})

	pad := domain.NewRectangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	h.run(t, Bounce{Resilience: 1, Domain: pad})

	if v := h.group.At(0).Vel; !near(v, r3.Vec{Z: -1}, 1e-12) {
		t.Errorf("expected velocity unchanged, got %v", v)
	}
}

func TestBounceSphere(t *testing.T) {
	h := newHarness(t, 1, 0.1)
	h.add(r3.Vec{X: 1.05}, r3.Vec{X: -1})

	ball := domain.NewSphere(r3.Vec{}, 1, 0)
	h.run(t, Bounce{Resilience: 1, Domain: ball})

	if v := h.group.At(0).Vel; !near(v, r3.Vec{X: 1}, 1e-9) {
		t.Errorf("expected vel (1,0,0), got %v", v)
	}
}

func TestSourceRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		dt   float64
		want int
	}{
		{"whole", 50, 1, 50},
		{"scaled by dt", 100, 0.25, 25},
		{"zero", 0, 1, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 1000, tc.dt)
			h.run(t, Source{Rate: tc.rate, Position: domain.NewPoint(r3.Vec{}), Template: DefaultTemplate()})
			if n := h.group.LiveCount(); n != tc.want {
				t.Errorf("expected %d particles, got %d", tc.want, n)
			}
		})
	}
}

func TestSourceFractionalRateAverages(t *testing.T) {
	h := newHarness(t, 10000, 1)
	src := Source{Rate: 0.3, Position: domain.NewPoint(r3.Vec{}), Template: DefaultTemplate()}
	const passes = 2000
	for i := 0; i < passes; i++ {
		h.run(t, src)
	}
	got := float64(h.group.LiveCount()) / passes
	if math.Abs(got-0.3) > 0.05 {
		t.Errorf("expected ~0.3 particles per pass, got %v", got)
	}
}

func TestSourceTemplate(t *testing.T) {
	h := newHarness(t, 10, 1)
	tmpl := Template{
		Velocity:    domain.NewPoint(r3.Vec{Y: 3}),
		Color:       domain.NewPoint(r3.Vec{X: 1, Y: 0.5}),
		Alpha:       0.25,
		Size:        domain.NewPoint(r3.Vec{X: 2, Y: 2, Z: 2}),
		StartingAge: 4,
	}
	h.run(t, Source{Rate: 1, Position: domain.NewPoint(r3.Vec{Z: 7}), Template: tmpl})

	pt := h.group.At(0)
	if !near(pt.Pos, r3.Vec{Z: 7}, 0) || !near(pt.PosB, pt.Pos, 0) {
		t.Errorf("unexpected position %v / %v", pt.Pos, pt.PosB)
	}
	if !near(pt.Vel, r3.Vec{Y: 3}, 0) {
		t.Errorf("unexpected velocity %v", pt.Vel)
	}
	if pt.Color != (components.Color{R: 1, G: 0.5, A: 0.25}) {
		t.Errorf("unexpected color %+v", pt.Color)
	}
	if pt.Age != 4 || pt.Mass != 1 {
		t.Errorf("unexpected age %v mass %v", pt.Age, pt.Mass)
	}
}

func TestKillOld(t *testing.T) {
	tests := []struct {
		name      string
		lessThan  bool
		wantAlive []float64
	}{
		{"older", false, []float64{0, 1, 2}},
		{"younger", true, []float64{2, 3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 4, 1)
			for age := 0; age < 4; age++ {
				h.group.Spawn(1, func(p *components.Particle) { p.Age = float64(age) })
			}
			h.run(t, KillOld{AgeLimit: 2, KillLessThan: tc.lessThan})

			ps := h.group.Particles()
			if len(ps) != len(tc.wantAlive) {
				t.Fatalf("expected %d survivors, got %d", len(tc.wantAlive), len(ps))
			}
			for i, p := range ps {
				if p.Age != tc.wantAlive[i] {
					t.Errorf("survivor %d: expected age %v, got %v", i, tc.wantAlive[i], p.Age)
				}
			}
		})
	}
}

func TestSink(t *testing.T) {
	box := domain.NewBox(r3.Vec{X: -1, Y: -1, Z: -1}, r3.Vec{X: 1, Y: 1, Z: 1})
	tests := []struct {
		name   string
		inside bool
		want   r3.Vec
	}{
		{"kill inside", true, r3.Vec{X: 5}},
		{"kill outside", false, r3.Vec{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 2, 1)
			h.add(r3.Vec{}, r3.Vec{})
			h.add(r3.Vec{X: 5}, r3.Vec{})
			h.run(t, Sink{KillInside: tc.inside, Domain: box})

			ps := h.group.Particles()
			if len(ps) != 1 || !near(ps[0].Pos, tc.want, 0) {
				t.Errorf("expected single survivor at %v, got %+v", tc.want, ps)
			}
		})
	}
}

func TestDamping(t *testing.T) {
	h := newHarness(t, 2, 0.5)
	h.add(r3.Vec{}, r3.Vec{X: 10})
	h.add(r3.Vec{}, r3.Vec{X: 0.1})

	h.run(t, Damping{Damping: r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, VLow: 1})

	// 1 - (1-0.5)*0.5 = 0.75
	if v := h.group.At(0).Vel.X; math.Abs(v-7.5) > 1e-12 {
		t.Errorf("expected damped vx 7.5, got %v", v)
	}
	if v := h.group.At(1).Vel.X; v != 0.1 {
		t.Errorf("slow particle should be untouched, got %v", v)
	}
}

func TestSpeedLimit(t *testing.T) {
	h := newHarness(t, 3, 1)
	h.add(r3.Vec{}, r3.Vec{X: 10})
	h.add(r3.Vec{}, r3.Vec{Y: 0.1})
	h.add(r3.Vec{}, r3.Vec{Z: 2})

	h.run(t, SpeedLimit{Min: 1, Max: 3})

	want := []float64{3, 1, 2}
	for i, w := range want {
		if s := r3.Norm(h.group.At(i).Vel); math.Abs(s-w) > 1e-12 {
			t.Errorf("particle %d: expected speed %v, got %v", i, w, s)
		}
	}
}

func TestGravity(t *testing.T) {
	h := newHarness(t, 1, 0.5)
	h.add(r3.Vec{}, r3.Vec{})
	h.run(t, Gravity{Dir: r3.Vec{Z: -10}})
	if v := h.group.At(0).Vel; !near(v, r3.Vec{Z: -5}, 1e-12) {
		t.Errorf("expected vel (0,0,-5), got %v", v)
	}
}

func TestOrbitPointPullsInward(t *testing.T) {
	h := newHarness(t, 1, 0.1)
	h.add(r3.Vec{X: 2}, r3.Vec{})
	h.run(t, OrbitPoint{Magnitude: 1, Epsilon: 0.1})
	if v := h.group.At(0).Vel; v.X >= 0 || v.Y != 0 || v.Z != 0 {
		t.Errorf("expected pull toward origin along -x, got %v", v)
	}
}

func TestVortexIsTangential(t *testing.T) {
	h := newHarness(t, 1, 0.1)
	h.add(r3.Vec{X: 1}, r3.Vec{})
	h.run(t, Vortex{Axis: r3.Vec{Z: 1}, Magnitude: 1})
	v := h.group.At(0).Vel
	if v.Y <= 0 || math.Abs(v.X) > 1e-12 {
		t.Errorf("expected +y swirl, got %v", v)
	}
}

func TestRestore(t *testing.T) {
	h := newHarness(t, 1, 0.5)
	h.add(r3.Vec{}, r3.Vec{})
	h.group.At(0).PosB = r3.Vec{X: 4}

	h.run(t, Restore{TimeLeft: 2}, Move{})
	if p := h.group.At(0).Pos; !near(p, r3.Vec{X: 1}, 1e-12) {
		t.Errorf("expected one quarter of the way back, got %v", p)
	}

	h.run(t, Restore{})
	pt := h.group.At(0)
	if !near(pt.Pos, r3.Vec{X: 4}, 0) || !near(pt.Vel, r3.Vec{}, 0) {
		t.Errorf("expected snap to checkpoint, got pos %v vel %v", pt.Pos, pt.Vel)
	}
}

func TestTargetColor(t *testing.T) {
	h := newHarness(t, 1, 0.5)
	h.group.Spawn(1, func(p *components.Particle) { p.Color = components.Color{A: 1} })
	h.run(t, TargetColor{Color: components.Color{R: 1, A: 1}, Scale: 1})
	if c := h.group.At(0).Color; math.Abs(c.R-0.5) > 1e-12 || c.A != 1 {
		t.Errorf("expected half-way to red, got %+v", c)
	}
}

func TestCallbackSeesLoopFlag(t *testing.T) {
	h := newHarness(t, 3, 1)
	for i := 0; i < 3; i++ {
		h.add(r3.Vec{}, r3.Vec{})
	}
	calls := 0
	h.run(t, Callback{Fn: func(v *shadow.View, p *components.Particle) {
		calls++
		if in, err := v.InLoop(); err != nil || !in {
			t.Errorf("expected loop flag inside callback, got %v %v", in, err)
		}
		p.Tag = 7
	}})
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if h.pub.InLoop() {
		t.Error("loop flag left set after pass")
	}
	for _, p := range h.group.Particles() {
		if p.Tag != 7 {
			t.Errorf("expected tag 7, got %d", p.Tag)
		}
	}
}

func TestGravitateIsSymmetric(t *testing.T) {
	h := newHarness(t, 2, 0.1)
	h.add(r3.Vec{X: -1}, r3.Vec{})
	h.add(r3.Vec{X: 1}, r3.Vec{})
	h.run(t, Gravitate{Magnitude: 1, Epsilon: 0.1})

	a, b := h.group.At(0).Vel, h.group.At(1).Vel
	if a.X <= 0 || b.X >= 0 || math.Abs(a.X+b.X) > 1e-12 {
		t.Errorf("expected equal and opposite attraction, got %v %v", a, b)
	}
}

func TestMatchVelocity(t *testing.T) {
	h := newHarness(t, 2, 0.1)
	h.add(r3.Vec{}, r3.Vec{X: 1})
	h.add(r3.Vec{X: 1}, r3.Vec{X: -1})
	h.run(t, MatchVelocity{Magnitude: 1, Epsilon: 1})

	a, b := h.group.At(0).Vel, h.group.At(1).Vel
	if a.X >= 1 || b.X <= -1 {
		t.Errorf("expected velocities to converge, got %v %v", a, b)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		act  Action
		want error
	}{
		{"nil action", nil, ErrInvalidAction},
		{"source without position", Source{Rate: 1}, ErrInvalidAction},
		{"bounce on box", Bounce{Domain: domain.NewBox(r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1})}, ErrUnsupportedDomain},
		{"avoid on cone", Avoid{Domain: domain.NewCone(r3.Vec{}, r3.Vec{Z: 1}, 1, 0)}, ErrUnsupportedDomain},
		{"bounce without domain", Bounce{}, ErrInvalidAction},
		{"vortex zero axis", Vortex{Magnitude: 1}, ErrInvalidAction},
		{"explosion zero width", Explosion{}, ErrInvalidAction},
		{"callback without fn", Callback{}, ErrInvalidAction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := Validate(tc.act); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if err := Validate(Bounce{Domain: domain.NewSphere(r3.Vec{}, 1, 0)}); err != nil {
		t.Errorf("sphere bounce should validate, got %v", err)
	}
}

func TestStaleViewFailsActions(t *testing.T) {
	h := newHarness(t, 1, 0.1)
	h.add(r3.Vec{}, r3.Vec{X: 1})
	view := h.pub.Begin(h.dt, 0, h.group.Len())
	p := NewPass(view, h.group, h.rng, h.pub.SetLoop)
	h.pub.End()

	if err := (Move{}).Apply(p); !errors.Is(err, shadow.ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
}

func TestKindNames(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		if name == "" || name == "unknown" {
			t.Errorf("kind %d has no name", k)
		}
		if seen[name] {
			t.Errorf("duplicate kind name %q", name)
		}
		seen[name] = true
	}
}

func TestTurbulence(t *testing.T) {
	if err := Validate(Turbulence{Magnitude: 1, Frequency: 1}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction for unbuilt field, got %v", err)
	}

	turb := NewTurbulence(0.5, 0.7, 3)
	a, b := r3.Vec{X: 0.3, Y: 1.1, Z: 2.2}, r3.Vec{X: 4.9, Y: -2.3, Z: 0.4}
	if got := turb.Sample(a); got != NewTurbulence(0.5, 0.7, 3).Sample(a) {
		t.Error("same seed gave a different field")
	}
	if turb.Sample(a) == turb.Sample(b) {
		t.Error("field is constant")
	}

	h := newHarness(t, 4, 0.5)
	h.add(a, r3.Vec{})
	h.add(a, r3.Vec{})
	h.run(t, turb)
	ps := h.group.Particles()
	want := r3.Scale(0.5, turb.Sample(a))
	for i, pt := range ps {
		if r3.Norm(r3.Sub(pt.Vel, want)) > 1e-12 {
			t.Errorf("particle %d: expected velocity %v, got %v", i, want, pt.Vel)
		}
	}
}
