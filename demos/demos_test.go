package demos

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/action"
	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/domain"
	"github.com/pthm-cable/spray/engine"
	"github.com/pthm-cable/spray/shadow"
	"github.com/pthm-cable/spray/store"
)

const budget = 20000

func newPlayer(t *testing.T) *Player {
	t.Helper()
	return NewPlayer(engine.New(engine.Options{Budget: budget, Seed: 3}))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	ids := r.IDs()
	want := []string{"fountain", "waterfall", "explosion", "flock", "photo", "atom", "rain"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d demos, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("demo %d: expected %q, got %q", i, want[i], ids[i])
		}
	}

	if _, ok := r.Get("nope"); ok {
		t.Error("unknown demo resolved")
	}
	if got := r.Next("rain"); got != "fountain" {
		t.Errorf("expected wrap to fountain, got %q", got)
	}
	if got := len(r.ByCategory("fluid")); got != 3 {
		t.Errorf("expected 3 fluid demos, got %d", got)
	}

	r.Register(Demo{ID: "fountain", Name: "Replaced"})
	if d, _ := r.Get("fountain"); d.Name != "Replaced" {
		t.Error("register did not replace")
	}
	if len(r.All()) != len(want) {
		t.Error("replacing a demo changed the count")
	}
}

func TestEveryDemoRunsInBothModes(t *testing.T) {
	for _, d := range NewRegistry().All() {
		for _, mode := range []Mode{ModeImmediate, ModeList} {
			t.Run(d.ID+"/"+mode.String(), func(t *testing.T) {
				p := newPlayer(t)
				p.SetMode(mode)
				if err := p.Start(d, 1000); err != nil {
					t.Fatal(err)
				}
				g, err := p.ctx.Store().Group(p.Group())
				if err != nil {
					t.Fatal(err)
				}
				for frame := 0; frame < 30; frame++ {
					if err := p.Frame(2); err != nil {
						t.Fatalf("frame %d: %v", frame, err)
					}
					if g.LiveCount() > g.Capacity() {
						t.Fatalf("frame %d: %d live exceeds capacity %d", frame, g.LiveCount(), g.Capacity())
					}
				}
				if g.LiveCount() == 0 {
					t.Error("demo produced no particles")
				}
				for _, pt := range g.Particles() {
					if math.IsNaN(pt.Pos.X) || math.IsNaN(pt.Pos.Y) || math.IsNaN(pt.Pos.Z) {
						t.Fatal("NaN position")
					}
				}
			})
		}
	}
}

func TestModesAgree(t *testing.T) {
	run := func(mode Mode) []r3.Vec {
		p := newPlayer(t)
		p.SetMode(mode)
		if err := p.Start(Fountain(), 0); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 20; i++ {
			if err := p.Frame(3); err != nil {
				t.Fatal(err)
			}
		}
		g, _ := p.ctx.Store().Group(p.Group())
		var out []r3.Vec
		for _, pt := range g.Particles() {
			out = append(out, pt.Pos)
		}
		return out
	}

	a, b := run(ModeImmediate), run(ModeList)
	if len(a) != len(b) {
		t.Fatalf("immediate and list runs differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("particle %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestListRebuiltOnToggleChange(t *testing.T) {
	p := newPlayer(t)
	p.SetMode(ModeList)
	if err := p.Start(Fountain(), 0); err != nil {
		t.Fatal(err)
	}
	if err := p.Frame(1); err != nil {
		t.Fatal(err)
	}
	full := p.ListLen()

	tg := p.Toggles()
	tg.Gravity = false
	tg.Bounce = false
	p.SetToggles(tg)
	if err := p.Frame(1); err != nil {
		t.Fatal(err)
	}
	// Gravity is one action, bounce two.
	if got := p.ListLen(); got != full-3 {
		t.Errorf("expected list of %d after disabling, got %d", full-3, got)
	}
}

func TestPhotoMeltSeedsOnePerPixel(t *testing.T) {
	im := Gradient(8, 4)
	p := newPlayer(t)
	if err := p.Start(PhotoMelt(im), 0); err != nil {
		t.Fatal(err)
	}
	g, _ := p.ctx.Store().Group(p.Group())
	ps := g.Particles()
	if len(ps) != 32 {
		t.Fatalf("expected 32 particles, got %d", len(ps))
	}
	// Top-left pixel is spawned first, at the top of the picture.
	if ps[0].Color != im.At(0, 0) {
		t.Errorf("expected first particle colored %+v, got %+v", im.At(0, 0), ps[0].Color)
	}
	if ps[0].Pos.Z <= ps[len(ps)-1].Pos.Z {
		t.Errorf("expected first row above last row, got z %v and %v", ps[0].Pos.Z, ps[len(ps)-1].Pos.Z)
	}
	if ps[0].PosB != ps[0].Pos {
		t.Error("checkpoint not saved")
	}
}

func TestPhotoMeltReassembles(t *testing.T) {
	p := newPlayer(t)
	if err := p.Start(PhotoMelt(Gradient(4, 4)), 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 30; i++ {
		p.Frame(1)
	}
	tg := p.Toggles()
	tg.Gravity = false
	p.SetToggles(tg)
	for i := 0; i < 400; i++ {
		p.Frame(1)
	}

	g, _ := p.ctx.Store().Group(p.Group())
	for i, pt := range g.Particles() {
		if d := r3.Norm(r3.Sub(pt.Pos, pt.PosB)); d > 0.01 {
			t.Errorf("particle %d still %v from home", i, d)
		}
	}
}

func TestPhotoMeltRejectsShortImage(t *testing.T) {
	p := newPlayer(t)
	err := p.Start(PhotoMelt(Image{W: 2, H: 2, RGB: make([]float64, 5)}), 0)
	if err == nil {
		t.Error("expected error for truncated image")
	}
}

func TestExplosionReturnsHome(t *testing.T) {
	p := newPlayer(t)
	if err := p.Start(Explosion(), 0); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < ExplosionPeriod; i++ {
		if err := p.Frame(1); err != nil {
			t.Fatal(err)
		}
	}
	g, _ := p.ctx.Store().Group(p.Group())
	for i, pt := range g.Particles() {
		if d := r3.Norm(r3.Sub(pt.Pos, pt.PosB)); d > 1e-6 {
			t.Fatalf("particle %d ended %v from home", i, d)
		}
	}
}

func TestStartReleasesPreviousDemo(t *testing.T) {
	p := newPlayer(t)
	if err := p.Start(Rain(), 0); err != nil {
		t.Fatal(err)
	}
	old := p.Group()
	if err := p.Start(Flock(), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := p.ctx.Store().Group(old); !errors.Is(err, store.ErrInvalidHandle) {
		t.Errorf("expected old group freed, got %v", err)
	}
	if got := p.ctx.Store().Allocated(); got != Flock().Capacity {
		t.Errorf("expected only flock allocated, got %d", got)
	}
	if n := len(p.ctx.Lists()); n != 1 {
		t.Errorf("expected one list, got %d", n)
	}
}

func TestFrameWithoutDemo(t *testing.T) {
	p := newPlayer(t)
	if err := p.Frame(1); !errors.Is(err, errNotStarted) {
		t.Errorf("expected errNotStarted, got %v", err)
	}
}

func TestGradient(t *testing.T) {
	im := Gradient(16, 8)
	if len(im.RGB) != 3*16*8 {
		t.Fatalf("expected %d channels, got %d", 3*16*8, len(im.RGB))
	}
	for i, v := range im.RGB {
		if v < 0 || v > 1 {
			t.Fatalf("channel %d out of range: %v", i, v)
		}
	}
	// Top row is brighter than the bottom row.
	top, bottom := im.At(3, 0), im.At(3, 7)
	if top.R+top.G+top.B <= bottom.R+bottom.G+bottom.B {
		t.Errorf("expected top %+v brighter than bottom %+v", top, bottom)
	}
}

func TestSpawnPolicyAppliesToSetup(t *testing.T) {
	seed := Demo{
		ID:       "seed",
		Capacity: 4,
		Setup: func(ctx *engine.Context) error {
			src := action.Source{Rate: 4, Position: domain.NewPoint(r3.Vec{}), Template: action.DefaultTemplate()}
			if err := ctx.Do(src); err != nil {
				return err
			}
			err := ctx.Do(action.Callback{Fn: func(_ *shadow.View, pt *components.Particle) { pt.Tag = 1 }})
			if err != nil {
				return err
			}
			src.Rate = 2
			return ctx.Do(src)
		},
		Body: func(ctx *engine.Context, _ State) error { return ctx.Do(action.Move{}) },
	}

	tests := []struct {
		policy  store.SpawnPolicy
		seeded1 int // particles from the first spawn still live
	}{
		{store.SpawnTruncate, 4},
		{store.SpawnEvictOldest, 2},
	}
	for _, tc := range tests {
		t.Run(tc.policy.String(), func(t *testing.T) {
			p := newPlayer(t)
			p.SetSpawnPolicy(tc.policy)
			if err := p.Start(seed, 0); err != nil {
				t.Fatal(err)
			}
			g, err := p.ctx.Store().Group(p.Group())
			if err != nil {
				t.Fatal(err)
			}
			if g.Policy() != tc.policy {
				t.Errorf("expected policy %v, got %v", tc.policy, g.Policy())
			}
			first := 0
			for _, pt := range g.Particles() {
				if pt.Tag == 1 {
					first++
				}
			}
			if first != tc.seeded1 || g.LiveCount() != 4 {
				t.Errorf("expected %d of 4 from the first spawn, got %d of %d", tc.seeded1, first, g.LiveCount())
			}
		})
	}
}
