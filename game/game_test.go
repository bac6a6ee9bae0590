package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/spray/config"
	"github.com/pthm-cable/spray/demos"
	"github.com/pthm-cable/spray/telemetry"
)

func init() {
	config.MustInit("")
}

func newHeadless(t *testing.T, opts Options) *Game {
	t.Helper()
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestHeadlessFlushesWindows(t *testing.T) {
	dir := t.TempDir()
	g := newHeadless(t, Options{Seed: 1, Demo: "fountain", OutputDir: dir})

	var windows []telemetry.WindowStats
	g.SetStatsCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })

	window := config.Cfg().Telemetry.StatsWindow
	for i := 0; i < 2*window; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}

	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	last := windows[1]
	if last.Demo != "fountain" || last.Live == 0 || last.Sampled == 0 {
		t.Errorf("unexpected window %+v", last)
	}
	if last.WindowEndFrame != int64(2*window) {
		t.Errorf("expected window end %d, got %d", 2*window, last.WindowEndFrame)
	}
	for _, name := range []string{"stats.csv", "perf.csv", "phases.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestStepsPerFrameOption(t *testing.T) {
	g := newHeadless(t, Options{Seed: 1, Demo: "flock", StepsPerFrame: 3})
	before := g.Context().Passes()
	if err := g.UpdateHeadless(); err != nil {
		t.Fatal(err)
	}
	if got := g.Context().Passes() - before; got != 3 {
		t.Errorf("expected 3 passes per frame, got %d", got)
	}
}

func TestListModeOption(t *testing.T) {
	g := newHeadless(t, Options{Seed: 1, Demo: "fountain", ListMode: true})
	if g.Player().Mode() != demos.ModeList {
		t.Fatal("expected list mode")
	}
	if err := g.UpdateHeadless(); err != nil {
		t.Fatal(err)
	}
	if g.Player().ListLen() == 0 {
		t.Error("expected a recorded list")
	}
}

func TestStartDemo(t *testing.T) {
	g := newHeadless(t, Options{Seed: 1})
	if got := g.Player().Demo().ID; got != config.Cfg().Demos.Initial {
		t.Errorf("expected initial demo %q, got %q", config.Cfg().Demos.Initial, got)
	}
	if err := g.StartDemo("nope"); err == nil {
		t.Error("expected error for unknown demo")
	}

	first := g.Player().Demo().ID
	if err := g.NextDemo(); err != nil {
		t.Fatal(err)
	}
	if g.Player().Demo().ID == first {
		t.Error("NextDemo did not change demo")
	}
	grp, err := g.Context().Store().Group(g.Player().Group())
	if err != nil {
		t.Fatal(err)
	}
	if grp.Policy() != config.Cfg().Derived.SpawnPolicy {
		t.Errorf("spawn policy %v not applied", grp.Policy())
	}
}
