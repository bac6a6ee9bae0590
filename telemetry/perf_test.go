package telemetry

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/action"
	"github.com/pthm-cable/spray/engine"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseReadBack)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseRender)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseReadBack]; !ok {
		t.Error("expected readback phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseRender]; !ok {
		t.Error("expected render phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseStats)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.PhasePct["slow"] <= stats.PhasePct["fast"] {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", stats.PhasePct["slow"], stats.PhasePct["fast"])
	}
	if phases := stats.Phases(); phases[0] != "slow" {
		t.Errorf("expected slow first, got %v", phases)
	}
	rows := stats.PhaseRows(7)
	if len(rows) != 2 || rows[0].Phase != "slow" || rows[0].WindowEnd != 7 {
		t.Errorf("unexpected phase rows %+v", rows)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
	if row := stats.ToCSV(0); row.TopPhase != "" {
		t.Errorf("expected no top phase, got %q", row.TopPhase)
	}
}

func TestPerfCollector_PhaseOutsideTickIgnored(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.StartPhase(PhaseRender)
	pc.EndTick()

	if stats := pc.Stats(); len(stats.PhaseAvg) != 0 {
		t.Errorf("expected no samples, got %v", stats.PhaseAvg)
	}
}

func TestPerfCollector_TimesEnginePasses(t *testing.T) {
	ctx := engine.New(engine.Options{Budget: 100, Seed: 1})
	if _, err := ctx.CreateGroup("g", 100); err != nil {
		t.Fatal(err)
	}
	pc := NewPerfCollector(10)
	ctx.SetTimer(pc)

	pc.StartTick()
	if err := ctx.Do(action.Gravity{Dir: r3.Vec{Z: -0.01}}, action.Move{}); err != nil {
		t.Fatal(err)
	}
	pc.StartPhase(PhaseRender)
	pc.EndTick()

	stats := pc.Stats()
	for _, phase := range []string{"gravity", "move", engine.PhaseCompact, PhaseRender} {
		if _, ok := stats.PhaseAvg[phase]; !ok {
			t.Errorf("expected phase %q, got %v", phase, stats.PhaseAvg)
		}
	}

	row := stats.ToCSV(1)
	want := stats.PhasePct["gravity"] + stats.PhasePct["move"] + stats.PhasePct[engine.PhaseCompact]
	if math.Abs(row.EnginePct-want) > 1e-9 {
		t.Errorf("expected engine pct %v, got %v", want, row.EnginePct)
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 80 {
		t.Errorf("expected FPS in (0, 80] with 16ms frame time, got %v", stats.FPS)
	}
}
