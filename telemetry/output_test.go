package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/spray/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v %v", om, err)
	}
	// Methods are safe on a nil manager.
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	for i := int64(1); i <= 3; i++ {
		if err := om.WriteStats(WindowStats{WindowEndFrame: i * 60, Demo: "fountain", Live: int(i)}); err != nil {
			t.Fatal(err)
		}
	}
	perf := PerfStats{
		AvgTickDuration: time.Millisecond,
		PhaseAvg:        map[string]time.Duration{"move": 500 * time.Microsecond},
		PhasePct:        map[string]float64{"move": 50},
	}
	if err := om.WritePerf(perf, 60); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSaturated, Frame: 60, Demo: "fountain"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := ReadStats(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows with a single header, got %d", len(rows))
	}
	if rows[2].WindowEndFrame != 180 || rows[2].Live != 3 || rows[2].Demo != "fountain" {
		t.Errorf("unexpected last row %+v", rows[2])
	}

	perfCSV, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perfCSV), "engine_pct") {
		t.Error("perf.csv missing header")
	}
	phases, err := os.ReadFile(filepath.Join(dir, "phases.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(phases), "move") {
		t.Error("phases.csv missing move row")
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Error("config.yaml not written")
	}
}
