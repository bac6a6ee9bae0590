package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/spray/store"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.ParticleBudget <= 0 {
		t.Errorf("expected positive particle budget, got %d", cfg.Engine.ParticleBudget)
	}
	if cfg.Derived.StepDT != 1/float64(cfg.Engine.StepsPerFrame) {
		t.Errorf("StepDT %v does not match steps_per_frame %d", cfg.Derived.StepDT, cfg.Engine.StepsPerFrame)
	}
	if cfg.Derived.SpawnPolicy != store.SpawnTruncate {
		t.Errorf("expected truncate by default, got %v", cfg.Derived.SpawnPolicy)
	}
	if cfg.Demos.Initial == "" {
		t.Error("expected an initial demo")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("engine:\n  steps_per_frame: 4\n  spawn_policy: evict_oldest\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Derived.StepDT != 0.25 {
		t.Errorf("expected StepDT 0.25, got %v", cfg.Derived.StepDT)
	}
	if cfg.Derived.SpawnPolicy != store.SpawnEvictOldest {
		t.Errorf("expected evict_oldest, got %v", cfg.Derived.SpawnPolicy)
	}
	// Untouched sections keep their defaults.
	if cfg.Screen.Width == 0 {
		t.Error("override cleared screen defaults")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown policy", "engine:\n  spawn_policy: random\n"},
		{"group over budget", "engine:\n  particle_budget: 10\n  group_capacity: 11\n"},
		{"malformed", "engine: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Engine.StepsPerFrame = 3

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Engine.StepsPerFrame != 3 {
		t.Errorf("expected steps_per_frame 3, got %d", back.Engine.StepsPerFrame)
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
