// Package config provides configuration loading and access for the engine
// and its frame driver.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/spray/store"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Engine    EngineConfig    `yaml:"engine"`
	Demos     DemosConfig     `yaml:"demos"`
	Camera    CameraConfig    `yaml:"camera"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// EngineConfig holds particle engine parameters.
type EngineConfig struct {
	ParticleBudget int    `yaml:"particle_budget"` // Sum of all group capacities
	GroupCapacity  int    `yaml:"group_capacity"`  // Capacity for demos that don't set one
	StepsPerFrame  int    `yaml:"steps_per_frame"` // Passes per displayed frame (dt = 1/n)
	SpawnPolicy    string `yaml:"spawn_policy"`    // "truncate" or "evict_oldest"
}

// DemosConfig holds frame driver defaults.
type DemosConfig struct {
	Initial  string `yaml:"initial"`   // Demo ID started first
	ListMode bool   `yaml:"list_mode"` // Start in recorded-list mode
	Gravity  bool   `yaml:"gravity"`
	Damping  bool   `yaml:"damping"`
	Bounce   bool   `yaml:"bounce"`
	Avoid    bool   `yaml:"avoid"`
	Swirl    bool   `yaml:"swirl"`
}

// CameraConfig holds the orbit camera path.
type CameraConfig struct {
	FOV       float64 `yaml:"fov"`        // Vertical field of view, degrees
	OrbitRate float64 `yaml:"orbit_rate"` // Radians per frame around the target
	BobAmount float64 `yaml:"bob_amount"` // Height swing as a fraction of camera height
	BobRate   float64 `yaml:"bob_rate"`   // Radians per frame of the height swing
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"`          // Frames per frame-stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"` // Frames averaged by the perf collector
	SampleLimit         int `yaml:"sample_limit"`          // Max particles read back for stats
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	StepDT      float64           // 1 / Engine.StepsPerFrame
	SpawnPolicy store.SpawnPolicy // Parsed Engine.SpawnPolicy
	ScreenW32   float32           // Screen.Width as float32
	ScreenH32   float32           // Screen.Height as float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	if c.Engine.StepsPerFrame < 1 {
		c.Engine.StepsPerFrame = 1
	}
	c.Derived.StepDT = 1 / float64(c.Engine.StepsPerFrame)

	policy, ok := store.ParseSpawnPolicy(c.Engine.SpawnPolicy)
	if !ok {
		return fmt.Errorf("engine.spawn_policy: unknown policy %q", c.Engine.SpawnPolicy)
	}
	c.Derived.SpawnPolicy = policy

	if c.Engine.GroupCapacity > c.Engine.ParticleBudget {
		return fmt.Errorf("engine.group_capacity %d exceeds particle_budget %d",
			c.Engine.GroupCapacity, c.Engine.ParticleBudget)
	}

	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
