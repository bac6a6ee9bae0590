// Package game drives demos frame by frame, with or without a window.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/spray/camera"
	"github.com/pthm-cable/spray/config"
	"github.com/pthm-cable/spray/demos"
	"github.com/pthm-cable/spray/engine"
	"github.com/pthm-cable/spray/store"
	"github.com/pthm-cable/spray/telemetry"
	"github.com/pthm-cable/spray/ui"
)

// Options configures a Game beyond what config.Cfg() provides.
type Options struct {
	Seed          int64
	Demo          string // empty = config demos.initial
	StepsPerFrame int    // 0 = config engine.steps_per_frame
	ListMode      bool
	LogStats      bool
	OutputDir     string
	Headless      bool
}

// Game holds the frame driver state.
type Game struct {
	cfg      *config.Config
	ctx      *engine.Context
	registry *demos.Registry
	player   *demos.Player

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)

	// Rendering (unused when headless)
	headless  bool
	camera    *camera.Camera
	buf       store.Buffers
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	perfPanel *ui.PerfPanel

	frame         int64
	paused        bool
	stepsPerFrame int
	screenWidth   float32
	screenHeight  float32
}

// NewGameWithOptions creates a game running the configured initial demo.
// config.Init must have been called.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)
	ctx := engine.New(engine.Options{
		Budget:   cfg.Engine.ParticleBudget,
		Seed:     opts.Seed,
		TimeStep: cfg.Derived.StepDT,
		Logger:   slog.Default(),
		Timer:    perf,
	})

	g := &Game{
		cfg:              cfg,
		ctx:              ctx,
		registry:         demos.NewRegistry(),
		player:           demos.NewPlayer(ctx),
		perfCollector:    perf,
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		headless:         opts.Headless,
		stepsPerFrame:    cfg.Engine.StepsPerFrame,
		screenWidth:      cfg.Derived.ScreenW32,
		screenHeight:     cfg.Derived.ScreenH32,
	}
	if opts.StepsPerFrame > 0 {
		g.stepsPerFrame = opts.StepsPerFrame
	}

	g.player.SetToggles(demos.Toggles{
		Gravity: cfg.Demos.Gravity,
		Damping: cfg.Demos.Damping,
		Bounce:  cfg.Demos.Bounce,
		Avoid:   cfg.Demos.Avoid,
		Swirl:   cfg.Demos.Swirl,
	})
	if opts.ListMode || cfg.Demos.ListMode {
		g.player.SetMode(demos.ModeList)
	}
	g.player.SetSpawnPolicy(cfg.Derived.SpawnPolicy)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	if !g.headless {
		g.camera = camera.New(sceneTarget, 10, 4)
		g.camera.SetPath(cfg.Camera.OrbitRate, cfg.Camera.BobAmount, cfg.Camera.BobRate)
		g.hud = ui.NewHUD()
		g.controls = ui.NewControlsPanel(int32(g.screenWidth)-230, 10, 220)
		g.perfPanel = ui.NewPerfPanel(10, 120, 260, 6)
	}

	id := opts.Demo
	if id == "" {
		id = cfg.Demos.Initial
	}
	if err := g.StartDemo(id); err != nil {
		om.Close()
		return nil, err
	}
	return g, nil
}

// StartDemo replaces the running demo with the registered demo id.
func (g *Game) StartDemo(id string) error {
	d, ok := g.registry.Get(id)
	if !ok {
		return fmt.Errorf("unknown demo %q (have %v)", id, g.registry.IDs())
	}
	if err := g.player.Start(d, g.cfg.Engine.GroupCapacity); err != nil {
		return err
	}
	grp, err := g.ctx.Store().Group(g.player.Group())
	if err != nil {
		return err
	}

	g.collector.Reset(g.frame)
	if g.camera != nil {
		g.camera.Frame(sceneTarget, d.CameraDistance, d.CameraHeight)
	}
	slog.Info("demo_started", "demo", d.ID, "capacity", grp.Capacity(), "mode", g.player.Mode().String())
	return nil
}

// NextDemo starts the demo registered after the running one.
func (g *Game) NextDemo() error {
	return g.StartDemo(g.registry.Next(g.player.Demo().ID))
}

// SetStatsCallback installs a function called with each flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// Player exposes the demo player.
func (g *Game) Player() *demos.Player { return g.player }

// Context exposes the engine context.
func (g *Game) Context() *engine.Context { return g.ctx }

// Frame returns the number of displayed frames simulated.
func (g *Game) Frame() int64 { return g.frame }

// step advances one displayed frame and flushes telemetry when due.
func (g *Game) step() error {
	if err := g.player.Frame(g.stepsPerFrame); err != nil {
		return err
	}
	g.frame++

	live, err := g.ctx.LiveCount()
	if err != nil {
		return err
	}
	g.collector.RecordFrame(live)
	return g.flushTelemetry()
}

// UpdateHeadless advances one frame without input or rendering.
func (g *Game) UpdateHeadless() error {
	g.perfCollector.StartTick()
	defer g.perfCollector.EndTick()
	return g.step()
}

// Update processes input and advances one frame unless paused.
// The frame's perf sample is closed by Draw.
func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return err
	}
	g.perfCollector.StartTick()
	if g.paused {
		return nil
	}
	if g.camera != nil {
		g.camera.Advance(1)
	}
	return g.step()
}

// Unload releases output files and the running demo.
func (g *Game) Unload() {
	if err := g.player.Stop(); err != nil {
		slog.Error("failed to stop demo", "error", err)
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
