package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spray/config"
	"github.com/pthm-cable/spray/game"
	"github.com/pthm-cable/spray/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	demo := flag.String("demo", "", "Demo to start (empty = use config)")
	listMode := flag.Bool("list", false, "Start in recorded-list mode")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")
	stepsPerFrame := flag.Int("steps-per-frame", 0, "Engine passes per frame (0 = use config)")
	debug := flag.Bool("debug", false, "Log engine debug events")
	plot := flag.Bool("plot", false, "Print live and speed charts to stderr after a headless run")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:          rngSeed,
		Demo:          *demo,
		StepsPerFrame: *stepsPerFrame,
		ListMode:      *listMode,
		LogStats:      *logStats,
		OutputDir:     *outputDir,
		Headless:      *headless,
	}

	if *headless {
		// Headless mode - pure CPU simulation, no raylib needed
		g, err := game.NewGameWithOptions(opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		var windows []telemetry.WindowStats
		if *plot {
			g.SetStatsCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })
		}

		slog.Info("starting headless run",
			"seed", rngSeed,
			"demo", g.Player().Demo().ID,
			"max_frames", *maxFrames,
		)

		for *maxFrames <= 0 || g.Frame() < int64(*maxFrames) {
			if err := g.UpdateHeadless(); err != nil {
				slog.Error("frame failed", "frame", g.Frame(), "error", err)
				return
			}
		}
		slog.Info("max frames reached", "frame", g.Frame())
		if chart := telemetry.PlotLive(windows, 10, 70); chart != "" {
			fmt.Fprintln(os.Stderr, chart)
			fmt.Fprintln(os.Stderr, telemetry.PlotSpeed(windows, 6, 70))
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Spray")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		if err := g.Update(); err != nil {
			slog.Error("update failed", "frame", g.Frame(), "error", err)
			return
		}
		if err := g.Draw(); err != nil {
			slog.Error("draw failed", "frame", g.Frame(), "error", err)
			return
		}

		if *maxFrames > 0 && g.Frame() >= int64(*maxFrames) {
			break
		}
	}
}
