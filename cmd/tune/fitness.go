package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/spray/demos"
	"github.com/pthm-cable/spray/engine"
	"github.com/pthm-cable/spray/store"
	"github.com/pthm-cable/spray/telemetry"
)

// Targets are the fountain statistics the tuner steers toward.
type Targets struct {
	Height float64 // mean particle height
	Live   float64 // mean live count
}

// FitnessEvaluator runs headless fountains and scores them.
type FitnessEvaluator struct {
	params  *ParamVector
	targets Targets
	frames  int
	window  int
	seeds   []int64
	budget  int

	mu          sync.Mutex
	lastWindows []telemetry.WindowStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, targets Targets, frames, window, budget int, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:  params,
		targets: targets,
		frames:  frames,
		window:  window,
		seeds:   seeds,
		budget:  budget,
	}
}

// LastWindows returns the windows of the first seed of the most recent evaluation.
func (fe *FitnessEvaluator) LastWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastWindows
}

// warmupWindows are skipped while the basin fills.
const warmupWindows = 2

// Evaluate computes fitness for raw parameter values (lower = better),
// averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	p := fe.params.Apply(x)

	results := make([][]telemetry.WindowStats, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.run(p, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for i, windows := range results {
		if errs[i] != nil {
			return math.Inf(1)
		}
		total += fe.score(windows)
	}

	fe.mu.Lock()
	fe.lastWindows = results[0]
	fe.mu.Unlock()

	return total / float64(len(fe.seeds))
}

// run simulates one fountain and collects window stats.
func (fe *FitnessEvaluator) run(p demos.FountainParams, seed int64) ([]telemetry.WindowStats, error) {
	ctx := engine.New(engine.Options{Budget: fe.budget, Seed: seed})
	player := demos.NewPlayer(ctx)
	player.SetMode(demos.ModeList)
	if err := player.Start(demos.FountainWith(p), 0); err != nil {
		return nil, err
	}
	defer player.Stop()

	grp, err := ctx.Store().Group(player.Group())
	if err != nil {
		return nil, err
	}
	collector := telemetry.NewCollector(fe.window)
	var buf store.Buffers
	var windows []telemetry.WindowStats

	for frame := int64(1); frame <= int64(fe.frames); frame++ {
		if err := player.Frame(1); err != nil {
			return nil, err
		}
		collector.RecordFrame(grp.LiveCount())
		if !collector.ShouldFlush(frame) {
			continue
		}
		ctx.ReadBack(0, grp.Capacity(), &buf)
		info := telemetry.FrameInfo{
			Demo:     "fountain",
			Mode:     player.Mode().String(),
			Passes:   ctx.Passes(),
			ListLen:  player.ListLen(),
			Live:     grp.LiveCount(),
			Capacity: grp.Capacity(),
		}
		windows = append(windows, collector.Flush(frame, player.Time(), info, telemetry.ComputeSampleStats(&buf)))
	}
	return windows, nil
}

// score is the squared relative error to the targets plus a penalty for
// windows that keep changing.
func (fe *FitnessEvaluator) score(windows []telemetry.WindowStats) float64 {
	if len(windows) <= warmupWindows {
		return math.Inf(1)
	}
	valid := windows[warmupWindows:]

	heights := make([]float64, len(valid))
	lives := make([]float64, len(valid))
	for i, w := range valid {
		heights[i] = w.HeightMean
		lives[i] = w.LiveMean
	}

	h, l := stat.Mean(heights, nil), stat.Mean(lives, nil)
	eh := (h - fe.targets.Height) / fe.targets.Height
	el := (l - fe.targets.Live) / fe.targets.Live
	c := cv(lives)
	return eh*eh + el*el + 0.5*c*c
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
