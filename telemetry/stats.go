package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/spray/store"
)

// WindowStats holds aggregated statistics for a window of displayed frames.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTime          float64 `csv:"sim_time"` // Frames of simulated time

	Demo    string `csv:"demo"`
	Mode    string `csv:"mode"`
	Passes  uint64 `csv:"passes"`
	ListLen int    `csv:"list_len"`

	// Population
	Live     int     `csv:"live"`
	Capacity int     `csv:"capacity"`
	Fill     float64 `csv:"fill"`
	LiveMean float64 `csv:"live_mean"` // Averaged over the window's frames
	LivePeak int     `csv:"live_peak"`
	Sampled  int     `csv:"sampled"` // Particles read back for the distributions below

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Height (z) distribution
	HeightMean float64 `csv:"height_mean"`
	HeightStd  float64 `csv:"height_std"`
	HeightP10  float64 `csv:"height_p10"`
	HeightP90  float64 `csv:"height_p90"`

	// Horizontal spread around the centroid
	Spread   float64 `csv:"spread"`
	SizeMean float64 `csv:"size_mean"`
}

// SampleStats summarizes one readback of particle buffers.
type SampleStats struct {
	Count int

	SpeedMean, SpeedStd          float64
	SpeedP10, SpeedP50, SpeedP90 float64
	HeightMean, HeightStd        float64
	HeightP10, HeightP90         float64
	Spread, SizeMean             float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Distribution returns the mean, sample standard deviation and the 10th,
// 50th and 90th percentiles of values. It does not modify values.
func Distribution(values []float64) (mean, std, p10, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0, 0
	case 1:
		v := values[0]
		return v, 0, v, v, v
	}
	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return mean, std, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// ComputeSampleStats summarizes the particles held in b.
func ComputeSampleStats(b *store.Buffers) SampleStats {
	n := b.Count
	if n == 0 {
		return SampleStats{}
	}

	speeds := make([]float64, n)
	heights := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	sizes := make([]float64, n)
	for i := 0; i < n; i++ {
		vx, vy, vz := float64(b.Vel[3*i]), float64(b.Vel[3*i+1]), float64(b.Vel[3*i+2])
		speeds[i] = math.Sqrt(vx*vx + vy*vy + vz*vz)
		xs[i] = float64(b.Pos[3*i])
		ys[i] = float64(b.Pos[3*i+1])
		heights[i] = float64(b.Pos[3*i+2])
		sizes[i] = float64(b.Size[3*i])
	}

	s := SampleStats{Count: n}
	s.SpeedMean, s.SpeedStd, s.SpeedP10, s.SpeedP50, s.SpeedP90 = Distribution(speeds)
	s.HeightMean, s.HeightStd, s.HeightP10, _, s.HeightP90 = Distribution(heights)

	// RMS horizontal distance from the centroid.
	cx, cy := stat.Mean(xs, nil), stat.Mean(ys, nil)
	for i := range xs {
		xs[i] -= cx
		ys[i] -= cy
	}
	s.Spread = math.Sqrt(stat.Mean(squares(xs), nil) + stat.Mean(squares(ys), nil))
	s.SizeMean = stat.Mean(sizes, nil)
	return s
}

func squares(v []float64) []float64 {
	for i, x := range v {
		v[i] = x * x
	}
	return v
}

// SpeedCV returns the coefficient of variation of speed, or 0 when still.
func (s WindowStats) SpeedCV() float64 {
	if s.SpeedMean <= 0 {
		return 0
	}
	return s.SpeedStd / s.SpeedMean
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTime),
		slog.String("demo", s.Demo),
		slog.String("mode", s.Mode),
		slog.Uint64("passes", s.Passes),
		slog.Int("list_len", s.ListLen),
		slog.Int("live", s.Live),
		slog.Int("capacity", s.Capacity),
		slog.Float64("fill", s.Fill),
		slog.Float64("live_mean", s.LiveMean),
		slog.Int("live_peak", s.LivePeak),
		slog.Int("sampled", s.Sampled),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("height_mean", s.HeightMean),
		slog.Float64("height_std", s.HeightStd),
		slog.Float64("height_p10", s.HeightP10),
		slog.Float64("height_p90", s.HeightP90),
		slog.Float64("spread", s.Spread),
		slog.Float64("size_mean", s.SizeMean),
	)
}

// LogStats logs the headline window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"demo", s.Demo,
		"mode", s.Mode,
		"live", s.Live,
		"fill", s.Fill,
		"live_peak", s.LivePeak,
		"speed_mean", s.SpeedMean,
		"speed_p90", s.SpeedP90,
		"height_mean", s.HeightMean,
		"spread", s.Spread,
	)
}
