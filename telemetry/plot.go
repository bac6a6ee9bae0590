package telemetry

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// PlotLive renders live particle counts per window as a terminal chart.
// Returns "" when there is nothing to plot.
func PlotLive(windows []WindowStats, height, width int) string {
	if len(windows) == 0 {
		return ""
	}
	live := make([]float64, len(windows))
	for i, w := range windows {
		live[i] = w.LiveMean
	}
	caption := fmt.Sprintf("%s live particles (%s), %d windows", windows[0].Demo, windows[0].Mode, len(windows))
	return asciigraph.Plot(live,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotSpeed renders the mean particle speed per window.
func PlotSpeed(windows []WindowStats, height, width int) string {
	if len(windows) == 0 {
		return ""
	}
	speed := make([]float64, len(windows))
	for i, w := range windows {
		speed[i] = w.SpeedMean
	}
	return asciigraph.Plot(speed,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("mean speed"),
	)
}
