package game

import (
	"log/slog"

	"github.com/pthm-cable/spray/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() error {
	if !g.collector.ShouldFlush(g.frame) {
		return nil
	}
	g.perfCollector.StartPhase(telemetry.PhaseStats)

	grp, err := g.ctx.Store().Group(g.player.Group())
	if err != nil {
		return err
	}
	if _, err := g.ctx.ReadBack(0, g.cfg.Telemetry.SampleLimit, &g.buf); err != nil {
		return err
	}
	sample := telemetry.ComputeSampleStats(&g.buf)

	info := telemetry.FrameInfo{
		Demo:     g.player.Demo().ID,
		Mode:     g.player.Mode().String(),
		Passes:   g.ctx.Passes(),
		ListLen:  g.player.ListLen(),
		Live:     grp.LiveCount(),
		Capacity: grp.Capacity(),
	}
	stats := g.collector.Flush(g.frame, g.player.Time(), info, sample)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
	return nil
}
