package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSaturated BookmarkType = "saturated" // group hit capacity
	BookmarkDrained   BookmarkType = "drained"   // group emptied
	BookmarkSurge     BookmarkType = "surge"     // mean speed spiked
	BookmarkCollapse  BookmarkType = "collapse"  // live count fell sharply from its peak
	BookmarkSettled   BookmarkType = "settled"   // live count and speed steady
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int64        `csv:"frame"`
	Demo        string       `csv:"demo"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"demo", b.Demo,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in a running demo.
// History is per demo: a window from a different demo resets it.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	demo               string
	saturated          bool
	recentPeak         int
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settled detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Reset forgets all history.
func (bd *BookmarkDetector) Reset() {
	bd.historyIdx = 0
	bd.historyFull = false
	bd.demo = ""
	bd.saturated = false
	bd.recentPeak = 0
	bd.stableWindowsCount = 0
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	if stats.Demo != bd.demo {
		bd.Reset()
		bd.demo = stats.Demo
	}

	var bookmarks []Bookmark
	if b := bd.checkSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkDrained(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkCollapse(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSettled(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.Live > bd.recentPeak {
		bd.recentPeak = stats.Live
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n most recent windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	if n > count {
		n = count
	}
	out := make([]WindowStats, n)
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - n + i + bd.historySize) % bd.historySize
		out[i] = bd.history[idx]
	}
	return out
}

func (bd *BookmarkDetector) mark(t BookmarkType, stats WindowStats, format string, args ...any) *Bookmark {
	return &Bookmark{
		Type:        t,
		Frame:       stats.WindowEndFrame,
		Demo:        stats.Demo,
		Description: fmt.Sprintf(format, args...),
	}
}

func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	full := stats.Capacity > 0 && stats.Live >= stats.Capacity
	was := bd.saturated
	bd.saturated = full
	if full && !was {
		return bd.mark(BookmarkSaturated, stats, "Group full at %d particles", stats.Capacity)
	}
	return nil
}

func (bd *BookmarkDetector) checkDrained(stats WindowStats) *Bookmark {
	prev := bd.recent(1)
	if stats.Live == 0 && prev[0].Live > 0 {
		return bd.mark(BookmarkDrained, stats, "Group emptied from %d particles", prev[0].Live)
	}
	return nil
}

func (bd *BookmarkDetector) checkSurge(stats WindowStats) *Bookmark {
	history := bd.recent(bd.historySize)
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.SpeedMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.SpeedMean > avg*2.0 && stats.SpeedMean > 0.05 {
		return bd.mark(BookmarkSurge, stats, "Mean speed %.3f is %.1fx average (%.3f)", stats.SpeedMean, stats.SpeedMean/avg, avg)
	}
	return nil
}

func (bd *BookmarkDetector) checkCollapse(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Live)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Live > 0 && stats.Live < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Live
		return bd.mark(BookmarkCollapse, stats, "Live count fell %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Live)
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Live == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.recent(4)
	if len(history) < 4 {
		return nil
	}

	var liveSum, speedSum float64
	for _, h := range history {
		liveSum += float64(h.Live)
		speedSum += h.SpeedMean
	}
	liveMean := liveSum / 4
	speedMean := speedSum / 4

	var liveVar, speedVar float64
	for _, h := range history {
		dl := float64(h.Live) - liveMean
		ds := h.SpeedMean - speedMean
		liveVar += dl * dl
		speedVar += ds * ds
	}
	liveVar /= 4
	speedVar /= 4

	// Squared coefficient of variation; 0.01 means CV < 10%.
	liveCV2, speedCV2 := 0.0, 0.0
	if liveMean > 0 {
		liveCV2 = liveVar / (liveMean * liveMean)
	}
	if speedMean > 0 {
		speedCV2 = speedVar / (speedMean * speedMean)
	}

	if liveCV2 < 0.01 && speedCV2 < 0.01 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 {
		return bd.mark(BookmarkSettled, stats, "Steady at %d particles, mean speed %.3f over 5+ windows", stats.Live, stats.SpeedMean)
	}
	return nil
}
