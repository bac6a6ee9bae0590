package telemetry

// FrameInfo is what the frame driver knows about the running demo at the
// end of a window.
type FrameInfo struct {
	Demo     string
	Mode     string
	Passes   uint64
	ListLen  int
	Live     int
	Capacity int
}

// Collector accumulates per-frame counts within windows of displayed frames
// and produces WindowStats.
type Collector struct {
	windowFrames int64

	// Current window tracking
	windowStartFrame int64
	frames           int
	liveSum          int
	livePeak         int
}

// NewCollector creates a new stats collector.
// windowFrames: how many displayed frames each stats window spans.
func NewCollector(windowFrames int) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	return &Collector{windowFrames: int64(windowFrames)}
}

// RecordFrame records the live count after one displayed frame.
func (c *Collector) RecordFrame(live int) {
	c.frames++
	c.liveSum += live
	if live > c.livePeak {
		c.livePeak = live
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(frame int64) bool {
	return frame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats and resets counters for the next window.
// sample summarizes a readback taken at frame; simTime is elapsed simulated
// time in frames.
func (c *Collector) Flush(frame int64, simTime float64, info FrameInfo, sample SampleStats) WindowStats {
	var liveMean, fill float64
	if c.frames > 0 {
		liveMean = float64(c.liveSum) / float64(c.frames)
	}
	if info.Capacity > 0 {
		fill = float64(info.Live) / float64(info.Capacity)
	}

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   frame,
		SimTime:          simTime,

		Demo:    info.Demo,
		Mode:    info.Mode,
		Passes:  info.Passes,
		ListLen: info.ListLen,

		Live:     info.Live,
		Capacity: info.Capacity,
		Fill:     fill,
		LiveMean: liveMean,
		LivePeak: c.livePeak,
		Sampled:  sample.Count,

		SpeedMean: sample.SpeedMean,
		SpeedStd:  sample.SpeedStd,
		SpeedP10:  sample.SpeedP10,
		SpeedP50:  sample.SpeedP50,
		SpeedP90:  sample.SpeedP90,

		HeightMean: sample.HeightMean,
		HeightStd:  sample.HeightStd,
		HeightP10:  sample.HeightP10,
		HeightP90:  sample.HeightP90,

		Spread:   sample.Spread,
		SizeMean: sample.SizeMean,
	}

	c.windowStartFrame = frame
	c.frames = 0
	c.liveSum = 0
	c.livePeak = 0

	return stats
}

// Reset starts a new window at frame, discarding partial counts.
func (c *Collector) Reset(frame int64) {
	c.windowStartFrame = frame
	c.frames = 0
	c.liveSum = 0
	c.livePeak = 0
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int64 {
	return c.windowFrames
}
