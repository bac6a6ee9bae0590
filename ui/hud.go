package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spray/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Demo          string
	Description   string
	Mode          string
	Live          int
	Capacity      int
	ListLen       int
	Passes        uint64
	Frame         int64
	StepsPerFrame int
	FPS           int32
	Paused        bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Demo, 10, 10, 20, rl.White)
	rl.DrawText(data.Description, 10, 35, 14, rl.LightGray)

	rl.DrawText(
		fmt.Sprintf("Particles: %d / %d | Mode: %s | List: %d actions", data.Live, data.Capacity, data.Mode, data.ListLen),
		10, 55, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Frame: %d | Passes: %d | Steps/frame: %d | FPS: %d", data.Frame, data.Passes, data.StepsPerFrame, data.FPS),
		10, 75, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 95, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the most expensive phases of recent frames.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	rows     int
}

// NewPerfPanel creates a new performance panel showing up to rows phases.
func NewPerfPanel(x, y, width int32, rows int) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width, rows: rows}
}

// SetPosition moves the panel.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x, p.y = x, y
}

// Draw renders the panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	pad := r.Theme.Padding

	phases := stats.Phases()
	if len(phases) > p.rows {
		phases = phases[:p.rows]
	}
	height := int32(len(phases)+2)*r.Theme.LineHeight + pad*2
	r.DrawPanel(p.x, p.y, p.width, height)

	y := r.DrawSectionHeader(p.x+pad, p.y+pad, "Frame time")
	y = r.DrawLabelValue(p.x+pad, y, "avg", fmt.Sprintf("%d us", stats.AvgTickDuration.Microseconds()))
	for _, phase := range phases {
		y = r.DrawBar(p.x+pad, y, phase, float32(stats.PhasePct[phase]/100), p.width-pad*2)
	}
}
