package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spray/demos"
)

// ControlsState is what the controls panel reads and edits.
type ControlsState struct {
	Toggles       demos.Toggles
	ListMode      bool
	StepsPerFrame int
}

// ControlsResult reports the buttons pressed during one Draw.
type ControlsResult struct {
	Changed  bool // Toggles, mode or steps differ from the input state
	NextDemo bool
	Restart  bool
}

// ControlsPanel renders the feature switches, execution mode and step rate.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

const (
	buttonHeight = 22
	maxSteps     = 8
)

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition moves the panel.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x, c.y = x, y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and applies clicks to state.
func (c *ControlsPanel) Draw(state *ControlsState) ControlsResult {
	var res ControlsResult
	if !c.visible {
		return res
	}

	r := c.renderer
	pad := r.Theme.Padding
	toggles := state.Toggles.List()
	rowH := int32(buttonHeight + 4)
	height := int32(len(toggles)+4)*rowH + r.Theme.LineHeight*2 + pad*3
	r.DrawPanel(c.x, c.y, c.width, height)

	x := float32(c.x + pad)
	w := float32(c.width - pad*2)
	y := r.DrawSectionHeader(c.x+pad, c.y+pad, "Features")

	for _, t := range toggles {
		if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: buttonHeight}, checkLabel(*t.Value, t.Name)) {
			*t.Value = !*t.Value
			res.Changed = true
		}
		y += rowH
	}

	y += pad
	mode := "Mode: immediate"
	if state.ListMode {
		mode = "Mode: recorded list"
	}
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: buttonHeight}, mode) {
		state.ListMode = !state.ListMode
		res.Changed = true
	}
	y += rowH

	rl.DrawText(fmt.Sprintf("Steps per frame: %d", state.StepsPerFrame), c.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	steps := int(gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: w - 40, Height: 16},
		"1", fmt.Sprint(maxSteps),
		float32(state.StepsPerFrame), 1, maxSteps,
	) + 0.5)
	if steps != state.StepsPerFrame {
		state.StepsPerFrame = steps
		res.Changed = true
	}
	y += rowH

	half := (w - float32(pad)) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: buttonHeight}, "Next demo") {
		res.NextDemo = true
	}
	if gui.Button(rl.Rectangle{X: x + half + float32(pad), Y: float32(y), Width: half, Height: buttonHeight}, "Restart") {
		res.Restart = true
	}
	return res
}

func checkLabel(on bool, name string) string {
	if on {
		return "[x] " + name
	}
	return "[ ] " + name
}
