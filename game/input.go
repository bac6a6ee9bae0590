package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/spray/demos"
	"github.com/pthm-cable/spray/ui"
)

// toggleKeys maps number keys to entries of demos.Toggles.List.
var toggleKeys = []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour, rl.KeyFive}

// handleInput processes keyboard input.
func (g *Game) handleInput() error {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-frame control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerFrame > 1 {
		g.stepsPerFrame--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerFrame < 8 {
		g.stepsPerFrame++
	}

	if rl.IsKeyPressed(rl.KeyTab) {
		g.toggleMode()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.controls.Toggle()
	}

	tg := g.player.Toggles()
	list := tg.List()
	for i, key := range toggleKeys {
		if i < len(list) && rl.IsKeyPressed(key) {
			*list[i].Value = !*list[i].Value
		}
	}
	g.player.SetToggles(tg)

	g.handleCameraInput()

	if rl.IsKeyPressed(rl.KeyN) {
		return g.NextDemo()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		return g.StartDemo(g.player.Demo().ID)
	}
	return nil
}

func (g *Game) toggleMode() {
	if g.player.Mode() == demos.ModeList {
		g.player.SetMode(demos.ModeImmediate)
	} else {
		g.player.SetMode(demos.ModeList)
	}
}

// applyControls copies panel edits back into the player.
func (g *Game) applyControls(state ui.ControlsState, res ui.ControlsResult) error {
	if res.Changed {
		g.player.SetToggles(state.Toggles)
		if state.ListMode != (g.player.Mode() == demos.ModeList) {
			g.toggleMode()
		}
		g.stepsPerFrame = state.StepsPerFrame
	}
	if res.NextDemo {
		return g.NextDemo()
	}
	if res.Restart {
		return g.StartDemo(g.player.Demo().ID)
	}
	return nil
}

// handleResize checks for window resize and repositions panels.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.controls.SetPosition(int32(w)-230, 10)
}

// handleCameraInput processes camera orbit/zoom controls.
func (g *Game) handleCameraInput() {
	if g.camera == nil {
		return
	}

	const orbitSpeed = 0.03
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(orbitSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(-orbitSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, 0.1)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -0.1)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1.0 + float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}
