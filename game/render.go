package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/demos"
	"github.com/pthm-cable/spray/telemetry"
	"github.com/pthm-cable/spray/ui"
)

// sceneTarget is where every demo is framed; demos are built around the
// origin with the ground at z = 0.
var sceneTarget = r3.Vec{Z: 1}

const controlsLegend = "[Space] pause  [Tab] mode  [N] next  [R] restart  [1-5] features  [</>] steps  [C] panel  arrows/wheel: camera"

// Draw renders the running demo and closes the frame's perf sample.
func (g *Game) Draw() error {
	g.perfCollector.RecordFrame()
	defer g.perfCollector.EndTick()

	g.perfCollector.StartPhase(telemetry.PhaseReadBack)
	if _, err := g.ctx.ReadBack(0, g.cfg.Telemetry.SampleLimit, &g.buf); err != nil {
		return err
	}

	g.perfCollector.StartPhase(telemetry.PhaseRender)
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 12, G: 14, B: 20, A: 255})

	rl.BeginMode3D(g.camera3D())
	rl.DrawGrid(20, 1)
	g.drawParticles()
	rl.EndMode3D()

	grp, err := g.ctx.Store().Group(g.player.Group())
	if err != nil {
		rl.EndDrawing()
		return err
	}
	d := g.player.Demo()
	g.hud.Draw(ui.HUDData{
		Demo:          d.Name,
		Description:   d.Description,
		Mode:          g.player.Mode().String(),
		Live:          grp.LiveCount(),
		Capacity:      grp.Capacity(),
		ListLen:       g.player.ListLen(),
		Passes:        g.ctx.Passes(),
		Frame:         g.frame,
		StepsPerFrame: g.stepsPerFrame,
		FPS:           rl.GetFPS(),
		Paused:        g.paused,
	})
	g.perfPanel.Draw(g.perfCollector.Stats())

	state := ui.ControlsState{
		Toggles:       g.player.Toggles(),
		ListMode:      g.player.Mode() == demos.ModeList,
		StepsPerFrame: g.stepsPerFrame,
	}
	res := g.controls.Draw(&state)
	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)

	rl.EndDrawing()

	if err := g.applyControls(state, res); err != nil {
		slog.Error("failed to apply controls", "error", err)
	}
	return nil
}

// camera3D converts the orbit camera to raylib's z-up perspective camera.
func (g *Game) camera3D() rl.Camera3D {
	return rl.Camera3D{
		Position:   vec3(g.camera.Position()),
		Target:     vec3(g.camera.Target),
		Up:         rl.Vector3{Z: 1},
		Fovy:       float32(g.cfg.Camera.FOV),
		Projection: rl.CameraPerspective,
	}
}

// drawParticles draws each read-back particle as a small cube sized by its
// first size component.
func (g *Game) drawParticles() {
	b := &g.buf
	for i := 0; i < b.Count; i++ {
		pos := rl.Vector3{X: b.Pos[3*i], Y: b.Pos[3*i+1], Z: b.Pos[3*i+2]}
		col := rl.Color{
			R: channel(b.Color[4*i]),
			G: channel(b.Color[4*i+1]),
			B: channel(b.Color[4*i+2]),
			A: channel(b.Color[4*i+3]),
		}
		s := b.Size[3*i]
		if s <= 0.02 {
			rl.DrawPoint3D(pos, col)
			continue
		}
		rl.DrawCube(pos, s, s, s, col)
	}
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

// channel converts a [0, 1] color channel to a byte, clamping.
func channel(c float32) uint8 {
	if c <= 0 {
		return 0
	}
	if c >= 1 {
		return 255
	}
	return uint8(c*255 + 0.5)
}
