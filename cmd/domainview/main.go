// Domain preview tool - interactive view of domain sampling with sliders.
//
// Usage: go run ./cmd/domainview
package main

import (
	"fmt"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/camera"
	"github.com/pthm-cable/spray/domain"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	panelWidth   = 320
	viewWidth    = windowWidth - panelWidth
)

// shapes lists the previewable domain kinds in button order.
var shapes = []string{"sphere", "cylinder", "cone", "disc", "box", "blob"}

// ShapeParams holds the preview parameters.
type ShapeParams struct {
	Shape   int
	Outer   float32 // outer radius (or half extent / stddev)
	Inner   float32 // inner radius, hollow shapes only
	Length  float32 // axis length for cylinder and cone
	Samples int
	Seed    int64
}

func defaultParams() ShapeParams {
	return ShapeParams{Outer: 1.5, Inner: 0.5, Length: 3, Samples: 2000, Seed: 1}
}

// build returns the domain described by p, centered on the origin.
func build(p ShapeParams) domain.Domain {
	outer, inner, length := float64(p.Outer), float64(p.Inner), float64(p.Length)
	top := r3.Vec{Z: length}
	switch shapes[p.Shape] {
	case "cylinder":
		return domain.NewCylinder(r3.Vec{}, top, outer, inner)
	case "cone":
		return domain.NewCone(top, r3.Vec{}, outer, inner)
	case "disc":
		return domain.NewDisc(r3.Vec{}, r3.Vec{Z: 1}, outer, inner)
	case "box":
		return domain.NewBox(r3.Vec{X: -outer, Y: -outer, Z: 0}, r3.Vec{X: outer, Y: outer, Z: length})
	case "blob":
		return domain.NewBlob(r3.Vec{Z: 1}, outer)
	default:
		return domain.NewSphere(r3.Vec{Z: 1}, outer, inner)
	}
}

// sample draws n points from d and reports the fraction that d contains.
func sample(d domain.Domain, n int, seed int64) ([]r3.Vec, float64) {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]r3.Vec, n)
	inside := 0
	for i := range pts {
		pts[i] = d.Generate(rng)
		if d.Within(pts[i]) {
			inside++
		}
	}
	if n == 0 {
		return pts, 0
	}
	return pts, float64(inside) / float64(n)
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Domain Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()
	cam := camera.New(r3.Vec{Z: 1}, 7, 4)
	cam.SetPath(0.01, 0, 0)

	var points []r3.Vec
	var insideFrac float64
	needsRegen := true
	orbiting := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			points, insideFrac = sample(build(params), params.Samples, params.Seed)
			needsRegen = false
		}
		if orbiting {
			cam.Advance(1)
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			cam.ZoomBy(1.0 + float64(wheel)*0.1)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// 3D preview, left of the panel
		rl.BeginScissorMode(0, 0, viewWidth, windowHeight)
		rl.BeginMode3D(rl.Camera3D{
			Position:   toRL(cam.Position()),
			Target:     toRL(cam.Target),
			Up:         rl.Vector3{Z: 1},
			Fovy:       45,
			Projection: rl.CameraPerspective,
		})
		rl.DrawGrid(10, 0.5)
		for _, p := range points {
			rl.DrawPoint3D(toRL(p), rl.DarkBlue)
		}
		rl.EndMode3D()
		rl.EndScissorMode()

		rl.DrawText(fmt.Sprintf("%s  samples: %d  within: %.1f%%", shapes[params.Shape], len(points), insideFrac*100),
			15, windowHeight-30, 16, rl.DarkGray)

		// Control panel
		panelX := float32(viewWidth + 10)
		panelY := float32(10)
		rl.DrawText("Domain Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 140, Height: 30}, "Shape: "+shapes[params.Shape]) {
			params.Shape = (params.Shape + 1) % len(shapes)
			needsRegen = true
		}
		panelY += 45

		needsRegen = slider(&panelX, &panelY, "Outer radius", &params.Outer, 0.1, 4) || needsRegen
		needsRegen = slider(&panelX, &panelY, "Inner radius", &params.Inner, 0, 4) || needsRegen
		needsRegen = slider(&panelX, &panelY, "Length", &params.Length, 0.1, 6) || needsRegen

		samples := float32(params.Samples)
		if slider(&panelX, &panelY, "Samples", &samples, 100, 20000) {
			params.Samples = int(samples)
			needsRegen = true
		}

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 140, Height: 30}, toggleText(orbiting, "Stop orbit", "Orbit")) {
			orbiting = !orbiting
		}
		if gui.Button(rl.Rectangle{X: panelX + 150, Y: panelY, Width: 140, Height: 30}, "Reseed") {
			params.Seed++
			needsRegen = true
		}
		panelY += 45
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 140, Height: 30}, "Reset All") {
			params = defaultParams()
			cam.Reset()
			needsRegen = true
		}

		rl.DrawText("Press C to copy the constructor to clipboard", int32(panelX), windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(constructor(params))
		}

		rl.EndDrawing()
	}
}

// slider draws a labeled slider bar and reports whether the value changed.
func slider(x, y *float32, label string, v *float32, lo, hi float32) bool {
	rl.DrawText(label, int32(*x), int32(*y), 14, rl.Gray)
	*y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: *x + 30, Y: *y, Width: float32(panelWidth - 120), Height: 20},
		fmt.Sprintf("%.1f", lo), fmt.Sprintf("%.1f", hi),
		*v, lo, hi,
	)
	rl.DrawText(fmt.Sprintf("%.2f", *v), int32(*x+float32(panelWidth-80)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	if next != *v {
		*v = next
		return true
	}
	return false
}

// constructor returns the Go call that builds the previewed domain.
func constructor(p ShapeParams) string {
	switch shapes[p.Shape] {
	case "cylinder":
		return fmt.Sprintf("domain.NewCylinder(r3.Vec{}, r3.Vec{Z: %.2f}, %.2f, %.2f)", p.Length, p.Outer, p.Inner)
	case "cone":
		return fmt.Sprintf("domain.NewCone(r3.Vec{Z: %.2f}, r3.Vec{}, %.2f, %.2f)", p.Length, p.Outer, p.Inner)
	case "disc":
		return fmt.Sprintf("domain.NewDisc(r3.Vec{}, r3.Vec{Z: 1}, %.2f, %.2f)", p.Outer, p.Inner)
	case "box":
		return fmt.Sprintf("domain.NewBox(r3.Vec{X: -%.2f, Y: -%.2f}, r3.Vec{X: %.2f, Y: %.2f, Z: %.2f})", p.Outer, p.Outer, p.Outer, p.Outer, p.Length)
	case "blob":
		return fmt.Sprintf("domain.NewBlob(r3.Vec{Z: 1}, %.2f)", p.Outer)
	default:
		return fmt.Sprintf("domain.NewSphere(r3.Vec{Z: 1}, %.2f, %.2f)", p.Outer, p.Inner)
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

func toRL(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
