// Package components defines the plain data records shared by the engine.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Color is an RGBA color with float channels, nominally in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB returns the color channels as a vector (alpha dropped).
func (c Color) RGB() r3.Vec {
	return r3.Vec{X: c.R, Y: c.G, Z: c.B}
}

// ColorFromVec builds a color from an RGB vector and an alpha value.
func ColorFromVec(v r3.Vec, alpha float64) Color {
	return Color{R: v.X, G: v.Y, B: v.Z, A: alpha}
}

// Particle is one simulated entity.
// Particles are owned by their group; a pointer to one is only valid for the
// duration of the pass that handed it out.
type Particle struct {
	Pos  r3.Vec // Current position
	PosB r3.Vec // Position checkpoint (CopyVertexB / Restore)
	Vel  r3.Vec // Current velocity
	VelB r3.Vec // Velocity checkpoint

	Size  r3.Vec // Up to three size components; renderers use X
	Color Color
	Age   float64 // Passes survived since spawn (plus starting age)
	Mass  float64
	Tag   uint64 // Free scratch value for callbacks

	dead bool
}

// Kill marks the particle for removal at the end of the current pass.
func (p *Particle) Kill() {
	p.dead = true
}

// Dead reports whether the particle has been marked for removal.
func (p *Particle) Dead() bool {
	return p.dead
}
