// Package camera provides an orbiting 3D camera path for viewing demos.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Camera circles a target point with z up. The path is a pure function of
// the elapsed frame count, so headless runs and tests reproduce it exactly.
type Camera struct {
	// Target is the point the camera looks at
	Target r3.Vec

	// Distance is the horizontal radius of the orbit; Height the eye's
	// resting height above the target
	Distance, Height float64

	// Angle is the current azimuth in radians
	Angle float64

	// Per-frame path parameters
	OrbitRate float64 // radians of azimuth per frame
	BobAmount float64 // height swing as a fraction of Height
	BobRate   float64 // radians of bob phase per frame
	bobPhase  float64

	// Zoom scales Distance and Height (1.0 = as configured)
	Zoom, MinZoom, MaxZoom float64

	// Manual orbit from mouse drag, kept separate so Reset can drop it
	userAngle float64
}

// New creates a camera orbiting target at the given distance and height.
func New(target r3.Vec, distance, height float64) *Camera {
	return &Camera{
		Target:   target,
		Distance: distance,
		Height:   height,
		Zoom:     1.0,
		MinZoom:  0.25,
		MaxZoom:  4.0,
	}
}

// SetPath sets the automatic orbit parameters.
func (c *Camera) SetPath(orbitRate, bobAmount, bobRate float64) {
	c.OrbitRate = orbitRate
	c.BobAmount = bobAmount
	c.BobRate = bobRate
}

// Advance moves the camera along its path by the given number of frames.
func (c *Camera) Advance(frames float64) {
	c.Angle = math.Mod(c.Angle+c.OrbitRate*frames, 2*math.Pi)
	c.bobPhase = math.Mod(c.bobPhase+c.BobRate*frames, 2*math.Pi)
}

// Position returns the eye position.
func (c *Camera) Position() r3.Vec {
	a := c.Angle + c.userAngle
	d := c.Distance / c.Zoom
	h := c.Height * (1 + c.BobAmount*math.Sin(c.bobPhase)) / c.Zoom
	return r3.Add(c.Target, r3.Vec{X: d * math.Cos(a), Y: d * math.Sin(a), Z: h})
}

// Forward returns the unit view direction.
func (c *Camera) Forward() r3.Vec {
	return r3.Unit(r3.Sub(c.Target, c.Position()))
}

// Depth returns how far p lies in front of the eye along the view direction.
// Renderers sort back to front on it.
func (c *Camera) Depth(p r3.Vec) float64 {
	return r3.Dot(r3.Sub(p, c.Position()), c.Forward())
}

// IsVisible returns false for points behind the eye or beyond far.
func (c *Camera) IsVisible(p r3.Vec, far float64) bool {
	d := c.Depth(p)
	return d > 0 && d <= far
}

// Pan orbits the camera by a manual azimuth offset in radians and raises it
// by dh world units.
func (c *Camera) Pan(dAngle, dh float64) {
	c.userAngle = math.Mod(c.userAngle+dAngle, 2*math.Pi)
	c.Height = math.Max(0, c.Height+dh)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Frame re-aims the camera for a new scene, keeping the path parameters.
func (c *Camera) Frame(target r3.Vec, distance, height float64) {
	c.Target = target
	c.Distance = distance
	c.Height = height
	c.Reset()
}

// Reset drops manual orbit and zoom and restarts the path.
func (c *Camera) Reset() {
	c.Angle = 0
	c.bobPhase = 0
	c.userAngle = 0
	c.Zoom = 1.0
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
