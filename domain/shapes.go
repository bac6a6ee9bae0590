package domain

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point is a single location.
type Point struct {
	P r3.Vec
}

// NewPoint creates a point domain.
func NewPoint(p r3.Vec) Point {
	return Point{P: p}
}

func (Point) Kind() Kind { return KindPoint }
func (d Point) Within(p r3.Vec) bool { return d.Distance(p) <= 0 }
func (d Point) Distance(p r3.Vec) float64 { return r3.Norm(r3.Sub(p, d.P)) }
func (d Point) Generate(_ *rand.Rand) r3.Vec { return d.P }
func (Point) sealed() {}

// Line is the segment from P0 to P0+Dir.
type Line struct {
	P0  r3.Vec
	Dir r3.Vec
}

// NewLine creates a segment domain between two endpoints.
func NewLine(p0, p1 r3.Vec) Line {
	return Line{P0: p0, Dir: r3.Sub(p1, p0)}
}

func (Line) Kind() Kind { return KindLine }
func (d Line) Within(p r3.Vec) bool { return d.Distance(p) <= 0 }
func (Line) sealed() {}

// Distance returns the (non-negative) distance from p to the segment.
func (d Line) Distance(p r3.Vec) float64 {
	l2 := r3.Norm2(d.Dir)
	w := r3.Sub(p, d.P0)
	if l2 < epsilon {
		return r3.Norm(w)
	}
	t := math.Max(0, math.Min(1, r3.Dot(w, d.Dir)/l2))
	return r3.Norm(r3.Sub(w, r3.Scale(t, d.Dir)))
}

func (d Line) Generate(rng *rand.Rand) r3.Vec {
	return r3.Add(d.P0, r3.Scale(rng.Float64(), d.Dir))
}

// Plane is the half-space boundary through P with unit normal N.
// Points on the normal side are outside.
type Plane struct {
	P r3.Vec
	N r3.Vec
	D float64 // -N·P
}

// NewPlane creates a plane through p with the given normal (normalized).
func NewPlane(p, normal r3.Vec) Plane {
	n := unit(normal)
	return Plane{P: p, N: n, D: -r3.Dot(n, p)}
}

func (Plane) Kind() Kind { return KindPlane }
func (d Plane) Within(p r3.Vec) bool { return d.Distance(p) <= 0 }
func (d Plane) Distance(p r3.Vec) float64 { return r3.Dot(d.N, p) + d.D }
func (d Plane) PlaneDistance(p r3.Vec) float64 { return d.Distance(p) }
func (d Plane) Normal() r3.Vec { return d.N }
func (Plane) OnSurface(r3.Vec) bool { return true }
func (Plane) sealed() {}

// Generate returns the plane's anchor point; a plane has no finite area to
// sample from.
func (d Plane) Generate(_ *rand.Rand) r3.Vec { return d.P }

// Triangle is the flat triangle P0, P1, P2 with a right-handed normal.
type Triangle struct {
	P0, P1, P2 r3.Vec
	N          r3.Vec
	u, v       r3.Vec
}

// NewTriangle creates a triangle domain.
func NewTriangle(p0, p1, p2 r3.Vec) Triangle {
	u := r3.Sub(p1, p0)
	v := r3.Sub(p2, p0)
	return Triangle{P0: p0, P1: p1, P2: p2, N: unit(r3.Cross(u, v)), u: u, v: v}
}

func (Triangle) Kind() Kind { return KindTriangle }
func (d Triangle) Normal() r3.Vec { return d.N }
func (d Triangle) PlaneDistance(p r3.Vec) float64 { return r3.Dot(d.N, r3.Sub(p, d.P0)) }
func (d Triangle) Distance(p r3.Vec) float64 { return d.PlaneDistance(p) }
func (Triangle) sealed() {}

// Within reports whether p lies behind the triangle's plane and inside its
// footprint.
func (d Triangle) Within(p r3.Vec) bool {
	return d.PlaneDistance(p) <= 0 && d.OnSurface(p)
}

func (d Triangle) OnSurface(p r3.Vec) bool {
	s, t := solve2(r3.Sub(p, d.P0), d.u, d.v)
	return s >= 0 && t >= 0 && s+t <= 1
}

func (d Triangle) Generate(rng *rand.Rand) r3.Vec {
	s, t := rng.Float64(), rng.Float64()
	if s+t > 1 {
		s, t = 1-s, 1-t
	}
	return r3.Add(d.P0, r3.Add(r3.Scale(s, d.u), r3.Scale(t, d.v)))
}

// Rectangle is the parallelogram Origin + s*U + t*V for s, t in [0, 1].
type Rectangle struct {
	Origin r3.Vec
	U, V   r3.Vec
	N      r3.Vec
}

// NewRectangle creates a rectangle from a corner and two edge vectors.
func NewRectangle(origin, u, v r3.Vec) Rectangle {
	return Rectangle{Origin: origin, U: u, V: v, N: unit(r3.Cross(u, v))}
}

func (Rectangle) Kind() Kind { return KindRectangle }
func (d Rectangle) Normal() r3.Vec { return d.N }
func (d Rectangle) PlaneDistance(p r3.Vec) float64 { return r3.Dot(d.N, r3.Sub(p, d.Origin)) }
func (d Rectangle) Distance(p r3.Vec) float64 { return d.PlaneDistance(p) }
func (Rectangle) sealed() {}

func (d Rectangle) Within(p r3.Vec) bool {
	return d.PlaneDistance(p) <= 0 && d.OnSurface(p)
}

func (d Rectangle) OnSurface(p r3.Vec) bool {
	s, t := solve2(r3.Sub(p, d.Origin), d.U, d.V)
	return s >= 0 && s <= 1 && t >= 0 && t <= 1
}

func (d Rectangle) Generate(rng *rand.Rand) r3.Vec {
	return r3.Add(d.Origin, r3.Add(r3.Scale(rng.Float64(), d.U), r3.Scale(rng.Float64(), d.V)))
}

// Disc is a flat annulus around Center with inner and outer radius.
type Disc struct {
	Center       r3.Vec
	N            r3.Vec
	ROut, RIn    float64
	axisU, axisV r3.Vec
}

// NewDisc creates a disc (annulus when rIn > 0) facing along normal.
func NewDisc(center, normal r3.Vec, rOut, rIn float64) Disc {
	rOut, rIn = orderRadii(rOut, rIn)
	n := unit(normal)
	u, v := basis(n)
	return Disc{Center: center, N: n, ROut: rOut, RIn: rIn, axisU: u, axisV: v}
}

func (Disc) Kind() Kind { return KindDisc }
func (d Disc) Normal() r3.Vec { return d.N }
func (d Disc) PlaneDistance(p r3.Vec) float64 { return r3.Dot(d.N, r3.Sub(p, d.Center)) }
func (d Disc) Distance(p r3.Vec) float64 { return d.PlaneDistance(p) }
func (Disc) sealed() {}

func (d Disc) Within(p r3.Vec) bool {
	return d.PlaneDistance(p) <= 0 && d.OnSurface(p)
}

func (d Disc) OnSurface(p r3.Vec) bool {
	w := r3.Sub(p, d.Center)
	inPlane := r3.Sub(w, r3.Scale(r3.Dot(w, d.N), d.N))
	r := r3.Norm(inPlane)
	return r <= d.ROut && r >= d.RIn
}

func (d Disc) Generate(rng *rand.Rand) r3.Vec {
	theta := rng.Float64() * 2 * math.Pi
	// Area-uniform radius between the two rings
	r := math.Sqrt(d.RIn*d.RIn + rng.Float64()*(d.ROut*d.ROut-d.RIn*d.RIn))
	off := r3.Add(r3.Scale(r*math.Cos(theta), d.axisU), r3.Scale(r*math.Sin(theta), d.axisV))
	return r3.Add(d.Center, off)
}

// Box is an axis-aligned box.
type Box struct {
	Min, Max r3.Vec
}

// NewBox creates a box from any two opposite corners.
func NewBox(a, b r3.Vec) Box {
	return Box{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

func (Box) Kind() Kind { return KindBox }
func (Box) sealed() {}

func (d Box) Within(p r3.Vec) bool {
	return p.X >= d.Min.X && p.X <= d.Max.X &&
		p.Y >= d.Min.Y && p.Y <= d.Max.Y &&
		p.Z >= d.Min.Z && p.Z <= d.Max.Z
}

func (d Box) Distance(p r3.Vec) float64 {
	center := r3.Scale(0.5, r3.Add(d.Min, d.Max))
	half := r3.Scale(0.5, r3.Sub(d.Max, d.Min))
	q := r3.Vec{
		X: math.Abs(p.X-center.X) - half.X,
		Y: math.Abs(p.Y-center.Y) - half.Y,
		Z: math.Abs(p.Z-center.Z) - half.Z,
	}
	outside := r3.Norm(r3.Vec{X: math.Max(q.X, 0), Y: math.Max(q.Y, 0), Z: math.Max(q.Z, 0)})
	inside := math.Min(math.Max(q.X, math.Max(q.Y, q.Z)), 0)
	return outside + inside
}

func (d Box) Generate(rng *rand.Rand) r3.Vec {
	return r3.Vec{
		X: d.Min.X + rng.Float64()*(d.Max.X-d.Min.X),
		Y: d.Min.Y + rng.Float64()*(d.Max.Y-d.Min.Y),
		Z: d.Min.Z + rng.Float64()*(d.Max.Z-d.Min.Z),
	}
}

// Sphere is a solid sphere, or a thick shell when RIn > 0.
type Sphere struct {
	Center    r3.Vec
	ROut, RIn float64
}

// NewSphere creates a sphere or spherical shell.
func NewSphere(center r3.Vec, rOut, rIn float64) Sphere {
	rOut, rIn = orderRadii(rOut, rIn)
	return Sphere{Center: center, ROut: rOut, RIn: rIn}
}

func (Sphere) Kind() Kind { return KindSphere }
func (d Sphere) Within(p r3.Vec) bool { return d.Distance(p) <= 0 }
func (Sphere) sealed() {}

func (d Sphere) Distance(p r3.Vec) float64 {
	return shellDistance(r3.Norm(r3.Sub(p, d.Center)), d.ROut, d.RIn)
}

func (d Sphere) Generate(rng *rand.Rand) r3.Vec {
	// Volume-uniform radius between the two shells
	in3 := d.RIn * d.RIn * d.RIn
	out3 := d.ROut * d.ROut * d.ROut
	r := math.Cbrt(in3 + rng.Float64()*(out3-in3))
	return r3.Add(d.Center, r3.Scale(r, randomDirection(rng)))
}

// Cylinder is a solid cylinder (or tube when RIn > 0) from P0 along Axis.
type Cylinder struct {
	P0, Axis     r3.Vec
	ROut, RIn    float64
	axisU, axisV r3.Vec
}

// NewCylinder creates a cylinder between the centers of its two caps.
func NewCylinder(p0, p1 r3.Vec, rOut, rIn float64) Cylinder {
	rOut, rIn = orderRadii(rOut, rIn)
	axis := r3.Sub(p1, p0)
	u, v := basis(axis)
	return Cylinder{P0: p0, Axis: axis, ROut: rOut, RIn: rIn, axisU: u, axisV: v}
}

func (Cylinder) Kind() Kind { return KindCylinder }
func (d Cylinder) Within(p r3.Vec) bool { return d.Distance(p) <= 0 }
func (Cylinder) sealed() {}

// axial returns the fraction along the axis and the radial distance of p.
func (d Cylinder) axial(p r3.Vec) (t, r float64) {
	w := r3.Sub(p, d.P0)
	l2 := r3.Norm2(d.Axis)
	if l2 < epsilon {
		return 0, r3.Norm(w)
	}
	t = r3.Dot(w, d.Axis) / l2
	return t, r3.Norm(r3.Sub(w, r3.Scale(t, d.Axis)))
}

func (d Cylinder) Distance(p r3.Vec) float64 {
	t, r := d.axial(p)
	length := r3.Norm(d.Axis)
	axialDist := math.Max(-t, t-1) * length
	return combine(axialDist, shellDistance(r, d.ROut, d.RIn))
}

func (d Cylinder) Generate(rng *rand.Rand) r3.Vec {
	t := rng.Float64()
	theta := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(d.RIn*d.RIn + rng.Float64()*(d.ROut*d.ROut-d.RIn*d.RIn))
	off := r3.Add(r3.Scale(r*math.Cos(theta), d.axisU), r3.Scale(r*math.Sin(theta), d.axisV))
	return r3.Add(r3.Add(d.P0, r3.Scale(t, d.Axis)), off)
}

// Cone has its apex at Apex and its base circle at Apex+Axis; radii grow
// linearly from zero at the apex.
type Cone struct {
	Apex, Axis   r3.Vec
	ROut, RIn    float64
	axisU, axisV r3.Vec
}

// NewCone creates a cone (or hollow cone when rIn > 0).
func NewCone(apex, base r3.Vec, rOut, rIn float64) Cone {
	rOut, rIn = orderRadii(rOut, rIn)
	axis := r3.Sub(base, apex)
	u, v := basis(axis)
	return Cone{Apex: apex, Axis: axis, ROut: rOut, RIn: rIn, axisU: u, axisV: v}
}

func (Cone) Kind() Kind { return KindCone }
func (d Cone) Within(p r3.Vec) bool { return d.Distance(p) <= 0 }
func (Cone) sealed() {}

func (d Cone) Distance(p r3.Vec) float64 {
	w := r3.Sub(p, d.Apex)
	l2 := r3.Norm2(d.Axis)
	if l2 < epsilon {
		return r3.Norm(w)
	}
	t := r3.Dot(w, d.Axis) / l2
	r := r3.Norm(r3.Sub(w, r3.Scale(t, d.Axis)))
	axialDist := math.Max(-t, t-1) * math.Sqrt(l2)
	tc := math.Max(0, math.Min(1, t))
	return combine(axialDist, shellDistance(r, d.ROut*tc, d.RIn*tc))
}

func (d Cone) Generate(rng *rand.Rand) r3.Vec {
	// Volume grows with t², so invert the CDF t³
	t := math.Cbrt(rng.Float64())
	theta := rng.Float64() * 2 * math.Pi
	rOut, rIn := d.ROut*t, d.RIn*t
	r := math.Sqrt(rIn*rIn + rng.Float64()*(rOut*rOut-rIn*rIn))
	off := r3.Add(r3.Scale(r*math.Cos(theta), d.axisU), r3.Scale(r*math.Sin(theta), d.axisV))
	return r3.Add(r3.Add(d.Apex, r3.Scale(t, d.Axis)), off)
}

// Blob is a Gaussian cloud around Center. A point is within the blob when it
// lies inside one standard deviation.
type Blob struct {
	Center r3.Vec
	StdDev float64
}

// NewBlob creates a Gaussian blob domain.
func NewBlob(center r3.Vec, stddev float64) Blob {
	return Blob{Center: center, StdDev: math.Abs(stddev)}
}

func (Blob) Kind() Kind { return KindBlob }
func (d Blob) Within(p r3.Vec) bool { return d.Distance(p) <= 0 }
func (Blob) sealed() {}

func (d Blob) Distance(p r3.Vec) float64 {
	return r3.Norm(r3.Sub(p, d.Center)) - d.StdDev
}

func (d Blob) Generate(rng *rand.Rand) r3.Vec {
	return r3.Vec{
		X: d.Center.X + rng.NormFloat64()*d.StdDev,
		Y: d.Center.Y + rng.NormFloat64()*d.StdDev,
		Z: d.Center.Z + rng.NormFloat64()*d.StdDev,
	}
}
