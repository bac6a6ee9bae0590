// Package domain provides the geometric regions used to seed particles and to
// test them spatially.
//
// Every domain is an immutable value built by a named factory. Distances are
// signed: negative means inside a volume or behind a surface (opposite the
// normal). Surface normals follow the right-hand rule over vertex order, so
// reversing the order of a triangle's vertices flips which side is outside.
package domain

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Kind identifies a domain shape.
type Kind uint8

const (
	KindPoint Kind = iota
	KindLine
	KindPlane
	KindBox
	KindSphere
	KindCylinder
	KindCone
	KindDisc
	KindTriangle
	KindRectangle
	KindBlob
)

var kindNames = [...]string{
	KindPoint:     "point",
	KindLine:      "line",
	KindPlane:     "plane",
	KindBox:       "box",
	KindSphere:    "sphere",
	KindCylinder:  "cylinder",
	KindCone:      "cone",
	KindDisc:      "disc",
	KindTriangle:  "triangle",
	KindRectangle: "rectangle",
	KindBlob:      "blob",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Domain is a parametrized geometric region.
// The set of implementations is closed; use the New* factories.
type Domain interface {
	Kind() Kind
	// Within reports whether p lies inside the region.
	Within(p r3.Vec) bool
	// Distance returns the signed distance from p to the region boundary.
	Distance(p r3.Vec) float64
	// Generate returns a random point of the region.
	Generate(rng *rand.Rand) r3.Vec

	sealed()
}

// Surface is implemented by the planar domains (plane, triangle, rectangle,
// disc). Bounce and Avoid work against surfaces.
type Surface interface {
	Domain
	// Normal returns the unit normal of the supporting plane.
	Normal() r3.Vec
	// PlaneDistance returns the signed distance from p to the supporting plane.
	PlaneDistance(p r3.Vec) float64
	// OnSurface reports whether p, projected onto the supporting plane, falls
	// inside the surface footprint.
	OnSurface(p r3.Vec) bool
}

const epsilon = 1e-12

// unit normalizes v, returning the zero vector for degenerate input.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// basis returns two unit vectors perpendicular to n and to each other.
func basis(n r3.Vec) (u, v r3.Vec) {
	n = unit(n)
	helper := r3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		helper = r3.Vec{Y: 1}
	}
	u = unit(r3.Cross(n, helper))
	v = r3.Cross(n, u)
	return u, v
}

// randomDirection returns a uniformly distributed unit vector.
func randomDirection(rng *rand.Rand) r3.Vec {
	for {
		d := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if n := r3.Norm(d); n > epsilon {
			return r3.Scale(1/n, d)
		}
	}
}

// solve2 expresses w in the (non-orthogonal) basis a, b of a plane,
// returning the coefficients s, t with w ≈ s*a + t*b.
func solve2(w, a, b r3.Vec) (s, t float64) {
	aa := r3.Dot(a, a)
	ab := r3.Dot(a, b)
	bb := r3.Dot(b, b)
	det := aa*bb - ab*ab
	if math.Abs(det) < epsilon {
		return math.Inf(1), math.Inf(1)
	}
	wa := r3.Dot(w, a)
	wb := r3.Dot(w, b)
	s = (bb*wa - ab*wb) / det
	t = (aa*wb - ab*wa) / det
	return s, t
}

// shellDistance is the signed distance to a radial shell [rIn, rOut].
func shellDistance(r, rOut, rIn float64) float64 {
	if rIn <= 0 {
		return r - rOut
	}
	return math.Max(r-rOut, rIn-r)
}

// combine merges two signed slab distances into one (box-style).
func combine(a, b float64) float64 {
	if a <= 0 && b <= 0 {
		return math.Max(a, b)
	}
	a = math.Max(a, 0)
	b = math.Max(b, 0)
	return math.Hypot(a, b)
}

func orderRadii(rOut, rIn float64) (float64, float64) {
	rOut, rIn = math.Abs(rOut), math.Abs(rIn)
	if rIn > rOut {
		rOut, rIn = rIn, rOut
	}
	return rOut, rIn
}
