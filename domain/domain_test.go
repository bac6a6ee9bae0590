package domain

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestPlaneSignConvention(t *testing.T) {
	floor := NewPlane(r3.Vec{}, r3.Vec{Z: 1})

	if d := floor.Distance(r3.Vec{Z: 2}); math.Abs(d-2) > 1e-9 {
		t.Errorf("expected distance 2 above floor, got %f", d)
	}
	if d := floor.Distance(r3.Vec{Z: -0.5}); d >= 0 {
		t.Errorf("expected negative distance below floor, got %f", d)
	}
	if floor.Within(r3.Vec{Z: 1}) {
		t.Error("point above the floor should be outside")
	}
	if !floor.Within(r3.Vec{Z: -1}) {
		t.Error("point below the floor should be inside")
	}
}

func TestTriangleWindingFlipsNormal(t *testing.T) {
	a, b, c := r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}
	ccw := NewTriangle(a, b, c)
	cw := NewTriangle(a, c, b)

	if math.Abs(ccw.Normal().Z-1) > 1e-9 {
		t.Errorf("expected +Z normal, got %v", ccw.Normal())
	}
	if math.Abs(cw.Normal().Z+1) > 1e-9 {
		t.Errorf("expected -Z normal, got %v", cw.Normal())
	}

	p := r3.Vec{X: 0.2, Y: 0.2, Z: 0.5}
	if ccw.Distance(p) <= 0 || cw.Distance(p) >= 0 {
		t.Errorf("reversing winding should flip side: ccw=%f cw=%f", ccw.Distance(p), cw.Distance(p))
	}
}

func TestSurfaceFootprint(t *testing.T) {
	tests := []struct {
		name string
		s    Surface
		in   r3.Vec
		out  r3.Vec
	}{
		{
			name: "triangle",
			s:    NewTriangle(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1}),
			in:   r3.Vec{X: 0.25, Y: 0.25, Z: 3},
			out:  r3.Vec{X: 0.75, Y: 0.75},
		},
		{
			name: "rectangle",
			s:    NewRectangle(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{Y: 1}),
			in:   r3.Vec{X: 1.5, Y: 0.5, Z: -1},
			out:  r3.Vec{X: 2.5, Y: 0.5},
		},
		{
			name: "annulus",
			s:    NewDisc(r3.Vec{}, r3.Vec{Z: 1}, 2, 1),
			in:   r3.Vec{X: 1.5},
			out:  r3.Vec{X: 0.5},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.s.OnSurface(tc.in) {
				t.Errorf("expected %v on surface", tc.in)
			}
			if tc.s.OnSurface(tc.out) {
				t.Errorf("expected %v off surface", tc.out)
			}
		})
	}
}

func TestGenerateStaysWithin(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	volumes := []Domain{
		NewBox(r3.Vec{X: -1, Y: -2, Z: -3}, r3.Vec{X: 1, Y: 2, Z: 3}),
		NewSphere(r3.Vec{X: 5}, 2, 0),
		NewSphere(r3.Vec{}, 3, 2),
		NewCylinder(r3.Vec{}, r3.Vec{Z: 4}, 1, 0.5),
		NewCone(r3.Vec{}, r3.Vec{Y: 3}, 1, 0),
		NewLine(r3.Vec{}, r3.Vec{X: 1, Y: 1}),
		NewPoint(r3.Vec{X: 1, Y: 2, Z: 3}),
	}

	for _, d := range volumes {
		t.Run(d.Kind().String(), func(t *testing.T) {
			for i := 0; i < 500; i++ {
				p := d.Generate(rng)
				if dist := d.Distance(p); dist > 1e-9 {
					t.Fatalf("generated %v outside %s (distance %g)", p, d.Kind(), dist)
				}
			}
		})
	}
}

func TestGenerateOnSurface(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	surfaces := []Surface{
		NewTriangle(r3.Vec{}, r3.Vec{X: 2}, r3.Vec{Z: 2}),
		NewRectangle(r3.Vec{Y: 1}, r3.Vec{X: 1}, r3.Vec{Z: 1}),
		NewDisc(r3.Vec{Z: 4}, r3.Vec{X: 1, Y: 1}, 3, 1),
	}

	for _, s := range surfaces {
		t.Run(s.Kind().String(), func(t *testing.T) {
			for i := 0; i < 500; i++ {
				p := s.Generate(rng)
				if math.Abs(s.PlaneDistance(p)) > 1e-9 {
					t.Fatalf("generated %v off plane", p)
				}
				if !s.OnSurface(p) {
					t.Fatalf("generated %v outside footprint", p)
				}
			}
		})
	}
}

func TestSphereShellDistance(t *testing.T) {
	shell := NewSphere(r3.Vec{}, 1, 2) // radii are reordered

	if shell.ROut != 2 || shell.RIn != 1 {
		t.Fatalf("expected radii (2, 1), got (%f, %f)", shell.ROut, shell.RIn)
	}
	if shell.Within(r3.Vec{X: 0.5}) {
		t.Error("hollow centre should be outside the shell")
	}
	if !shell.Within(r3.Vec{Y: 1.5}) {
		t.Error("point between radii should be inside")
	}
	if d := shell.Distance(r3.Vec{Z: 3}); math.Abs(d-1) > 1e-9 {
		t.Errorf("expected distance 1 outside shell, got %f", d)
	}
}

func TestBoxDistance(t *testing.T) {
	box := NewBox(r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: -1, Y: -1, Z: -1})

	if d := box.Distance(r3.Vec{}); math.Abs(d+1) > 1e-9 {
		t.Errorf("expected -1 at centre, got %f", d)
	}
	if d := box.Distance(r3.Vec{X: 4}); math.Abs(d-3) > 1e-9 {
		t.Errorf("expected 3 outside face, got %f", d)
	}
}

func TestBlobSamplesSpread(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	blob := NewBlob(r3.Vec{X: 10}, 0.5)

	var sum r3.Vec
	const n = 4000
	for i := 0; i < n; i++ {
		sum = r3.Add(sum, blob.Generate(rng))
	}
	mean := r3.Scale(1.0/n, sum)
	if r3.Norm(r3.Sub(mean, blob.Center)) > 0.05 {
		t.Errorf("blob sample mean %v too far from centre", mean)
	}
}
