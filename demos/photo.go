package demos

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/spray/action"
	"github.com/pthm-cable/spray/components"
	"github.com/pthm-cable/spray/domain"
	"github.com/pthm-cable/spray/engine"
)

// Image is a decoded picture as RGB triples in [0, 1], row-major, top row
// first.
type Image struct {
	W, H int
	RGB  []float64
}

// At returns the color of pixel (x, y).
func (im Image) At(x, y int) components.Color {
	i := 3 * (y*im.W + x)
	return components.Color{R: im.RGB[i], G: im.RGB[i+1], B: im.RGB[i+2], A: 1}
}

// Gradient builds a w×h test picture: a hue sweep across, darkening down,
// with a washed-out checkerboard.
func Gradient(w, h int) Image {
	im := Image{W: w, H: h, RGB: make([]float64, 3*w*h)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sat := 1.0
			if (x/8+y/8)%2 == 0 {
				sat = 0.6
			}
			c := colorful.Hsv(
				300*float64(x)/float64(max(w-1, 1)),
				sat,
				1-0.6*float64(y)/float64(max(h-1, 1)),
			)
			i := 3 * (y*w + x)
			im.RGB[i], im.RGB[i+1], im.RGB[i+2] = c.R, c.G, c.B
		}
	}
	return im
}

// PhotoPixel is the world spacing between photo particles.
const PhotoPixel = 0.1

// PhotoMelt stands a picture up as one particle per pixel. With gravity on
// it melts into a puddle; with gravity off it pulls itself back together.
func PhotoMelt(im Image) Demo {
	floor := domain.NewRectangle(r3.Vec{X: -10, Y: -10}, r3.Vec{X: 20}, r3.Vec{Y: 20})

	return Demo{
		ID:             "photo",
		Name:           "Photo Melt",
		Description:    "A picture that melts and reassembles",
		Category:       "image",
		Capacity:       im.W * im.H,
		CameraDistance: 10,
		CameraHeight:   3,
		Setup: func(ctx *engine.Context) error {
			if len(im.RGB) != 3*im.W*im.H {
				return fmt.Errorf("photo %dx%d has %d channels", im.W, im.H, len(im.RGB))
			}
			ctx.SetTemplate(action.Template{Alpha: 1, Size: domain.NewPoint(r3.Vec{X: 1.5, Y: 1.5, Z: 1.5})})
			err := ctx.Run(func(ctx *engine.Context) error {
				for y := 0; y < im.H; y++ {
					for x := 0; x < im.W; x++ {
						pos := r3.Vec{
							X: (float64(x) - float64(im.W)/2) * PhotoPixel,
							Z: float64(im.H-1-y)*PhotoPixel + 1,
						}
						if err := ctx.Vertex(pos, im.At(x, y)); err != nil {
							return err
						}
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			return ctx.Do(action.CopyVertexB{CopyPos: true})
		},
		Body: func(ctx *engine.Context, s State) error {
			if !s.Toggles.Gravity {
				return ctx.Do(action.Restore{TimeLeft: 30}, action.Move{})
			}
			acts := []action.Action{
				action.Gravity{Dir: r3.Vec{Z: -0.003}},
				action.RandomAccel{Domain: domain.NewBlob(r3.Vec{}, 0.0005)},
			}
			if s.Toggles.Swirl {
				acts = append(acts, action.Vortex{Axis: up, Magnitude: 0.002, Epsilon: 0.5})
			}
			if s.Toggles.Damping {
				acts = append(acts, action.Damping{Damping: r3.Vec{X: 0.97, Y: 0.97, Z: 0.99}})
			}
			if s.Toggles.Bounce {
				acts = append(acts, action.Bounce{Friction: 0.6, Resilience: 0.1, CutoffSq: 1e-5, Domain: floor})
			}
			acts = append(acts, action.Move{})
			return ctx.Do(acts...)
		},
	}
}
