// Package render rasterizes planar vector fields for inspection: hue shows
// the flow direction and brightness shows the speed.
package render

import (
	"context"
	"image"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/grabtool/colors"
	"github.com/echoflaresat/grabtool/field"
	"github.com/echoflaresat/grabtool/vectors"
)

// Sampler is a planar velocity field.
type Sampler interface {
	Velocity(position vectors.Vec2) vectors.Vec2
}

// Ring is a circle drawn over the field.
type Ring struct {
	Center vectors.Vec2
	Radius float64
	Color  colors.Color4
}

type Options struct {
	Size          int
	Supersampling int
	// MaxSpeed is the speed drawn at full brightness. Zero means 1.
	MaxSpeed float64
	Rings    []Ring
	// RingWidth is the ring line width in plane units.
	RingWidth float64
	// Workers bounds the number of rows rendered at once, 0 for GOMAXPROCS.
	Workers int
}

// Smoothstep performs a Hermite interpolation between 0 and 1 across [edge0, edge1].
// Returns 0 if x < edge0, 1 if x > edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0.0
		}
		return 1.0
	}
	t := Clip((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3.0 - 2.0*t)
}

// Clip clamps x into the inclusive range [min, max].
func Clip(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// GaussianFade returns a smooth Gaussian falloff centered at `center`
// with standard deviation `width`.
func GaussianFade(x, center, width float64) float64 {
	return math.Exp(-((x - center) * (x - center)) / (2.0 * width * width))
}

// GenerateSupersamplingOffsets returns n×n offsets in [-0.5, +0.5] for
// supersampling, as pairs (dx, dy) with pixel-center spacing.
func GenerateSupersamplingOffsets(n int) [][2]float64 {
	if n <= 0 {
		return nil
	}
	step := 1.0 / float64(n)
	out := make([][2]float64, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dx := (float64(i)+0.5)*step - 0.5
			dy := (float64(j)+0.5)*step - 0.5
			out = append(out, [2]float64{dx, dy})
		}
	}
	return out
}

// ShadeVelocity colors a velocity: hue is the direction angle (0° along +X,
// counter-clockwise), value is the speed relative to maxSpeed. A zero
// velocity is black.
func ShadeVelocity(v vectors.Vec2, maxSpeed float64) colors.Color4 {
	if v.IsZero() || v.HasNaN() {
		return colors.Black()
	}
	if maxSpeed <= 0 {
		maxSpeed = 1
	}
	hue := math.Atan2(v.Y, v.X) * 180.0 / math.Pi
	return colors.FromHSV(hue, 1, Clip(v.Norm()/maxSpeed, 0, 1))
}

// FieldRings marks where f's rigid core ends and where it reaches rest.
func FieldRings(f field.Field2D) []Ring {
	p := f.Params()
	return []Ring{
		{Center: p.Center, Radius: p.InnerRadius, Color: colors.White()},
		{Center: p.Center, Radius: p.OuterRadius, Color: colors.New(0.5, 0.5, 0.5, 1)},
	}
}

func shadePoint(f Sampler, p vectors.Vec2, opts *Options) colors.Color4 {
	c := ShadeVelocity(f.Velocity(p), opts.MaxSpeed)
	if opts.RingWidth <= 0 {
		return c
	}
	for _, r := range opts.Rings {
		d := p.Sub(r.Center).Norm() - r.Radius
		c = c.Mix(r.Color, GaussianFade(d, 0, opts.RingWidth/2))
	}
	return c
}

// RenderField rasterizes f through view into a Size x Size image. Rows are
// shaded concurrently; each row is written by exactly one goroutine.
func RenderField(ctx context.Context, f Sampler, view View, opts Options) (*image.NRGBA, error) {
	W, H := opts.Size, opts.Size
	offsets := GenerateSupersamplingOffsets(max(opts.Supersampling, 1))
	N := float64(len(offsets))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	img := image.NewNRGBA(image.Rect(0, 0, W, H))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for y := 0; y < H; y++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for x := 0; x < W; x++ {
				accum := colors.Color4{}
				for _, off := range offsets {
					p := view.ComputePoint(float64(x)+off[0], float64(y)+off[1], W, H)
					accum = accum.Add(shadePoint(f, p, &opts))
				}
				img.SetNRGBA(x, y, accum.Scale(1.0/N).Clamp01().ToNRGBA())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slog.Debug("field rendered", "size", opts.Size, "supersampling", len(offsets))
	return img, nil
}
