package render

import (
	"math"

	"github.com/echoflaresat/grabtool/vectors"
)

// View maps image pixels onto a square window of the field plane.
type View struct {
	Center     vectors.Vec2
	HalfExtent float64
	Right      vectors.Vec2
	Up         vectors.Vec2
}

// NewView centres a window of half-width halfExtent on center, rotated
// counter-clockwise by rotationDeg.
func NewView(center vectors.Vec2, halfExtent, rotationDeg float64) View {
	theta := rotationDeg * math.Pi / 180.0
	c, s := math.Cos(theta), math.Sin(theta)
	return View{
		Center:     center,
		HalfExtent: halfExtent,
		Right:      vectors.Vec2{X: c, Y: s},
		Up:         vectors.Vec2{X: -s, Y: c},
	}
}

// ComputePoint returns the plane position under pixel (i,j) of a
// width x height image. i,j can be fractional (for supersampling).
func (v View) ComputePoint(i, j float64, width, height int) vectors.Vec2 {
	// NDC in [-1, +1] (centered), flip Y to make +up in screen space.
	xNDC := ndc(i, width)
	yNDC := -ndc(j, height)

	return v.Center.
		Add(v.Right.Scale(xNDC * v.HalfExtent)).
		Add(v.Up.Scale(yNDC * v.HalfExtent))
}

func ndc(i float64, n int) float64 {
	half := (float64(n) - 1) / 2.0
	if half <= 0 {
		return 0
	}
	return (i - half) / half
}
