package field

import (
	"github.com/echoflaresat/grabtool/bernstein"
	"github.com/echoflaresat/grabtool/vectors"
)

// Params2D mirrors Params in the plane.
type Params2D struct {
	InnerRadius      float64
	OuterRadius      float64
	RadiusMultiplier float64

	Center             vectors.Vec2
	DesiredTranslation vectors.Vec2
}

func (p *Params2D) Validate() error {
	p3 := Params{InnerRadius: p.InnerRadius, OuterRadius: p.OuterRadius, RadiusMultiplier: p.RadiusMultiplier}
	if err := p3.Validate(); err != nil {
		return err
	}
	p.RadiusMultiplier = p3.RadiusMultiplier
	return nil
}

// Field2D is the planar analogue of Field3D, used for visualization. Its
// velocity is the skew gradient (-dP/dy, dP/dx) of the stream function
// P = (1-B) E, with E the signed distance across the translation direction.
type Field2D struct {
	params Params2D
	dir    vectors.Vec2
}

func New2D(p Params2D) (Field2D, error) {
	if err := p.Validate(); err != nil {
		return Field2D{}, err
	}
	return Field2D{params: p, dir: p.DesiredTranslation.Normalize()}, nil
}

func (f Field2D) Params() Params2D { return f.params }

// e is the stream function of a uniform flow along dir.
func (f Field2D) e(rel vectors.Vec2) float64 {
	return f.dir.Y*rel.X - f.dir.X*rel.Y
}

func (f Field2D) blend(dist float64) (b, dBdDist float64) {
	ri, ro := f.params.InnerRadius*f.params.RadiusMultiplier, f.params.OuterRadius*f.params.RadiusMultiplier
	span := ro - ri
	ratio := (f.params.RadiusMultiplier*dist - ri) / span
	return bernstein.Blend(ratio), bernstein.BlendDerivative(ratio) * f.params.RadiusMultiplier / span
}

// StreamFunction returns P at position. Level sets of P are the streamlines.
func (f Field2D) StreamFunction(position vectors.Vec2) float64 {
	if f.params.DesiredTranslation.IsZero() {
		return 0
	}
	rel := position.Sub(f.params.Center)
	dist := rel.Norm()
	r := f.params.RadiusMultiplier * dist
	switch {
	case r >= f.params.OuterRadius*f.params.RadiusMultiplier:
		return 0
	case r < f.params.InnerRadius*f.params.RadiusMultiplier:
		return f.e(rel)
	}
	b, _ := f.blend(dist)
	return (1 - b) * f.e(rel)
}

// Velocity evaluates the planar field at position.
func (f Field2D) Velocity(position vectors.Vec2) vectors.Vec2 {
	if f.params.DesiredTranslation.IsZero() {
		return vectors.Vec2{}
	}

	rel := position.Sub(f.params.Center)
	dist := rel.Norm()
	r := f.params.RadiusMultiplier * dist

	if r >= f.params.OuterRadius*f.params.RadiusMultiplier {
		return vectors.Vec2{}
	}
	if r < f.params.InnerRadius*f.params.RadiusMultiplier {
		// (-dE/dy, dE/dx)
		return f.dir
	}

	b, dBdDist := f.blend(dist)
	var gx, gy float64
	if dist > 0 {
		gx = dBdDist * rel.X / dist
		gy = dBdDist * rel.Y / dist
	}
	e := f.e(rel)
	dPdx := (1-b)*f.dir.Y - gx*e
	dPdy := -(1-b)*f.dir.X - gy*e

	v := vectors.Vec2{X: -dPdy, Y: dPdx}
	if v.HasNaN() {
		return vectors.Vec2{}
	}
	return v
}
