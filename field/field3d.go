package field

import (
	"github.com/echoflaresat/grabtool/bernstein"
	"github.com/echoflaresat/grabtool/vectors"
)

// Field3D is an immutable snapshot of the field for one step. The
// orthonormal frame (u, w) around the translation direction is computed once
// here instead of per evaluated point.
type Field3D struct {
	params Params
	dir    vectors.Vec3
	u, w   vectors.Vec3
}

// New validates p and builds the field for p.Center and p.DesiredTranslation.
func New(p Params) (Field3D, error) {
	if err := p.Validate(); err != nil {
		return Field3D{}, err
	}
	f := Field3D{params: p}
	if p.DesiredTranslation.IsZero() {
		return f, nil
	}

	f.dir = p.DesiredTranslation.Normalize()
	u, err := vectors.OrthogonalTo(f.dir)
	if err != nil {
		return Field3D{}, err
	}
	f.u = u
	f.w = f.dir.Cross(u).Normalize()
	return f, nil
}

// Step returns a copy of f anchored at center and moving by translation.
func (f Field3D) Step(center, translation vectors.Vec3) (Field3D, error) {
	p := f.params
	p.Center = center
	p.DesiredTranslation = translation
	return New(p)
}

func (f Field3D) Params() Params { return f.params }

// StepLength is |DesiredTranslation|.
func (f Field3D) StepLength() float64 { return f.params.StepLength() }

// Velocity evaluates the field at position.
//
// Inside the inner radius every point moves along the translation direction
// at unit speed. Past the outer radius the field is exactly zero. In between,
// the velocity is grad((1-B)e) x grad((1-B)f), where e and f are the
// coordinates of position along u and w, so the field stays divergence-free.
func (f Field3D) Velocity(position vectors.Vec3) vectors.Vec3 {
	if f.params.DesiredTranslation.IsZero() {
		return vectors.Zero()
	}

	rel := position.Sub(f.params.Center)
	dist := rel.Norm()
	r := f.params.RadiusMultiplier * dist

	ri, ro := f.params.AdjustedInner(), f.params.AdjustedOuter()
	if r >= ro {
		return vectors.Zero()
	}
	if r < ri {
		return f.u.Cross(f.w)
	}

	span := ro - ri
	if span <= 0 {
		return vectors.Zero()
	}
	ratio := (r - ri) / span
	b := bernstein.Blend(ratio)

	// grad B = dB/dratio * dratio/dr * dr/dx, dr/dx = k (x-C)/|x-C|.
	var gradB vectors.Vec3
	if dist > 0 {
		dBdr := bernstein.BlendDerivative(ratio) / span
		gradB = rel.Scale(dBdr * f.params.RadiusMultiplier / dist)
	}

	e := f.u.Dot(rel)
	fw := f.w.Dot(rel)

	gradP := f.u.Scale(1 - b).Sub(gradB.Scale(e))
	gradQ := f.w.Scale(1 - b).Sub(gradB.Scale(fw))
	if gradP.HasNaN() || gradQ.HasNaN() {
		return vectors.Zero()
	}
	return gradP.Cross(gradQ)
}

// Region classifies where position falls relative to the field's radii.
type Region int

const (
	Outside Region = iota
	Blend
	Core
)

func (r Region) String() string {
	switch r {
	case Core:
		return "core"
	case Blend:
		return "blend"
	default:
		return "outside"
	}
}

// RegionOf reports which part of the field governs position.
func (f Field3D) RegionOf(position vectors.Vec3) Region {
	r := f.params.RadiusMultiplier * vectors.Distance(position, f.params.Center)
	switch {
	case r >= f.params.AdjustedOuter():
		return Outside
	case r < f.params.AdjustedInner():
		return Core
	default:
		return Blend
	}
}
