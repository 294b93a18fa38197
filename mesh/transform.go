package mesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/echoflaresat/grabtool/vectors"
)

// Transform places a mesh in the world: scale, then rotate, then translate.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Identity returns a transform that leaves points unchanged.
func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// NewTransform builds a transform from a position, a rotation of angleDeg
// degrees about axis and a uniform scale.
func NewTransform(position vectors.Vec3, axis vectors.Vec3, angleDeg, scale float64) Transform {
	t := Identity()
	t.Position = toMgl(position)
	if !axis.IsZero() && angleDeg != 0 {
		t.Rotation = mgl64.QuatRotate(mgl64.DegToRad(angleDeg), toMgl(axis.Normalize()))
	}
	t.Scale = mgl64.Vec3{scale, scale, scale}
	return t
}

// Matrix returns the local-to-world matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position[0], t.Position[1], t.Position[2]).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]))
}

// TransformPoint maps a local-space point to world space.
func (t Transform) TransformPoint(p vectors.Vec3) vectors.Vec3 {
	v := toMgl(p)
	v = mgl64.Vec3{v[0] * t.Scale[0], v[1] * t.Scale[1], v[2] * t.Scale[2]}
	return fromMgl(t.Rotation.Rotate(v).Add(t.Position))
}

// InverseTransformPoint maps a world-space point to local space.
func (t Transform) InverseTransformPoint(p vectors.Vec3) vectors.Vec3 {
	return t.InverseTransformVector(p.Sub(fromMgl(t.Position)))
}

// InverseTransformVector maps a world-space direction to local space. It
// ignores the position but applies the inverse rotation and scale, so a
// world-space drag delta becomes the matching local vertex offset.
func (t Transform) InverseTransformVector(v vectors.Vec3) vectors.Vec3 {
	r := t.Rotation.Inverse().Rotate(toMgl(v))
	return vectors.Vec3{X: safeDiv(r[0], t.Scale[0]), Y: safeDiv(r[1], t.Scale[1]), Z: safeDiv(r[2], t.Scale[2])}
}

// TransformPoints maps every local point to world space.
func (t Transform) TransformPoints(points []vectors.Vec3) []vectors.Vec3 {
	out := make([]vectors.Vec3, len(points))
	for i, p := range points {
		out[i] = t.TransformPoint(p)
	}
	return out
}

// InverseTransformPoints maps every world point to local space.
func (t Transform) InverseTransformPoints(points []vectors.Vec3) []vectors.Vec3 {
	out := make([]vectors.Vec3, len(points))
	for i, p := range points {
		out[i] = t.InverseTransformPoint(p)
	}
	return out
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func toMgl(v vectors.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) vectors.Vec3 {
	return vectors.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
