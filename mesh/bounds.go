package mesh

import "github.com/echoflaresat/grabtool/vectors"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max vectors.Vec3
	Empty    bool
}

// BoundsOf returns the smallest box containing points.
func BoundsOf(points []vectors.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{Empty: true}
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

func (b Bounds) Center() vectors.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

func (b Bounds) Size() vectors.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside or on the box.
func (b Bounds) Contains(p vectors.Vec3) bool {
	if b.Empty {
		return false
	}
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
