// Package mesh holds triangle mesh geometry, its object transform, and the
// sink that commits deformed vertex arrays back into a mesh.
package mesh

import (
	"errors"
	"fmt"
	"slices"

	"github.com/echoflaresat/grabtool/vectors"
)

var (
	// ErrVertexCount is returned when a vertex array would change the topology.
	ErrVertexCount = errors.New("mesh: vertex count mismatch")
	// ErrTriangles is returned for malformed triangle index lists.
	ErrTriangles = errors.New("mesh: invalid triangle indices")
)

// Mesh is an indexed triangle mesh in local space. Normals and Bounds are
// derived from Vertices and refreshed by RecalculateNormals/RecalculateBounds.
type Mesh struct {
	Vertices  []vectors.Vec3
	Triangles []int
	Normals   []vectors.Vec3
	Bounds    Bounds
}

// New builds a mesh and computes its normals and bounds.
func New(vertices []vectors.Vec3, triangles []int) (*Mesh, error) {
	if len(triangles)%3 != 0 {
		return nil, fmt.Errorf("%w: %d indices is not a multiple of 3", ErrTriangles, len(triangles))
	}
	for _, idx := range triangles {
		if idx < 0 || idx >= len(vertices) {
			return nil, fmt.Errorf("%w: index %d out of range [0, %d)", ErrTriangles, idx, len(vertices))
		}
	}
	m := &Mesh{
		Vertices:  slices.Clone(vertices),
		Triangles: slices.Clone(triangles),
	}
	m.RecalculateBounds()
	m.RecalculateNormals()
	return m, nil
}

// Clone returns a deep copy of m sharing no backing arrays.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices:  slices.Clone(m.Vertices),
		Triangles: slices.Clone(m.Triangles),
		Normals:   slices.Clone(m.Normals),
		Bounds:    m.Bounds,
	}
}

// SetVertices copies vertices into m. The count must not change.
func (m *Mesh) SetVertices(vertices []vectors.Vec3) error {
	if len(vertices) != len(m.Vertices) {
		return fmt.Errorf("%w: have %d, got %d", ErrVertexCount, len(m.Vertices), len(vertices))
	}
	copy(m.Vertices, vertices)
	return nil
}

func (m *Mesh) TriangleCount() int {
	return len(m.Triangles) / 3
}

// Triangle returns the three corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c vectors.Vec3) {
	return m.Vertices[m.Triangles[3*i]], m.Vertices[m.Triangles[3*i+1]], m.Vertices[m.Triangles[3*i+2]]
}

// RecalculateNormals sets each vertex normal to the normalized, area-weighted
// sum of the face normals around it. Isolated vertices get a zero normal.
func (m *Mesh) RecalculateNormals() {
	if len(m.Normals) != len(m.Vertices) {
		m.Normals = make([]vectors.Vec3, len(m.Vertices))
	} else {
		clear(m.Normals)
	}

	for t := 0; t < len(m.Triangles); t += 3 {
		i0, i1, i2 := m.Triangles[t], m.Triangles[t+1], m.Triangles[t+2]
		a, b, c := m.Vertices[i0], m.Vertices[i1], m.Vertices[i2]
		// |n| is twice the triangle area.
		n := b.Sub(a).Cross(c.Sub(a))
		m.Normals[i0] = m.Normals[i0].Add(n)
		m.Normals[i1] = m.Normals[i1].Add(n)
		m.Normals[i2] = m.Normals[i2].Add(n)
	}
	for i, n := range m.Normals {
		m.Normals[i] = n.Normalize()
	}
}

func (m *Mesh) RecalculateBounds() {
	m.Bounds = BoundsOf(m.Vertices)
}

// Equal reports whether a and b have identical vertices and triangles.
func Equal(a, b *Mesh) bool {
	return slices.Equal(a.Vertices, b.Vertices) && slices.Equal(a.Triangles, b.Triangles)
}
