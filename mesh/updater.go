package mesh

import "github.com/echoflaresat/grabtool/vectors"

// Sink accepts a full replacement vertex array for a mesh.
type Sink interface {
	Commit(vertices []vectors.Vec3) error
}

// Collider is a collision proxy built from a mesh. Some collision systems
// only rebuild their acceleration data when the mesh is reassigned, so the
// Updater hands the mesh over again after every commit.
type Collider interface {
	SetMesh(m *Mesh)
}

// Updater commits vertex arrays into Mesh and keeps Collider in sync.
type Updater struct {
	Mesh      *Mesh
	Transform Transform
	Collider  Collider
}

func NewUpdater(m *Mesh, t Transform, c Collider) *Updater {
	return &Updater{Mesh: m, Transform: t, Collider: c}
}

// Commit replaces the mesh vertices, recomputes bounds and normals, and
// reassigns the collider. The vertex count must match the mesh.
func (u *Updater) Commit(vertices []vectors.Vec3) error {
	if err := u.Mesh.SetVertices(vertices); err != nil {
		return err
	}
	u.Mesh.RecalculateBounds()
	u.Mesh.RecalculateNormals()
	if u.Collider != nil {
		u.Collider.SetMesh(u.Mesh)
	}
	return nil
}

// WorldVertices returns the mesh vertices in world space.
func (u *Updater) WorldVertices() []vectors.Vec3 {
	return u.Transform.TransformPoints(u.Mesh.Vertices)
}

// BoundsCollider is a minimal collision proxy that tracks the world-space
// bounds of the mesh it was last given.
type BoundsCollider struct {
	Transform Transform
	Bounds    Bounds
	Updates   int
}

func (b *BoundsCollider) SetMesh(m *Mesh) {
	b.Bounds = BoundsOf(b.Transform.TransformPoints(m.Vertices))
	b.Updates++
}
