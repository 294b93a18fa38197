package drag

import (
	"context"

	"github.com/echoflaresat/grabtool/field"
	"github.com/echoflaresat/grabtool/integrator"
	"github.com/echoflaresat/grabtool/mesh"
	"github.com/echoflaresat/grabtool/vectors"
)

// FieldSession drags a mesh by pushing its vertices through a vector field
// that follows the pointer. Each update integrates one step from the
// previous pointer position to the current one.
type FieldSession struct {
	updater *mesh.Updater
	base    field.Field3D
	workers int

	tracking bool
	initial  vectors.Vec3
	previous vectors.Vec3
}

// NewFieldSession validates the radii in params once, up front.
func NewFieldSession(u *mesh.Updater, params field.Params, workers int) (*FieldSession, error) {
	base, err := field.New(params)
	if err != nil {
		return nil, err
	}
	return &FieldSession{updater: u, base: base, workers: workers}, nil
}

func (s *FieldSession) StartTracking(grab vectors.Vec3) {
	s.tracking = true
	s.initial = grab
	s.previous = grab
}

// Update moves the mesh for a pointer now at pointer. The field is centred
// where the pointer was last frame and translates by the pointer movement.
// A pointer that has not moved leaves the mesh untouched.
func (s *FieldSession) Update(ctx context.Context, pointer vectors.Vec3) error {
	if !s.tracking {
		return ErrNotTracking
	}
	delta := pointer.Sub(s.previous)
	if delta.IsZero() {
		return nil
	}

	f, err := s.base.Step(s.previous, delta)
	if err != nil {
		return err
	}

	world := s.updater.WorldVertices()
	moved, err := integrator.IntegrateParallel(ctx, world, f, s.workers)
	if err != nil {
		return err
	}

	local := make([]vectors.Vec3, len(moved))
	for i, p := range moved {
		if p == world[i] {
			local[i] = s.updater.Mesh.Vertices[i]
			continue
		}
		local[i] = s.updater.Transform.InverseTransformPoint(p)
	}
	if err := s.updater.Commit(local); err != nil {
		return err
	}
	s.previous = pointer
	return nil
}

func (s *FieldSession) StopTracking() *mesh.Mesh {
	s.tracking = false
	return s.updater.Mesh
}

func (s *FieldSession) Tracking() bool                { return s.tracking }
func (s *FieldSession) InitialPosition() vectors.Vec3 { return s.initial }

// Params returns the session's radii and multiplier.
func (s *FieldSession) Params() field.Params { return s.base.Params() }
