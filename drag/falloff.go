// Package drag turns a grab point and a moving pointer into mesh deformation,
// either by direct falloff-weighted displacement or by integrating vertices
// through a divergence-free vector field.
package drag

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/echoflaresat/grabtool/curve"
	"github.com/echoflaresat/grabtool/mesh"
	"github.com/echoflaresat/grabtool/vectors"
)

var (
	// ErrRadius is returned for a non-positive selection radius.
	ErrRadius = errors.New("drag: radius must be positive")
	// ErrNoCurve is returned when a falloff session starts without a curve.
	ErrNoCurve = errors.New("drag: falloff curve is required")
	// ErrNotTracking is returned when updating a session that was not started.
	ErrNotTracking = errors.New("drag: session is not tracking")
)

// selected is a vertex inside the grab radius, captured at grab start.
type selected struct {
	index      int
	original   vectors.Vec3
	closeRatio float64
}

// FalloffSession displaces the vertices around a grab point by the pointer
// offset, weighted by a falloff curve of each vertex's distance ratio. The
// selection and the original positions are fixed when tracking starts, so
// every update is a displacement from the original mesh, not from the
// previous frame.
type FalloffSession struct {
	updater *mesh.Updater

	tracking bool
	initial  vectors.Vec3
	radius   float64
	falloff  curve.Curve
	selected []selected
	scratch  []vectors.Vec3
}

func NewFalloffSession(u *mesh.Updater) *FalloffSession {
	return &FalloffSession{updater: u}
}

// StartTracking selects every vertex whose world-space distance to grab,
// divided by radius, lies in [0, 1].
func (s *FalloffSession) StartTracking(grab vectors.Vec3, radius float64, falloff curve.Curve) error {
	if radius <= 0 {
		return fmt.Errorf("%w, got %g", ErrRadius, radius)
	}
	if falloff == nil {
		return ErrNoCurve
	}

	s.tracking = true
	s.initial = grab
	s.radius = radius
	s.falloff = falloff
	s.selected = s.selected[:0]

	m := s.updater.Mesh
	for i, local := range m.Vertices {
		ratio := vectors.Distance(s.updater.Transform.TransformPoint(local), grab) / radius
		if ratio >= 0 && ratio <= 1 {
			s.selected = append(s.selected, selected{index: i, original: local, closeRatio: ratio})
		}
	}
	if len(s.selected) == 0 {
		slog.Warn("falloff drag selected no vertices", "grab", grab, "radius", radius)
	}
	return nil
}

// UpdateIndices moves the selected vertices for a pointer now at pointer and
// commits the whole vertex array.
func (s *FalloffSession) UpdateIndices(pointer vectors.Vec3) error {
	if !s.tracking {
		return ErrNotTracking
	}
	if len(s.selected) == 0 {
		return nil
	}

	localDelta := s.updater.Transform.InverseTransformVector(pointer.Sub(s.initial))

	s.scratch = append(s.scratch[:0], s.updater.Mesh.Vertices...)
	for _, v := range s.selected {
		s.scratch[v.index] = v.original.Add(localDelta.Scale(s.falloff.Evaluate(v.closeRatio)))
	}
	return s.updater.Commit(s.scratch)
}

// StopTracking ends the session and returns the live mesh. The caller copies
// it into history.
func (s *FalloffSession) StopTracking() *mesh.Mesh {
	s.tracking = false
	s.falloff = nil
	s.selected = s.selected[:0]
	return s.updater.Mesh
}

func (s *FalloffSession) Tracking() bool                { return s.tracking }
func (s *FalloffSession) InitialPosition() vectors.Vec3 { return s.initial }

// Selected returns the indices of the vertices being dragged, in ascending order.
func (s *FalloffSession) Selected() []int {
	out := make([]int, len(s.selected))
	for i, v := range s.selected {
		out[i] = v.index
	}
	return out
}

// CloseRatio returns the fixed distance ratio of vertex index, if selected.
func (s *FalloffSession) CloseRatio(index int) (float64, bool) {
	i, ok := slices.BinarySearchFunc(s.selected, index, func(v selected, target int) int {
		return v.index - target
	})
	if !ok {
		return 0, false
	}
	return s.selected[i].closeRatio, true
}
