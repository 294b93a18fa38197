package drag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/grabtool/curve"
	"github.com/echoflaresat/grabtool/field"
	"github.com/echoflaresat/grabtool/history"
	"github.com/echoflaresat/grabtool/mesh"
	"github.com/echoflaresat/grabtool/vectors"
)

func assertVecInDelta(t *testing.T, want, got vectors.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, delta, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, delta, msgAndArgs...)
}

type countingCollider struct{ calls int }

func (c *countingCollider) SetMesh(*mesh.Mesh) { c.calls++ }

// fan has vertices at distance 0, 1, 2 and just past 2 from the origin.
func fan(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New([]vectors.Vec3{
		{},
		{X: 1},
		{Y: 2},
		{Z: 2.000001},
	}, []int{0, 1, 2, 0, 2, 3})
	require.NoError(t, err)
	return m
}

func TestFalloffSelectionIncludesBoundary(t *testing.T) {
	s := NewFalloffSession(mesh.NewUpdater(fan(t), mesh.Identity(), nil))
	require.NoError(t, s.StartTracking(vectors.Vec3{}, 2, curve.Linear()))

	assert.Equal(t, []int{0, 1, 2}, s.Selected())

	ratio, ok := s.CloseRatio(2)
	require.True(t, ok)
	assert.Equal(t, 1.0, ratio)
	ratio, ok = s.CloseRatio(1)
	require.True(t, ok)
	assert.Equal(t, 0.5, ratio)
	_, ok = s.CloseRatio(3)
	assert.False(t, ok)
}

func TestFalloffRejectsBadInput(t *testing.T) {
	s := NewFalloffSession(mesh.NewUpdater(fan(t), mesh.Identity(), nil))
	assert.ErrorIs(t, s.StartTracking(vectors.Vec3{}, 0, curve.Linear()), ErrRadius)
	assert.ErrorIs(t, s.StartTracking(vectors.Vec3{}, -1, curve.Linear()), ErrRadius)
	assert.ErrorIs(t, s.StartTracking(vectors.Vec3{}, 1, nil), ErrNoCurve)
	assert.ErrorIs(t, s.UpdateIndices(vectors.Vec3{X: 1}), ErrNotTracking)
}

func TestFalloffDisplacesFromOriginal(t *testing.T) {
	m := fan(t)
	col := &countingCollider{}
	s := NewFalloffSession(mesh.NewUpdater(m, mesh.Identity(), col))
	require.NoError(t, s.StartTracking(vectors.Vec3{}, 2, curve.Linear()))

	require.NoError(t, s.UpdateIndices(vectors.Vec3{Z: 1}))
	require.NoError(t, s.UpdateIndices(vectors.Vec3{Z: 4}))

	assert.Equal(t, vectors.Vec3{Z: 4}, m.Vertices[0])
	assert.Equal(t, vectors.Vec3{X: 1, Z: 2}, m.Vertices[1])
	assert.Equal(t, vectors.Vec3{Y: 2}, m.Vertices[2], "weight is zero at the boundary")
	assert.Equal(t, vectors.Vec3{Z: 2.000001}, m.Vertices[3])
	assert.Equal(t, 2, col.calls, "collider is reassigned on every update")

	assert.Same(t, m, s.StopTracking())
	assert.False(t, s.Tracking())
}

func TestFalloffDeltaInLocalSpace(t *testing.T) {
	m := fan(t)
	tr := mesh.NewTransform(vectors.Vec3{Y: 10}, vectors.Vec3{}, 0, 2)
	s := NewFalloffSession(mesh.NewUpdater(m, tr, nil))

	// Local radius 2 is world radius 4.
	require.NoError(t, s.StartTracking(vectors.Vec3{Y: 10}, 4, curve.Linear()))
	assert.Equal(t, []int{0, 1, 2}, s.Selected())

	require.NoError(t, s.UpdateIndices(vectors.Vec3{X: 2, Y: 10}))
	assertVecInDelta(t, vectors.Vec3{X: 1}, m.Vertices[0], 1e-12)
}

func TestFalloffEmptySelectionIsNoop(t *testing.T) {
	m := fan(t)
	col := &countingCollider{}
	s := NewFalloffSession(mesh.NewUpdater(m, mesh.Identity(), col))
	require.NoError(t, s.StartTracking(vectors.Vec3{X: 50}, 1, curve.Linear()))
	assert.Empty(t, s.Selected())
	require.NoError(t, s.UpdateIndices(vectors.Vec3{X: 60}))
	assert.Zero(t, col.calls)
}

func newFieldSession(t *testing.T, m *mesh.Mesh, tr mesh.Transform, col mesh.Collider) *FieldSession {
	t.Helper()
	s, err := NewFieldSession(mesh.NewUpdater(m, tr, col), field.NewParams(0.5, 1.2), 2)
	require.NoError(t, err)
	return s
}

func TestFieldSessionMovesCoreRigidly(t *testing.T) {
	m, err := mesh.NewPlane(4, 4, 0.5)
	require.NoError(t, err)
	before := m.Clone()
	s := newFieldSession(t, m, mesh.Identity(), nil)

	s.StartTracking(vectors.Vec3{})
	require.NoError(t, s.Update(context.Background(), vectors.Vec3{X: 0.1}))

	for i, v := range before.Vertices {
		got := m.Vertices[i]
		switch d := v.Norm(); {
		case d < 0.5:
			assertVecInDelta(t, v.Add(vectors.Vec3{X: 0.1}), got, 1e-12, "core vertex %d", i)
		case d >= 1.2:
			assert.Equal(t, v, got, "vertex %d outside the field", i)
		}
	}
	assert.NotEqual(t, before.Vertices[18], m.Vertices[18], "blend vertex at (0.5, 0, 0.5) moves")
}

func TestFieldSessionIncrementalSteps(t *testing.T) {
	m, err := mesh.NewPlane(4, 4, 0.5)
	require.NoError(t, err)
	col := &countingCollider{}
	s := newFieldSession(t, m, mesh.Identity(), col)
	const center = 12

	s.StartTracking(vectors.Vec3{})
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, vectors.Vec3{X: 0.1}))
	require.NoError(t, s.Update(ctx, vectors.Vec3{X: 0.1}))
	assert.Equal(t, 1, col.calls, "an unmoved pointer commits nothing")
	require.NoError(t, s.Update(ctx, vectors.Vec3{X: 0.1, Z: 0.2}))

	assertVecInDelta(t, vectors.Vec3{X: 0.1, Z: 0.2}, m.Vertices[center], 1e-12)
	assert.Equal(t, 2, col.calls)
}

func TestFieldSessionWorldSpace(t *testing.T) {
	m, err := mesh.NewPlane(4, 4, 0.5)
	require.NoError(t, err)
	tr := mesh.NewTransform(vectors.Vec3{Y: 5}, vectors.Vec3{}, 0, 2)
	s := newFieldSession(t, m, tr, nil)

	s.StartTracking(vectors.Vec3{Y: 5})
	require.NoError(t, s.Update(context.Background(), vectors.Vec3{X: 0.2, Y: 5}))
	assertVecInDelta(t, vectors.Vec3{X: 0.1}, m.Vertices[12], 1e-12)
}

func TestFieldSessionErrors(t *testing.T) {
	m, err := mesh.NewPlane(1, 1, 1)
	require.NoError(t, err)
	_, err = NewFieldSession(mesh.NewUpdater(m, mesh.Identity(), nil), field.NewParams(2, 1), 1)
	assert.ErrorIs(t, err, field.ErrRadii)

	s := newFieldSession(t, m, mesh.Identity(), nil)
	assert.ErrorIs(t, s.Update(context.Background(), vectors.Vec3{X: 1}), ErrNotTracking)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.StartTracking(vectors.Vec3{})
	assert.ErrorIs(t, s.Update(ctx, vectors.Vec3{X: 1}), context.Canceled)
}

func newEditor(t *testing.T, opts Options) (*Editor, *countingCollider) {
	t.Helper()
	m, err := mesh.NewPlane(4, 4, 0.5)
	require.NoError(t, err)
	col := &countingCollider{}
	if opts.Field.InnerRadius == 0 {
		opts.Field = field.NewParams(0.5, 1.2)
	}
	e, err := NewEditor(mesh.NewUpdater(m, mesh.Identity(), col), opts)
	require.NoError(t, err)
	return e, col
}

func dragTo(t *testing.T, e *Editor, mode Mode, from, to vectors.Vec3, radius float64) {
	t.Helper()
	require.NoError(t, e.Begin(mode, from, radius))
	require.NoError(t, e.Drag(context.Background(), to))
	require.NoError(t, e.End())
}

func TestEditorUndoRedo(t *testing.T) {
	e, col := newEditor(t, Options{})
	original := e.Mesh().Clone()

	dragTo(t, e, Falloff, vectors.Vec3{}, vectors.Vec3{Y: 1}, 1)
	dragged := e.Mesh().Clone()
	assert.Equal(t, 1.0, dragged.Vertices[12].Y)
	assert.Equal(t, 2, e.History().Len())

	ok, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mesh.Equal(original, e.Mesh()))

	calls := col.calls
	ok, err = e.Undo()
	require.NoError(t, err)
	assert.False(t, ok, "undo stops at the original mesh")
	assert.Equal(t, calls, col.calls)

	ok, err = e.Redo()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mesh.Equal(dragged, e.Mesh()))
	assert.Equal(t, calls+1, col.calls)
}

func TestEditorNewDragDiscardsRedo(t *testing.T) {
	e, _ := newEditor(t, Options{})
	dragTo(t, e, Falloff, vectors.Vec3{}, vectors.Vec3{Y: 1}, 1)
	dragTo(t, e, Field, vectors.Vec3{}, vectors.Vec3{X: 0.2}, 0)

	_, err := e.Undo()
	require.NoError(t, err)
	_, err = e.Undo()
	require.NoError(t, err)
	dragTo(t, e, Falloff, vectors.Vec3{}, vectors.Vec3{Y: -1}, 1)

	assert.Equal(t, 2, e.History().Len())
	assert.False(t, e.History().CanRedo())
	assert.Equal(t, -1.0, e.Mesh().Vertices[12].Y)
}

func TestEditorBusy(t *testing.T) {
	e, _ := newEditor(t, Options{})
	require.NoError(t, e.Begin(Field, vectors.Vec3{}, 0))
	assert.Equal(t, Field, e.Active())

	assert.ErrorIs(t, e.Begin(Falloff, vectors.Vec3{}, 1), ErrBusy)
	_, err := e.Undo()
	assert.ErrorIs(t, err, ErrBusy)
	_, err = e.Redo()
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, e.End())
	assert.Equal(t, None, e.Active())
	assert.ErrorIs(t, e.End(), ErrNotTracking)
	assert.ErrorIs(t, e.Drag(context.Background(), vectors.Vec3{}), ErrNotTracking)
}

func TestEditorMinimumRadius(t *testing.T) {
	e, _ := newEditor(t, Options{MinimumRadius: 0.6})
	require.NoError(t, e.Begin(Falloff, vectors.Vec3{}, 0))
	// Origin plus its four edge neighbours at 0.5.
	assert.Len(t, e.FalloffSession().Selected(), 5)
	require.NoError(t, e.End())

	e, _ = newEditor(t, Options{})
	assert.ErrorIs(t, e.Begin(Falloff, vectors.Vec3{}, 0), ErrRadius)
	assert.Equal(t, None, e.Active())
}

func TestEditorCustomCurveAndCapacity(t *testing.T) {
	step := curve.Func(func(float64) float64 { return 0.5 })
	e, _ := newEditor(t, Options{
		Falloff: step,
		History: []history.Option{history.WithCapacity(2)},
	})
	dragTo(t, e, Falloff, vectors.Vec3{}, vectors.Vec3{Y: 2}, 1)
	assert.Equal(t, 1.0, e.Mesh().Vertices[12].Y)
	dragTo(t, e, Falloff, vectors.Vec3{}, vectors.Vec3{Y: 2}, 1)
	assert.Equal(t, 2.0, e.Mesh().Vertices[12].Y)
	assert.Equal(t, 2, e.History().Len())
}

func TestEditorRejectsBadOptions(t *testing.T) {
	m, err := mesh.NewPlane(1, 1, 1)
	require.NoError(t, err)
	u := mesh.NewUpdater(m, mesh.Identity(), nil)

	_, err = NewEditor(u, Options{Field: field.NewParams(1, 1)})
	assert.ErrorIs(t, err, field.ErrRadii)
	_, err = NewEditor(u, Options{
		Field:   field.NewParams(1, 2),
		History: []history.Option{history.WithCapacity(1)},
	})
	assert.ErrorIs(t, err, history.ErrCapacity)
}

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{Falloff, Field} {
		got, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	_, err := ParseMode("twist")
	assert.Error(t, err)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
