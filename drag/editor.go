package drag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/echoflaresat/grabtool/curve"
	"github.com/echoflaresat/grabtool/field"
	"github.com/echoflaresat/grabtool/history"
	"github.com/echoflaresat/grabtool/mesh"
	"github.com/echoflaresat/grabtool/vectors"
)

// ErrBusy is returned when undo, redo or a new drag is requested while a
// drag is in progress.
var ErrBusy = errors.New("drag: a drag is already in progress")

// Mode selects how a drag deforms the mesh.
type Mode int

const (
	None Mode = iota
	Falloff
	Field
)

func (m Mode) String() string {
	switch m {
	case None:
		return "none"
	case Falloff:
		return "falloff"
	case Field:
		return "field"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "falloff" or "field" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "falloff":
		return Falloff, nil
	case "field":
		return Field, nil
	}
	return None, fmt.Errorf("drag: unknown mode %q", s)
}

// Options configures an Editor.
type Options struct {
	Field         field.Params
	Falloff       curve.Curve
	MinimumRadius float64
	History       []history.Option
	Workers       int
}

// Editor owns a mesh being edited: its updater, both drag sessions and the
// undo history. A finished drag is recorded as one history snapshot.
type Editor struct {
	updater *mesh.Updater
	history *history.History
	falloff *FalloffSession
	field   *FieldSession
	curve   curve.Curve
	minimum float64
	active  Mode
}

// NewEditor records the current mesh as the history floor.
func NewEditor(u *mesh.Updater, opts Options) (*Editor, error) {
	fs, err := NewFieldSession(u, opts.Field, opts.Workers)
	if err != nil {
		return nil, err
	}
	h, err := history.New([]*mesh.Mesh{u.Mesh}, opts.History...)
	if err != nil {
		return nil, err
	}
	c := opts.Falloff
	if c == nil {
		c = curve.Linear()
	}
	return &Editor{
		updater: u,
		history: h,
		falloff: NewFalloffSession(u),
		field:   fs,
		curve:   c,
		minimum: opts.MinimumRadius,
	}, nil
}

// Begin starts a drag at grab. Radius is only used by Falloff and is raised
// to the configured minimum.
func (e *Editor) Begin(mode Mode, grab vectors.Vec3, radius float64) error {
	if e.active != None {
		return ErrBusy
	}
	switch mode {
	case Falloff:
		if radius < e.minimum {
			radius = e.minimum
		}
		if err := e.falloff.StartTracking(grab, radius, e.curve); err != nil {
			return err
		}
	case Field:
		e.field.StartTracking(grab)
	default:
		return fmt.Errorf("drag: cannot begin %v drag", mode)
	}
	e.active = mode
	slog.Debug("drag started", "mode", mode, "grab", grab)
	return nil
}

// Drag moves the active drag's pointer to p.
func (e *Editor) Drag(ctx context.Context, p vectors.Vec3) error {
	switch e.active {
	case Falloff:
		return e.falloff.UpdateIndices(p)
	case Field:
		return e.field.Update(ctx, p)
	}
	return ErrNotTracking
}

// End finishes the active drag and records the result in history.
func (e *Editor) End() error {
	var m *mesh.Mesh
	switch e.active {
	case Falloff:
		m = e.falloff.StopTracking()
	case Field:
		m = e.field.StopTracking()
	default:
		return ErrNotTracking
	}
	e.active = None
	e.history.AddMesh(m)
	slog.Debug("drag finished", "snapshots", e.history.Len())
	return nil
}

// Undo restores the previous snapshot. At the oldest snapshot it does
// nothing and reports false.
func (e *Editor) Undo() (bool, error) {
	return e.restore(e.history.Undo)
}

// Redo reapplies the next snapshot if one exists.
func (e *Editor) Redo() (bool, error) {
	return e.restore(e.history.Redo)
}

func (e *Editor) restore(move func() bool) (bool, error) {
	if e.active != None {
		return false, ErrBusy
	}
	if !move() {
		return false, nil
	}
	if err := e.updater.Commit(e.history.Current().Vertices); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Editor) Active() Mode                    { return e.active }
func (e *Editor) Mesh() *mesh.Mesh                { return e.updater.Mesh }
func (e *Editor) History() *history.History       { return e.history }
func (e *Editor) FalloffSession() *FalloffSession { return e.falloff }
