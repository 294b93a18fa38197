// Package history keeps an undo/redo list of full mesh snapshots.
package history

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/echoflaresat/grabtool/mesh"
)

var (
	// ErrEmpty is returned when a history is created without a snapshot.
	ErrEmpty = errors.New("history: no initial snapshot")
	// ErrCapacity is returned for a capacity that cannot hold the floor and one edit.
	ErrCapacity = errors.New("history: capacity must be at least 2")
)

// History is a linear undo list. The snapshot at index 0 is the floor and is
// never removed; the cursor always points at a valid snapshot. Every
// snapshot is an independent deep copy.
type History struct {
	snapshots []*mesh.Mesh
	cursor    int
	capacity  int
}

// Option configures a History.
type Option func(*History) error

// WithCapacity bounds the number of stored snapshots. When AddMesh would
// exceed it, the oldest snapshot after the floor is evicted. Zero means
// unbounded.
func WithCapacity(n int) Option {
	return func(h *History) error {
		if n != 0 && n < 2 {
			return fmt.Errorf("%w, got %d", ErrCapacity, n)
		}
		h.capacity = n
		return nil
	}
}

// New creates a history from one or more starting snapshots with the cursor
// on the last one.
func New(snapshots []*mesh.Mesh, opts ...Option) (*History, error) {
	if len(snapshots) == 0 {
		return nil, ErrEmpty
	}
	h := &History{}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	for _, m := range snapshots {
		if m == nil {
			return nil, fmt.Errorf("%w: nil snapshot", ErrEmpty)
		}
		h.snapshots = append(h.snapshots, m.Clone())
	}
	h.cursor = len(h.snapshots) - 1
	h.evict()
	return h, nil
}

// AddMesh records a copy of m as the newest snapshot. Snapshots after the
// cursor (the redo branch) are discarded first.
func (h *History) AddMesh(m *mesh.Mesh) {
	if h.cursor < len(h.snapshots)-1 {
		dropped := len(h.snapshots) - 1 - h.cursor
		clear(h.snapshots[h.cursor+1:])
		h.snapshots = h.snapshots[:h.cursor+1]
		slog.Debug("history: discarded redo branch", "snapshots", dropped)
	}
	h.snapshots = append(h.snapshots, m.Clone())
	h.cursor = len(h.snapshots) - 1
	h.evict()
}

func (h *History) evict() {
	if h.capacity == 0 {
		return
	}
	for len(h.snapshots) > h.capacity {
		h.snapshots = slices.Delete(h.snapshots, 1, 2)
		if h.cursor > 1 {
			h.cursor--
		}
	}
}

// Undo moves the cursor one snapshot back. At the floor it does nothing and
// reports false.
func (h *History) Undo() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	return true
}

// Redo moves the cursor one snapshot forward if a redo branch exists.
func (h *History) Redo() bool {
	if h.cursor >= len(h.snapshots)-1 {
		return false
	}
	h.cursor++
	return true
}

// Current returns a copy of the snapshot at the cursor.
func (h *History) Current() *mesh.Mesh {
	return h.snapshots[h.cursor].Clone()
}

func (h *History) CanUndo() bool { return h.cursor > 0 }
func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }
func (h *History) Len() int      { return len(h.snapshots) }
func (h *History) Index() int    { return h.cursor }
