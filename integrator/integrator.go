// Package integrator advances vertex positions through a velocity field by one
// interaction step.
package integrator

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/grabtool/vectors"
)

// Field is a velocity field with a requested travel distance for the step.
type Field interface {
	Velocity(position vectors.Vec3) vectors.Vec3
	StepLength() float64
}

// Step moves position one explicit Euler step through f. The step size is
// chosen so the point travels exactly f.StepLength() along the local field
// direction. Points where the field vanishes are returned unchanged.
func Step(f Field, position vectors.Vec3) vectors.Vec3 {
	v := f.Velocity(position)
	speed := v.Norm()
	if speed == 0 {
		return position
	}
	t := f.StepLength() / speed
	next := position.Add(v.Scale(t))
	if next.HasNaN() {
		return position
	}
	return next
}

// Integrate returns a new slice with every position advanced by Step.
// The output always has the same length and order as the input.
func Integrate(positions []vectors.Vec3, f Field) []vectors.Vec3 {
	out := make([]vectors.Vec3, len(positions))
	integrateRange(out, positions, f)
	return out
}

func integrateRange(dst, src []vectors.Vec3, f Field) {
	for i, p := range src {
		dst[i] = Step(f, p)
	}
}

// minChunk keeps small meshes on a single goroutine.
const minChunk = 1024

// IntegrateParallel is Integrate split across workers goroutines. Each worker
// owns a contiguous range of the output, so no locking is needed; the result
// is returned only after every range is written. workers <= 0 uses GOMAXPROCS.
func IntegrateParallel(ctx context.Context, positions []vectors.Vec3, f Field, workers int) ([]vectors.Vec3, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(positions)
	if workers == 1 || n <= minChunk {
		return Integrate(positions, f), nil
	}

	chunk := (n + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	out := make([]vectors.Vec3, n)
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			integrateRange(out[start:end], positions[start:end], f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
