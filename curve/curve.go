// Package curve provides falloff curves that map a normalized distance in
// [0, 1] to a displacement weight.
package curve

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/interp"
)

var (
	// ErrRange is returned when keyframes do not span [0, 1].
	ErrRange = errors.New("curve: keyframes must cover [0, 1]")
	// ErrKeys is returned for too few or duplicate keyframes.
	ErrKeys = errors.New("curve: invalid keyframes")
)

// Curve is a falloff function evaluated at a close ratio.
type Curve interface {
	Evaluate(t float64) float64
}

// Func adapts an ordinary function to Curve.
type Func func(t float64) float64

func (f Func) Evaluate(t float64) float64 { return f(t) }

// Linear falls from 1 at 0 to 0 at 1.
func Linear() Curve {
	return Func(func(t float64) float64 { return 1 - t })
}

// Smooth is the cubic smooth step falling from 1 at 0 to 0 at 1.
func Smooth() Curve {
	return Func(func(t float64) float64 {
		t = clamp01(t)
		return 1 - t*t*(3-2*t)
	})
}

// Key is one control point of a Keyframes curve.
type Key struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Keyframes interpolates between control points. Two keys give a straight
// line; three or more use a monotone Fritsch-Butland cubic, so a monotone set
// of keys never overshoots. Outside the key range the nearest end value is
// returned.
type Keyframes struct {
	keys []Key
	pred interp.Predictor
}

// NewKeyframes fits a curve through keys. The keys are sorted by time; they
// must include a time <= 0 and a time >= 1 and no two may share a time.
func NewKeyframes(keys ...Key) (*Keyframes, error) {
	if len(keys) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 keys, got %d", ErrKeys, len(keys))
	}

	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b Key) int {
		switch {
		case a.Time < b.Time:
			return -1
		case a.Time > b.Time:
			return 1
		}
		return 0
	})

	if sorted[0].Time > 0 || sorted[len(sorted)-1].Time < 1 {
		return nil, fmt.Errorf("%w: keys span [%g, %g]", ErrRange, sorted[0].Time, sorted[len(sorted)-1].Time)
	}

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, k := range sorted {
		if i > 0 && k.Time == sorted[i-1].Time {
			return nil, fmt.Errorf("%w: duplicate time %g", ErrKeys, k.Time)
		}
		xs[i], ys[i] = k.Time, k.Value
	}

	var fp interp.FittablePredictor
	if len(sorted) == 2 {
		fp = &interp.PiecewiseLinear{}
	} else {
		fp = &interp.FritschButland{}
	}
	if err := fp.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeys, err)
	}
	return &Keyframes{keys: sorted, pred: fp}, nil
}

// Evaluate returns the interpolated value at t.
func (k *Keyframes) Evaluate(t float64) float64 {
	first, last := k.keys[0], k.keys[len(k.keys)-1]
	switch {
	case t <= first.Time:
		return first.Value
	case t >= last.Time:
		return last.Value
	}
	return k.pred.Predict(t)
}

// Keys returns a copy of the sorted control points.
func (k *Keyframes) Keys() []Key {
	return slices.Clone(k.keys)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
