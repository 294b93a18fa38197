// Package field implements the radial, divergence-free deformation field that
// rigidly translates points near a grab center and decays to rest at an outer
// radius.
package field

import (
	"errors"
	"fmt"

	"github.com/echoflaresat/grabtool/vectors"
)

// ErrRadii is returned when the inner and outer radius cannot form an annulus.
var ErrRadii = errors.New("field: invalid radii")

// Params are the per-step inputs of a field. Radii and multiplier are fixed
// for a session; Center and DesiredTranslation change every frame.
type Params struct {
	InnerRadius      float64
	OuterRadius      float64
	RadiusMultiplier float64

	Center             vectors.Vec3
	DesiredTranslation vectors.Vec3
}

// NewParams returns params with a radius multiplier of 1.
func NewParams(inner, outer float64) Params {
	return Params{InnerRadius: inner, OuterRadius: outer, RadiusMultiplier: 1}
}

// Validate checks 0 < InnerRadius < OuterRadius and a positive multiplier.
// A zero multiplier is replaced with the default of 1.
func (p *Params) Validate() error {
	if p.RadiusMultiplier == 0 {
		p.RadiusMultiplier = 1
	} else if p.RadiusMultiplier < 0 {
		return fmt.Errorf("%w: negative radius multiplier %g", ErrRadii, p.RadiusMultiplier)
	}

	switch {
	case p.InnerRadius <= 0 || p.OuterRadius <= 0:
		return fmt.Errorf("%w: radii must be positive, got inner %g, outer %g",
			ErrRadii, p.InnerRadius, p.OuterRadius)
	case p.InnerRadius == p.OuterRadius:
		return fmt.Errorf("%w: inner and outer radius are both %g", ErrRadii, p.InnerRadius)
	case p.InnerRadius > p.OuterRadius:
		return fmt.Errorf("%w: inner radius %g exceeds outer radius %g",
			ErrRadii, p.InnerRadius, p.OuterRadius)
	}
	return nil
}

func (p Params) AdjustedInner() float64 { return p.InnerRadius * p.RadiusMultiplier }
func (p Params) AdjustedOuter() float64 { return p.OuterRadius * p.RadiusMultiplier }

// StepLength is the distance a point should travel this step.
func (p Params) StepLength() float64 {
	return p.DesiredTranslation.Norm()
}
