// Package config reads the YAML settings shared by the grab tool commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/echoflaresat/grabtool/curve"
	"github.com/echoflaresat/grabtool/drag"
	"github.com/echoflaresat/grabtool/field"
	"github.com/echoflaresat/grabtool/history"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Field   FieldConfig   `yaml:"field"`
	Falloff FalloffConfig `yaml:"falloff"`
	History HistoryConfig `yaml:"history"`
	// Workers is the number of integration goroutines, 0 for GOMAXPROCS.
	Workers int `yaml:"workers"`
}

type FieldConfig struct {
	InnerRadius      float64 `yaml:"inner_radius"`
	OuterRadius      float64 `yaml:"outer_radius"`
	RadiusMultiplier float64 `yaml:"radius_multiplier"`
}

type FalloffConfig struct {
	Radius        float64 `yaml:"radius"`
	MinimumRadius float64 `yaml:"minimum_radius"`
	// Curve maps distance ratio to weight. Empty means linear from 1 to 0.
	Curve []curve.Key `yaml:"curve,omitempty"`
}

type HistoryConfig struct {
	// Capacity bounds stored snapshots, 0 for unbounded.
	Capacity int `yaml:"capacity"`
}

func Default() Config {
	return Config{
		Field: FieldConfig{
			InnerRadius:      0.5,
			OuterRadius:      1.5,
			RadiusMultiplier: 1,
		},
		Falloff: FalloffConfig{
			Radius:        1,
			MinimumRadius: 0.1,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode reads YAML from r over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks every section, filling in a zero radius multiplier with 1.
func (c *Config) Validate() error {
	p := c.FieldParams()
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: field: %w", ErrInvalid, err)
	}
	c.Field.RadiusMultiplier = p.RadiusMultiplier

	switch {
	case c.Falloff.Radius <= 0:
		return fmt.Errorf("%w: falloff radius must be positive, got %g", ErrInvalid, c.Falloff.Radius)
	case c.Falloff.MinimumRadius < 0:
		return fmt.Errorf("%w: falloff minimum_radius is negative, %g", ErrInvalid, c.Falloff.MinimumRadius)
	}
	if _, err := c.FalloffCurve(); err != nil {
		return fmt.Errorf("%w: falloff curve: %w", ErrInvalid, err)
	}

	if c.History.Capacity < 0 || c.History.Capacity == 1 {
		return fmt.Errorf("%w: history capacity must be 0 or at least 2, got %d",
			ErrInvalid, c.History.Capacity)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers is negative, %d", ErrInvalid, c.Workers)
	}
	return nil
}

func (c Config) FieldParams() field.Params {
	return field.Params{
		InnerRadius:      c.Field.InnerRadius,
		OuterRadius:      c.Field.OuterRadius,
		RadiusMultiplier: c.Field.RadiusMultiplier,
	}
}

func (c Config) FalloffCurve() (curve.Curve, error) {
	if len(c.Falloff.Curve) == 0 {
		return curve.Linear(), nil
	}
	k, err := curve.NewKeyframes(c.Falloff.Curve...)
	if err != nil {
		return nil, err
	}
	return k, nil
}

func (c Config) HistoryOptions() []history.Option {
	if c.History.Capacity == 0 {
		return nil
	}
	return []history.Option{history.WithCapacity(c.History.Capacity)}
}

// EditorOptions assembles the drag editor settings.
func (c Config) EditorOptions() (drag.Options, error) {
	fc, err := c.FalloffCurve()
	if err != nil {
		return drag.Options{}, err
	}
	return drag.Options{
		Field:         c.FieldParams(),
		Falloff:       fc,
		MinimumRadius: c.Falloff.MinimumRadius,
		History:       c.HistoryOptions(),
		Workers:       c.Workers,
	}, nil
}
