package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoflaresat/grabtool/curve"
	"github.com/echoflaresat/grabtool/field"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, Default(), c)

	opts, err := c.EditorOptions()
	require.NoError(t, err)
	assert.Equal(t, field.NewParams(0.5, 1.5), opts.Field)
	assert.Equal(t, 0.1, opts.MinimumRadius)
	assert.Nil(t, opts.History)
	assert.Equal(t, 1.0, opts.Falloff.Evaluate(0))
	assert.Equal(t, 0.0, opts.Falloff.Evaluate(1))
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
field:
  inner_radius: 0.25
  outer_radius: 2
falloff:
  radius: 3
  curve:
    - {time: 0, value: 1}
    - {time: 0.5, value: 0.8}
    - {time: 1, value: 0}
history:
  capacity: 16
workers: 4
`
	c, err := Decode(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 0.25, c.Field.InnerRadius)
	assert.Equal(t, 2.0, c.Field.OuterRadius)
	assert.Equal(t, 1.0, c.Field.RadiusMultiplier, "kept from defaults")
	assert.Equal(t, 3.0, c.Falloff.Radius)
	assert.Equal(t, 0.1, c.Falloff.MinimumRadius)
	assert.Equal(t, []curve.Key{{Time: 0, Value: 1}, {Time: 0.5, Value: 0.8}, {Time: 1, Value: 0}}, c.Falloff.Curve)
	assert.Equal(t, 4, c.Workers)

	opts, err := c.EditorOptions()
	require.NoError(t, err)
	assert.Len(t, opts.History, 1)
	assert.InDelta(t, 0.8, opts.Falloff.Evaluate(0.5), 1e-12)
}

func TestDecodeEmpty(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("field:\n  innr_radius: 1\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"equal radii", func(c *Config) { c.Field.InnerRadius = c.Field.OuterRadius }},
		{"inverted radii", func(c *Config) { c.Field.InnerRadius, c.Field.OuterRadius = 2, 1 }},
		{"negative multiplier", func(c *Config) { c.Field.RadiusMultiplier = -1 }},
		{"zero falloff radius", func(c *Config) { c.Falloff.Radius = 0 }},
		{"negative minimum", func(c *Config) { c.Falloff.MinimumRadius = -0.1 }},
		{"short curve", func(c *Config) { c.Falloff.Curve = []curve.Key{{Time: 0, Value: 1}, {Time: 0.5, Value: 0}} }},
		{"capacity one", func(c *Config) { c.History.Capacity = 1 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Default()
			tc.mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestValidateFillsMultiplier(t *testing.T) {
	c := Default()
	c.Field.RadiusMultiplier = 0
	require.NoError(t, c.Validate())
	assert.Equal(t, 1.0, c.Field.RadiusMultiplier)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Workers)

	require.NoError(t, os.WriteFile(path, []byte("falloff:\n  radius: -1\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
