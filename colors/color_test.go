package colors

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromHSVPrimaries(t *testing.T) {
	cases := []struct {
		hue  float64
		want Color4
	}{
		{0, New(1, 0, 0, 1)},
		{120, New(0, 1, 0, 1)},
		{240, New(0, 0, 1, 1)},
		{360, New(1, 0, 0, 1)},
		{-120, New(0, 0, 1, 1)},
	}
	for _, c := range cases {
		got := FromHSV(c.hue, 1, 1)
		assert.InDelta(t, c.want.R, got.R, 1e-12, "hue %g", c.hue)
		assert.InDelta(t, c.want.G, got.G, 1e-12, "hue %g", c.hue)
		assert.InDelta(t, c.want.B, got.B, 1e-12, "hue %g", c.hue)
	}
}

func TestFromHSVGrayAndBlack(t *testing.T) {
	assert.Equal(t, New(0.5, 0.5, 0.5, 1), FromHSV(75, 0, 0.5))
	assert.Equal(t, Black(), FromHSV(200, 1, 0))
	assert.Equal(t, White(), FromHSV(10, -3, 7), "saturation and value are clamped")
}

func TestToNRGBA(t *testing.T) {
	assert.Equal(t, color.NRGBA{255, 127, 0, 255}, New(2, 0.5, -1, 1).ToNRGBA())
}

func TestMixAndScale(t *testing.T) {
	m := Black().Mix(White(), 0.25)
	assert.Equal(t, New(0.25, 0.25, 0.25, 1), m)
	assert.Equal(t, New(0.5, 0.5, 0.5, 2), m.Add(m))
	assert.Equal(t, m.Add(m), m.Scale(2))
}

func TestRGBAPremultiplied(t *testing.T) {
	r, g, b, a := New(1, 0.5, 0, 0.5).RGBA()
	assert.Equal(t, uint32(32767), r)
	assert.Equal(t, uint32(16383), g)
	assert.Equal(t, uint32(0), b)
	assert.Equal(t, uint32(32767), a)
}
