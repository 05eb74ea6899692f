package rescale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func px(b, g, r, a byte) []byte { return []byte{b, g, r, a} }

func raster4(pixels ...[]byte) []byte {
	out := make([]byte, 0, len(pixels)*4)
	for _, p := range pixels {
		out = append(out, p...)
	}
	return out
}

func TestRescale_NearestIdentityAtUnitScale(t *testing.T) {
	src := raster4(px(1, 2, 3, 255), px(4, 5, 6, 255), px(7, 8, 9, 255), px(10, 11, 12, 255))
	out := Rescale(src, 2, 2, Nearest, 2, 2, DefaultParams())
	require.Len(t, out, len(src))
	assert.Equal(t, src, out)
}

func TestRescale_BilinearMagnifyCornersMatchSource(t *testing.T) {
	red := px(0, 0, 255, 255)
	green := px(0, 255, 0, 255)
	blue := px(255, 0, 0, 255)
	white := px(255, 255, 255, 255)
	src := raster4(red, green, blue, white)

	out := Rescale(src, 2, 2, Bilinear, 4, 4, DefaultParams())
	require.Len(t, out, 4*4*4)

	topLeft := out[0:4]
	topRight := out[3*4 : 3*4+4]
	bottomLeft := out[3*16 : 3*16+4]
	bottomRight := out[3*16+3*4 : 3*16+3*4+4]

	assert.Equal(t, red, topLeft)
	assert.Equal(t, green, topRight)
	assert.Equal(t, blue, bottomLeft)
	assert.Equal(t, white, bottomRight)
}

func TestRescale_BilinearMinifyAverages(t *testing.T) {
	// 4 identical pixels shrunk to 1x1 should reproduce that exact pixel
	// (the area-integral average of N identical samples is the sample).
	p := px(40, 80, 120, 255)
	src := raster4(p, p, p, p)
	out := Rescale(src, 2, 2, Bilinear, 1, 1, DefaultParams())
	require.Len(t, out, 4)
	assert.InDelta(t, float64(p[0]), float64(out[0]), 1)
	assert.InDelta(t, float64(p[1]), float64(out[1]), 1)
	assert.InDelta(t, float64(p[2]), float64(out[2]), 1)
}

func TestRescale_BicubicProducesCorrectLength(t *testing.T) {
	p := px(10, 20, 30, 255)
	src := raster4(p, p, p, p, p, p, p, p, p) // 3x3
	out := Rescale(src, 3, 3, Bicubic, 6, 6, DefaultParams())
	assert.Len(t, out, 6*6*4)
}

func TestRescale_NearestOutOfBoundsIsTransparentBlack(t *testing.T) {
	p := px(9, 9, 9, 255)
	src := raster4(p)
	// Shift the sample window far enough that some destination pixels fall
	// outside the 1x1 source.
	out := Rescale(src, 1, 1, Nearest, 4, 4, Params{XPos: 2, YPos: 2, XScale: 1, YScale: 1})
	assert.Equal(t, []byte{0, 0, 0, 0}, out[0:4])
}
