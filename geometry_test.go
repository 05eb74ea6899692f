package rastercodec

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestClampRect_WithinBounds(t *testing.T) {
	size := ImageSize{Width: 10, Height: 10}
	r := ClampRect(ImageRect{Left: 2, Top: 3, Width: 5, Height: 5}, size)
	assert.Equal(t, ImageRect{Left: 2, Top: 3, Width: 5, Height: 5}, r)
}

func TestClampRect_OverflowsClampedToBounds(t *testing.T) {
	size := ImageSize{Width: 10, Height: 10}
	r := ClampRect(ImageRect{Left: 8, Top: 8, Width: 10, Height: 10}, size)
	assert.Equal(t, ImageRect{Left: 8, Top: 8, Width: 2, Height: 2}, r)
}

func TestClampRect_NegativeOriginClampsToZero(t *testing.T) {
	size := ImageSize{Width: 10, Height: 10}
	r := ClampRect(ImageRect{Left: -5, Top: -5, Width: 4, Height: 4}, size)
	assert.Equal(t, int32(0), r.Left)
	assert.Equal(t, int32(0), r.Top)
}

func TestClampRect_TotalForArbitraryInput(t *testing.T) {
	// Testable property: clamp(rect, size) is always contained in
	// [0,size.Width] x [0,size.Height], for any rect or size.
	f := func(left, top, width, height, w, h int16) bool {
		size := ImageSize{Width: int32(w), Height: int32(h)}
		if size.Width < 0 || size.Height < 0 {
			return true
		}
		r := ClampRect(ImageRect{Left: int32(left), Top: int32(top), Width: int32(width), Height: int32(height)}, size)
		if r.Left < 0 || r.Left > size.Width {
			return false
		}
		if r.Top < 0 || r.Top > size.Height {
			return false
		}
		if r.Right() > size.Width || r.Bottom() > size.Height {
			return false
		}
		return true
	}
	assert.NoError(t, quick.Check(f, nil))
}

func TestFullRect_SpansSize(t *testing.T) {
	size := ImageSize{Width: 5, Height: 7}
	assert.Equal(t, ImageRect{Width: 5, Height: 7}, FullRect(size))
}

func TestEffectiveRect_ZeroRectMeansWholeBitmap(t *testing.T) {
	size := ImageSize{Width: 5, Height: 7}
	assert.Equal(t, ImageRect{Width: 5, Height: 7}, effectiveRect(ImageRect{}, size))
}

func TestImageSize_Empty(t *testing.T) {
	assert.True(t, ImageSize{Width: 0, Height: 5}.Empty())
	assert.False(t, ImageSize{Width: 5, Height: 5}.Empty())
}
