package rastercodec

import (
	"crypto/sha1"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBMP_HeaderLayout(t *testing.T) {
	bm := NewBitmap(ImageSize{Width: 2, Height: 3}, RGBA8)
	mime, out, err := GenerateBMP(bm, BMPOptions{WithAlpha: true})
	require.NoError(t, err)
	assert.Equal(t, "image/bmp", mime)
	require.Len(t, out, bmpPixelsOffset+2*3*4)

	assert.Equal(t, "BM", string(out[0:2]))
	fileSize := binary.LittleEndian.Uint32(out[2:6])
	assert.Equal(t, uint32(bmpPixelsOffset+2*3*4), fileSize)
	offBits := binary.LittleEndian.Uint32(out[10:14])
	assert.Equal(t, uint32(bmpPixelsOffset), offBits)

	v4Size := binary.LittleEndian.Uint32(out[14:18])
	assert.Equal(t, uint32(108), v4Size)
	width := int32(binary.LittleEndian.Uint32(out[18:22]))
	height := int32(binary.LittleEndian.Uint32(out[22:26]))
	assert.Equal(t, int32(2), width)
	assert.Equal(t, int32(3), height)
	bitCount := binary.LittleEndian.Uint16(out[28:30])
	assert.Equal(t, uint16(32), bitCount)
	compression := binary.LittleEndian.Uint32(out[30:34])
	assert.Equal(t, uint32(3), compression) // BI_BITFIELDS

	redMask := binary.LittleEndian.Uint32(out[54:58])
	assert.Equal(t, uint32(0x000000FF), redMask)
}

func TestGenerateBMP_AlphaMaskZeroedWithoutWithAlpha(t *testing.T) {
	bm := NewBitmap(ImageSize{Width: 1, Height: 1}, RGBA8)
	_, out, err := GenerateBMP(bm, BMPOptions{WithAlpha: false})
	require.NoError(t, err)
	alphaMask := binary.LittleEndian.Uint32(out[bmpFileHeaderSize+52 : bmpFileHeaderSize+56])
	assert.Equal(t, uint32(0), alphaMask)
}

func TestGenerateBMP_BottomUpRowOrder(t *testing.T) {
	bm := NewBitmap(ImageSize{Width: 1, Height: 2}, RGBA8)
	data := bm.data
	copy(data, []byte{10, 10, 10, 255, 20, 20, 20, 255})

	_, out, err := GenerateBMP(bm, BMPOptions{WithAlpha: true})
	require.NoError(t, err)

	firstPixelRow := out[bmpPixelsOffset : bmpPixelsOffset+4]
	lastPixelRow := out[bmpPixelsOffset+4 : bmpPixelsOffset+8]
	// BMP rows are bottom-up in the file, so row 0 (value 10) lands last.
	assert.Equal(t, byte(20), firstPixelRow[0])
	assert.Equal(t, byte(10), lastPixelRow[0])
}

func TestGenerateBMP_RejectsUnsupportedFormat(t *testing.T) {
	bm := NewBitmap(ImageSize{Width: 2, Height: 2}, RGB8)
	_, _, err := GenerateBMP(bm, BMPOptions{})
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidArgument))
}

func TestGenerateBMP_FlipReversesRowOrder(t *testing.T) {
	bm := NewBitmap(ImageSize{Width: 1, Height: 2}, RGBA8)
	data := bm.data
	copy(data, []byte{10, 10, 10, 255, 20, 20, 20, 255})

	_, normal, err := GenerateBMP(bm, BMPOptions{WithAlpha: true})
	require.NoError(t, err)
	_, flipped, err := GenerateBMP(bm, BMPOptions{WithAlpha: true, Flip: true})
	require.NoError(t, err)

	assert.NotEqual(t, normal[bmpPixelsOffset:], flipped[bmpPixelsOffset:])
}

func TestGenerateBMP_HashMatchesOutputBytes(t *testing.T) {
	bm := NewBitmap(ImageSize{Width: 2, Height: 2}, RGBA8)
	var hash [sha1.Size]byte
	_, out, err := GenerateBMP(bm, BMPOptions{WithAlpha: true, Hash: &hash})
	require.NoError(t, err)
	assert.Equal(t, sha1.Sum(out), hash)
}
