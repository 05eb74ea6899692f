package rastercodec

import (
	"crypto/sha1"
	"encoding/binary"
)

const (
	bmpFileHeaderSize = 14
	bmpV4HeaderSize   = 108
	bmpPixelsOffset   = bmpFileHeaderSize + bmpV4HeaderSize
)

// BMPOptions configures GenerateBMP.
type BMPOptions struct {
	Rect      ImageRect
	Flip      bool
	WithAlpha bool
	Hash      *[sha1.Size]byte
}

// GenerateBMP encodes the bitmap as an uncompressed 32-bit BMP (a
// BITMAPFILEHEADER followed by a BITMAPV4HEADER carrying BI_BITFIELDS
// masks, followed by raw pixels). The source format must be RGBA8, ARGB8,
// or BGRA8.
func GenerateBMP(b *Bitmap, opts BMPOptions) (mime string, data []byte, err error) {
	var out []byte
	b.WithReadLock(func(pixels []byte, size ImageSize, format PixelFormat) {
		mime, out, err = generateBMP(pixels, size, format, opts)
	})
	return mime, out, err
}

func bmpMasks(format PixelFormat) (red, green, blue, alpha uint32, ok bool) {
	switch format {
	case RGBA8:
		return 0x000000FF, 0x0000FF00, 0x00FF0000, 0xFF000000, true
	case ARGB8:
		return 0x0000FF00, 0x00FF0000, 0xFF000000, 0x000000FF, true
	case BGRA8:
		return 0x00FF0000, 0x0000FF00, 0x000000FF, 0xFF000000, true
	default:
		return 0, 0, 0, 0, false
	}
}

func generateBMP(pixels []byte, size ImageSize, format PixelFormat, opts BMPOptions) (string, []byte, error) {
	redMask, greenMask, blueMask, alphaMask, ok := bmpMasks(format)
	if !ok {
		return "", nil, newError(InvalidArgument, "BMP source must be RGBA8/ARGB8/BGRA8, got "+format.String())
	}
	if !opts.WithAlpha {
		alphaMask = 0
	}

	rect := effectiveRect(opts.Rect, size)
	if rect.Empty() {
		return "", nil, newError(InvalidArgument, "clamped rectangle is empty")
	}

	bpp := format.BytesPerPixel()
	stride := int(size.Width) * bpp
	rowStride := int(rect.Width) * 4
	imageSize := rowStride * int(rect.Height)

	out := make([]byte, bmpPixelsOffset+imageSize)
	fillBMPHeaders(out, rect.Width, rect.Height, redMask, greenMask, blueMask, alphaMask)

	x0 := int(rect.Left) * bpp
	y, yEnd, yStep := rect.Top, rect.Bottom(), int32(1)
	if opts.Flip {
		y, yEnd, yStep = yEnd-1, y-1, -1
	}

	for i := int32(0); i < rect.Height; i++ {
		srcOff := int(y)*stride + x0
		dstRow := int(rect.Height-1-i) * rowStride
		copy(out[bmpPixelsOffset+dstRow:bmpPixelsOffset+dstRow+rowStride], pixels[srcOff:srcOff+rowStride])
		y += yStep
	}

	if opts.Hash != nil {
		*opts.Hash = sha1.Sum(out)
	}

	return "image/bmp", out, nil
}

// fillBMPHeaders writes a BITMAPFILEHEADER (14 bytes) followed by a
// BITMAPV4HEADER (108 bytes) at the byte offsets the Windows SDK defines
// for those structures, with BI_BITFIELDS (3) as the compression method.
func fillBMPHeaders(out []byte, width, height int32, redMask, greenMask, blueMask, alphaMask uint32) {
	const (
		biBitfields = 3

		ofsBfType    = 0
		ofsBfSize    = 2
		ofsBfOffBits = 10

		ofsV4Size        = bmpFileHeaderSize + 0
		ofsV4Width       = bmpFileHeaderSize + 4
		ofsV4Height      = bmpFileHeaderSize + 8
		ofsV4Planes      = bmpFileHeaderSize + 12
		ofsV4BitCount    = bmpFileHeaderSize + 14
		ofsV4Compression = bmpFileHeaderSize + 16
		ofsV4RedMask     = bmpFileHeaderSize + 40
		ofsV4GreenMask   = bmpFileHeaderSize + 44
		ofsV4BlueMask    = bmpFileHeaderSize + 48
		ofsV4AlphaMask   = bmpFileHeaderSize + 52
	)

	imageSize := uint32(width) * uint32(height) * 4
	fileSize := uint32(bmpPixelsOffset) + imageSize

	out[ofsBfType], out[ofsBfType+1] = 'B', 'M'
	binary.LittleEndian.PutUint32(out[ofsBfSize:], fileSize)
	binary.LittleEndian.PutUint32(out[ofsBfOffBits:], uint32(bmpPixelsOffset))

	binary.LittleEndian.PutUint32(out[ofsV4Size:], bmpV4HeaderSize)
	binary.LittleEndian.PutUint32(out[ofsV4Width:], uint32(width))
	binary.LittleEndian.PutUint32(out[ofsV4Height:], uint32(height))
	binary.LittleEndian.PutUint16(out[ofsV4Planes:], 1)
	binary.LittleEndian.PutUint16(out[ofsV4BitCount:], 32)
	binary.LittleEndian.PutUint32(out[ofsV4Compression:], biBitfields)
	binary.LittleEndian.PutUint32(out[ofsV4RedMask:], redMask)
	binary.LittleEndian.PutUint32(out[ofsV4GreenMask:], greenMask)
	binary.LittleEndian.PutUint32(out[ofsV4BlueMask:], blueMask)
	binary.LittleEndian.PutUint32(out[ofsV4AlphaMask:], alphaMask)
}
