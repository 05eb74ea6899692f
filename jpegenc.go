package rastercodec

import (
	"crypto/sha1"

	"github.com/aspectron/rastercodec/internal/cjpeg"
)

// JPEGOptions configures GenerateJPEG.
type JPEGOptions struct {
	Rect    ImageRect
	Flip    bool
	Quality int // 0-100; out-of-range fails with InvalidArgument
	Hash    *[sha1.Size]byte
}

// GenerateJPEG encodes the bitmap as a baseline JPEG. The source format
// must be RGBA8, ARGB8, BGRA8, or RGB8; its exact byte order is passed to
// the backend as the matching extended color space so no channel reorder
// is needed before compression.
func GenerateJPEG(b *Bitmap, opts JPEGOptions) (mime string, data []byte, err error) {
	var out []byte
	b.WithReadLock(func(pixels []byte, size ImageSize, format PixelFormat) {
		mime, out, err = generateJPEG(pixels, size, format, opts)
	})
	return mime, out, err
}

func generateJPEG(pixels []byte, size ImageSize, format PixelFormat, opts JPEGOptions) (string, []byte, error) {
	space, ok := jpegColorSpace(format)
	if !ok {
		return "", nil, nil
	}

	if opts.Quality < 0 || opts.Quality > 100 {
		return "", nil, newError(InvalidArgument, "quality must be in [0, 100]")
	}
	quality := opts.Quality

	bpp := format.BytesPerPixel()
	rect := effectiveRect(opts.Rect, size)
	if rect.Empty() {
		return "", nil, newError(InvalidArgument, "clamped rectangle is empty")
	}
	stride := int(size.Width) * bpp

	rowStride := int(rect.Width) * bpp
	rows := make([]byte, int(rect.Height)*rowStride)

	y, yEnd, yStep := rect.Top, rect.Bottom(), int32(1)
	if opts.Flip {
		y, yEnd, yStep = yEnd-1, y-1, -1
	}
	x0 := int(rect.Left) * bpp
	for n := int32(0); n < rect.Height; n++ {
		srcOff := int(y)*stride + x0
		dstOff := int(n) * rowStride
		copy(rows[dstOff:dstOff+rowStride], pixels[srcOff:srcOff+rowStride])
		y += yStep
	}

	out, err := cjpeg.Compress(rows, int(rect.Width), int(rect.Height), rowStride, space, quality)
	if err != nil {
		return "", nil, wrapError(BackendFailure, err, "libjpeg compression failed")
	}

	if opts.Hash != nil {
		*opts.Hash = sha1.Sum(out)
	}

	return "image/jpeg", out, nil
}

func jpegColorSpace(format PixelFormat) (cjpeg.ColorSpace, bool) {
	switch format {
	case RGBA8:
		return cjpeg.ColorSpaceRGBA, true
	case ARGB8:
		return cjpeg.ColorSpaceARGB, true
	case BGRA8:
		return cjpeg.ColorSpaceBGRA, true
	case RGB8:
		return cjpeg.ColorSpaceRGB, true
	default:
		return 0, false
	}
}
