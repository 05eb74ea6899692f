package rastercodec

import (
	"bytes"
	"crypto/sha1"

	"github.com/aspectron/rastercodec/internal/pngchunk"
	"github.com/aspectron/rastercodec/internal/quant"
)

// PNGColorType selects the PNG color model GeneratePNG writes.
type PNGColorType int

const (
	PNGColorPalette PNGColorType = iota
	PNGColorRGB
	PNGColorRGBA
)

// PNGOptions configures GeneratePNG.
type PNGOptions struct {
	Rect        ImageRect // zero value means "the whole bitmap"
	Flip        bool
	Compression int // 0-9, or -1 for the backend default
	ColorType   PNGColorType
	NumColors   int // palette size when ColorType == PNGColorPalette; 0 means 256
	Hash        *[sha1.Size]byte
}

// GeneratePNG encodes the bitmap (or a sub-rectangle of it) as a PNG image.
// The bitmap must carry a 4-byte pixel format (RGBA8/ARGB8/BGRA8) for rgb,
// rgba, or palette output, or RGB8 for rgb/rgba output (RGB8 pixels are
// written with opaque alpha on the rgba path).
func GeneratePNG(b *Bitmap, opts PNGOptions) (mime string, data []byte, err error) {
	var out []byte
	b.WithReadLock(func(pixels []byte, size ImageSize, format PixelFormat) {
		mime, out, err = generatePNG(pixels, size, format, opts)
	})
	return mime, out, err
}

func generatePNG(pixels []byte, size ImageSize, format PixelFormat, opts PNGOptions) (string, []byte, error) {
	if !format.Encodable() {
		return "", nil, newError(InvalidArgument, "pixel format not encodable: "+format.String())
	}
	bpp := format.BytesPerPixel()
	if bpp != 4 && bpp != 3 {
		return "", nil, newError(InvalidArgument, "PNG source must be 3 or 4 bytes/pixel")
	}
	if opts.Compression < -1 || opts.Compression > 9 {
		return "", nil, newError(InvalidArgument, "compression must be in [-1, 9]")
	}

	rect := effectiveRect(opts.Rect, size)
	if rect.Empty() {
		return "", nil, newError(InvalidArgument, "clamped rectangle is empty")
	}
	stride := int(size.Width) * bpp

	bgrSwap := format == BGRA8
	argbSource := format == ARGB8
	alphaSwap := opts.ColorType == PNGColorRGBA && argbSource
	fillerSkip := opts.ColorType == PNGColorRGB && bpp == 4

	var buf bytes.Buffer
	w := pngchunk.NewWriter(&buf, opts.Hash != nil)
	w.Begin()

	var colorType pngchunk.ColorType
	var rowStride, x0, rowBpp int
	var rowSource []byte
	var paletteCount int
	var qres quant.Result

	switch opts.ColorType {
	case PNGColorPalette:
		if bpp != 4 {
			return "", nil, newError(InvalidArgument, "palette PNG source must be 4 bytes/pixel")
		}
		colorType = pngchunk.ColorTypePalette
		numColors := opts.NumColors
		if numColors <= 0 {
			numColors = 256
		}
		qres = quant.Quantize(pixels, stride, int(rect.Left), int(rect.Top), int(rect.Width), int(rect.Height), numColors)
		paletteCount = qres.Count
		rowSource = qres.Index
		rowStride = int(rect.Width)
		x0 = 0
		rowBpp = 1
	case PNGColorRGB:
		colorType = pngchunk.ColorTypeRGB
		rowSource = pixels
		rowStride = stride
		x0 = int(rect.Left) * bpp
		rowBpp = bpp
	default: // PNGColorRGBA
		colorType = pngchunk.ColorTypeRGBA
		rowSource = pixels
		rowStride = stride
		x0 = int(rect.Left) * bpp
		rowBpp = bpp
	}

	w.WriteIHDR(rect.Width, rect.Height, 8, colorType)

	if opts.ColorType == PNGColorPalette {
		entries := make([][3]byte, paletteCount)
		for i, c := range qres.RGB24[:paletteCount] {
			entries[i] = [3]byte{c.R, c.G, c.B}
		}
		w.WritePLTE(entries)
	}

	idat, err := w.BeginIDAT(opts.Compression)
	if err != nil {
		return "", nil, wrapError(BackendFailure, err, "starting IDAT stream")
	}

	y, yEnd, yStep := int32(0), rect.Height, int32(1)
	if opts.ColorType != PNGColorPalette {
		y, yEnd = rect.Top, rect.Bottom()
	}
	if opts.Flip {
		y, yEnd, yStep = yEnd-1, y-1, -1
	}

	outBpp := rowBpp
	if fillerSkip {
		outBpp = 3
	}
	if opts.ColorType == PNGColorRGBA {
		outBpp = 4
	}
	// Every PNG scanline in the IDAT stream is prefixed with a filter-type
	// byte (0 = None, used throughout here); rowBytes[0] stays 0 for the
	// life of the loop since writePNGRow only ever touches rowBytes[1:].
	rowBytes := make([]byte, 1+int(rect.Width)*outBpp)
	for n := int32(0); n < rect.Height; n++ {
		rowOff := int(y) * rowStride
		writePNGRow(rowBytes[1:], rowSource, rowOff, x0, int(rect.Width), rowBpp, bgrSwap, argbSource, alphaSwap, fillerSkip)
		if _, werr := idat.Write(rowBytes); werr != nil {
			return "", nil, wrapError(BackendFailure, werr, "writing PNG row")
		}
		y += yStep
	}
	if err := idat.Close(); err != nil {
		return "", nil, wrapError(BackendFailure, err, "closing IDAT stream")
	}

	w.WriteIEND()

	if opts.Hash != nil {
		*opts.Hash = w.Digest()
	}

	return "image/png", buf.Bytes(), nil
}

// writePNGRow copies one source row into dst, applying the channel
// orientation transforms decided for this encode. For the palette path
// rowBpp is 1 and the index bytes are copied as they are; the transform
// flags are not consulted.
func writePNGRow(dst, src []byte, rowOff, x0, width, rowBpp int, bgrSwap, argbSource, alphaSwap, fillerSkip bool) {
	if rowBpp == 1 {
		copy(dst, src[rowOff:rowOff+width])
		return
	}
	_ = alphaSwap // folded into the per-pixel unswizzle below

	outBpp := rowBpp
	if fillerSkip {
		outBpp = 3
	}
	if len(dst) == width*4 { // rgba output, including from an RGB8 source
		outBpp = 4
	}

	for x := 0; x < width; x++ {
		in := src[rowOff+x0+x*rowBpp : rowOff+x0+x*rowBpp+rowBpp]
		out := dst[x*outBpp : x*outBpp+outBpp]

		var r, g, b, a byte
		switch {
		case bgrSwap: // BGRA8 in memory: b,g,r,a
			b, g, r, a = in[0], in[1], in[2], in[3]
		case rowBpp == 4 && argbSource: // ARGB8 in memory: a,r,g,b
			a, r, g, b = in[0], in[1], in[2], in[3]
		case rowBpp == 4: // RGBA8 in memory: r,g,b,a
			r, g, b, a = in[0], in[1], in[2], in[3]
		default: // RGB8: r,g,b; alpha is opaque
			r, g, b, a = in[0], in[1], in[2], 255
		}

		if fillerSkip {
			out[0], out[1], out[2] = r, g, b
		} else if outBpp == 4 {
			out[0], out[1], out[2], out[3] = r, g, b, a
		} else {
			out[0], out[1], out[2] = r, g, b
		}
	}
}
