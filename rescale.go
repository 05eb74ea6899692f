package rastercodec

import "github.com/aspectron/rastercodec/internal/rescale"

// RescaleMode selects the resampling kernel Rescale uses.
type RescaleMode int

const (
	RescaleNearest  RescaleMode = RescaleMode(rescale.Nearest)
	RescaleBilinear RescaleMode = RescaleMode(rescale.Bilinear)
	RescaleBicubic  RescaleMode = RescaleMode(rescale.Bicubic)
)

// RescaleParams are the logical-space positioning/scale parameters described
// in spec.md §4.6: scale 1 fills the destination exactly, pos 0 centers,
// pos 1 shifts the sample window by half a destination size.
type RescaleParams struct {
	XPos, YPos     float64
	XScale, YScale float64
}

// DefaultRescaleParams centers the source with a 1:1 fill.
func DefaultRescaleParams() RescaleParams {
	return RescaleParams{XScale: 1, YScale: 1}
}

// Rescale resamples b (which must carry a 4-byte-per-pixel format) to
// dstWidth x dstHeight using mode, returning a freshly allocated Bitmap in
// the same pixel format. The source bitmap is untouched.
func Rescale(b *Bitmap, dstWidth, dstHeight int32, mode RescaleMode, params RescaleParams) (*Bitmap, error) {
	var out *Bitmap
	var err error
	b.WithReadLock(func(pixels []byte, size ImageSize, format PixelFormat) {
		if format.BytesPerPixel() != 4 {
			err = newError(InvalidArgument, "rescale source must be 4 bytes/pixel, got "+format.String())
			return
		}
		if size.Empty() {
			err = newError(InvalidArgument, "rescale source bitmap is empty")
			return
		}
		if dstWidth <= 0 || dstHeight <= 0 {
			err = newError(InvalidArgument, "rescale destination dimensions must be positive")
			return
		}

		raw := rescale.Rescale(pixels, int(size.Width), int(size.Height),
			rescale.Mode(mode), int(dstWidth), int(dstHeight), rescale.Params(params))

		out = NewBitmap(ImageSize{Width: dstWidth, Height: dstHeight}, format)
		out.LoadRGBA8(raw)
	})
	return out, err
}
