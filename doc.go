// Package rastercodec is an in-memory raster image codec library.
//
// Given a decoded Bitmap in one of several pixel formats, it produces a
// compressed byte stream in PNG, JPEG, or BMP, optionally restricted to a
// sub-rectangle and optionally vertically flipped. The package also exposes
// a frame-flow device abstraction (see the device subpackage) that carries
// frames through bounded queues with drop-on-overflow semantics.
//
// The package supports:
//   - PNG output (RGBA, RGB, and palette via Wu's color quantizer)
//   - JPEG output via a cgo binding to libjpeg-turbo
//   - BMP output (BITMAPFILEHEADER + BITMAPV4HEADER with bit-field masks)
//   - Nearest/bilinear/bicubic rescaling of RGBA rasters
//
// Basic usage:
//
//	bmp := rastercodec.NewBitmap(rastercodec.ImageSize{Width: 4, Height: 4}, rastercodec.RGBA8)
//	mime, png, err := rastercodec.GeneratePNG(bmp, rastercodec.PNGOptions{
//		ColorType: rastercodec.PNGColorRGBA,
//	})
package rastercodec
