// Command rastercodec decodes a PNG or JPEG image with the standard library
// and re-encodes it as PNG, JPEG, or BMP using this module's encoders.
//
// Usage:
//
//	rastercodec conv [options] <input>   any decodable image -> png/jpeg/bmp (use "-" for stdin)
//	rastercodec info <input>             print bitmap size/format after decode
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	rastercodec "github.com/aspectron/rastercodec"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "conv":
		err = runConv(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "rastercodec: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "rastercodec: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  rastercodec conv [options] <input>   Convert an image to png/jpeg/bmp
  rastercodec info <input>             Print decoded bitmap size/format

Use "-" as input to read from stdin, "-o -" to write to stdout.
`)
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func decodeToBitmap(r io.Reader) (*rastercodec.Bitmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := img.Bounds()
	bm := rastercodec.NewBitmap(rastercodec.ImageSize{Width: int32(b.Dx()), Height: int32(b.Dy())}, rastercodec.RGBA8)
	fillBitmapFromImage(bm, img)
	return bm, nil
}

// fillBitmapFromImage copies img's pixels into bm (RGBA8), which must
// already be sized to img's bounds.
func fillBitmapFromImage(bm *rastercodec.Bitmap, img image.Image) {
	b := img.Bounds()
	size := bm.Size()
	raw := make([]byte, int(size.Width)*int(size.Height)*4)
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			off := (y*int(size.Width) + x) * 4
			raw[off+0] = byte(r >> 8)
			raw[off+1] = byte(g >> 8)
			raw[off+2] = byte(bl >> 8)
			raw[off+3] = byte(a >> 8)
		}
	}
	bm.LoadRGBA8(raw)
}

func runConv(args []string) error {
	fs := flag.NewFlagSet("conv", flag.ContinueOnError)
	format := fs.String("f", "png", "output format: png/jpeg/bmp")
	output := fs.String("o", "", "output path (default: stdout)")
	quality := fs.Int("q", 90, "jpeg quality 0-100")
	compression := fs.Int("z", -1, "png compression 0-9 (-1=default)")
	palette := fs.Bool("palette", false, "png: quantize to a palette")
	flip := fs.Bool("flip", false, "flip rows vertically")
	withAlpha := fs.Bool("alpha", true, "bmp: include alpha channel")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("conv: expected exactly one input path")
	}

	in, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	bm, err := decodeToBitmap(in)
	if err != nil {
		return err
	}
	defer bm.Close()

	var mime string
	var out []byte
	switch *format {
	case "png":
		colorType := rastercodec.PNGColorRGBA
		if *palette {
			colorType = rastercodec.PNGColorPalette
		}
		mime, out, err = rastercodec.GeneratePNG(bm, rastercodec.PNGOptions{
			Flip: *flip, Compression: *compression, ColorType: colorType,
		})
	case "jpeg", "jpg":
		mime, out, err = rastercodec.GenerateJPEG(bm, rastercodec.JPEGOptions{Flip: *flip, Quality: *quality})
	case "bmp":
		mime, out, err = rastercodec.GenerateBMP(bm, rastercodec.BMPOptions{Flip: *flip, WithAlpha: *withAlpha})
	default:
		return fmt.Errorf("conv: unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	if mime == "" {
		return fmt.Errorf("conv: encode failed (unsupported pixel format for %s)", *format)
	}

	if *output == "" || *output == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(*output, out, 0o644)
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info: expected exactly one input path")
	}

	in, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	bm, err := decodeToBitmap(in)
	if err != nil {
		return err
	}
	defer bm.Close()

	size := bm.Size()
	fmt.Printf("size=%dx%d format=%s bytes=%d\n", size.Width, size.Height, bm.PixelFormat(), bm.DataSize())
	return nil
}
