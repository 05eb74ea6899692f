//go:build cgo

// Package cjpeg binds libjpeg-turbo's compressor through cgo, using the
// extended color spaces (JCS_EXT_RGBA/ARGB/BGRA/RGB) so pixels can be
// handed to the library in their native in-memory byte order without a
// per-row channel-reordering copy.
package cjpeg

/*
#cgo pkg-config: libjpeg
#include <stdio.h>
#include <stdlib.h>
#include <jpeglib.h>
#include <setjmp.h>

typedef struct {
	struct jpeg_error_mgr pub;
	jmp_buf setjmp_buffer;
} error_mgr;

static void error_exit_handler(j_common_ptr cinfo) {
	error_mgr *err = (error_mgr *)cinfo->err;
	longjmp(err->setjmp_buffer, 1);
}

static int run_compress(struct jpeg_compress_struct *cinfo, error_mgr *jerr,
                         JDIMENSION width, JDIMENSION height, int components,
                         J_COLOR_SPACE color_space, int quality,
                         unsigned char **outbuf, unsigned long *outsize,
                         unsigned char *rows, int stride) {
	if (setjmp(jerr->setjmp_buffer)) {
		return -1;
	}
	jpeg_create_compress(cinfo);
	jpeg_mem_dest(cinfo, outbuf, outsize);

	cinfo->image_width = width;
	cinfo->image_height = height;
	cinfo->input_components = components;
	cinfo->in_color_space = color_space;
	jpeg_set_defaults(cinfo);
	jpeg_set_quality(cinfo, quality, TRUE);
	jpeg_start_compress(cinfo, TRUE);

	JSAMPROW row_pointer[1];
	while (cinfo->next_scanline < cinfo->image_height) {
		row_pointer[0] = rows + cinfo->next_scanline * stride;
		jpeg_write_scanlines(cinfo, row_pointer, 1);
	}

	jpeg_finish_compress(cinfo);
	return 0;
}
*/
import "C"

import (
	"errors"
	"unsafe"
)

// ColorSpace selects the libjpeg extended input color space matching the
// exact in-memory byte order of the source pixels.
type ColorSpace int

const (
	ColorSpaceRGB ColorSpace = iota
	ColorSpaceRGBA
	ColorSpaceARGB
	ColorSpaceBGRA
)

func (c ColorSpace) components() int {
	if c == ColorSpaceRGB {
		return 3
	}
	return 4
}

func (c ColorSpace) jpegColorSpace() C.J_COLOR_SPACE {
	switch c {
	case ColorSpaceRGBA:
		return C.JCS_EXT_RGBA
	case ColorSpaceARGB:
		return C.JCS_EXT_ARGB
	case ColorSpaceBGRA:
		return C.JCS_EXT_BGRA
	default:
		return C.JCS_EXT_RGB
	}
}

// ErrCompress is returned when libjpeg's error handler longjmp's out of a
// compression call; the handler jumps straight back without printing
// libjpeg's message, so the underlying cause is not reported.
var ErrCompress = errors.New("cjpeg: libjpeg reported a compression error")

// Compress runs a full JPEG compression pass over rows (height rows of
// stride bytes each, already in the byte order implied by space) and
// returns the encoded JPEG byte stream.
func Compress(rows []byte, width, height, stride int, space ColorSpace, quality int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(rows) == 0 {
		return nil, errors.New("cjpeg: empty image")
	}

	var cinfo C.struct_jpeg_compress_struct
	var jerr C.error_mgr

	cinfo.err = C.jpeg_std_error(&jerr.pub)
	jerr.pub.error_exit = (*[0]byte)(C.error_exit_handler)

	var outbuf *C.uchar
	var outsize C.ulong

	ret := C.run_compress(&cinfo, &jerr,
		C.JDIMENSION(width), C.JDIMENSION(height),
		C.int(space.components()), space.jpegColorSpace(), C.int(quality),
		&outbuf, &outsize,
		(*C.uchar)(unsafe.Pointer(&rows[0])), C.int(stride))

	defer C.jpeg_destroy_compress(&cinfo)
	if ret != 0 {
		return nil, ErrCompress
	}
	defer C.free(unsafe.Pointer(outbuf))

	out := C.GoBytes(unsafe.Pointer(outbuf), C.int(outsize))
	return out, nil
}
