// Package pngchunk assembles a PNG byte stream chunk by chunk: the 8-byte
// signature, then a sequence of length-prefixed, CRC32-trailed chunks
// (IHDR, optional PLTE, one or more IDAT, IEND).
//
// The chunk framing (tag + size + payload, four bytes each) mirrors the
// FourCC/size framing the teacher package uses for RIFF chunks (see
// internal/container.Chunk in the retrieval pack this was built from); PNG
// differs only in using big-endian lengths and appending a CRC32 trailer
// instead of a padding byte.
package pngchunk

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"encoding/binary"
	"hash"
	"hash/crc32"
	"io"
)

var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ColorType is the PNG IHDR color type.
type ColorType byte

const (
	ColorTypePalette ColorType = 3
	ColorTypeRGB     ColorType = 2
	ColorTypeRGBA    ColorType = 6
)

// Writer accumulates a PNG byte stream into a caller-owned buffer. Writer
// holds an exclusive borrow of that buffer for the duration of the encode,
// modeling the callback-driven sink the original backend library exposes
// (a write function plus a flush no-op) as a Go value instead of C function
// pointers with a user-data pointer.
type Writer struct {
	out     *bytes.Buffer
	hashing bool
	sha     hash.Hash
}

// NewWriter creates a Writer that appends encoded bytes to out.
// If trackDigest is true, the SHA-1 of every byte written is accumulated
// incrementally (as chunks are emitted, not as a second pass) and can be
// retrieved with Digest.
func NewWriter(out *bytes.Buffer, trackDigest bool) *Writer {
	w := &Writer{out: out}
	if trackDigest {
		w.hashing = true
		w.sha = sha1.New()
	}
	return w
}

// Begin writes the PNG signature.
func (w *Writer) Begin() {
	w.write(pngSignature[:])
}

// WriteIHDR writes the IHDR chunk for a width x height image at the given
// bit depth and color type, with no interlacing.
func (w *Writer) WriteIHDR(width, height int32, bitDepth byte, colorType ColorType) {
	var payload [13]byte
	binary.BigEndian.PutUint32(payload[0:4], uint32(width))
	binary.BigEndian.PutUint32(payload[4:8], uint32(height))
	payload[8] = bitDepth
	payload[9] = byte(colorType)
	payload[10] = 0 // compression method
	payload[11] = 0 // filter method
	payload[12] = 0 // interlace method: none
	w.writeChunk("IHDR", payload[:])
}

// WritePLTE writes a PLTE chunk from a slice of 24-bit RGB entries.
func (w *Writer) WritePLTE(entries [][3]byte) {
	payload := make([]byte, 0, len(entries)*3)
	for _, e := range entries {
		payload = append(payload, e[0], e[1], e[2])
	}
	w.writeChunk("PLTE", payload)
}

// BeginIDAT starts a deflate stream whose output is framed into IDAT
// chunks as it is produced. compression is a zlib compression level
// (0-9, or -1 for the back-end default).
func (w *Writer) BeginIDAT(compression int) (rowWriter io.WriteCloser, err error) {
	return newIDATWriter(w, compression)
}

// WriteIEND writes the terminating IEND chunk.
func (w *Writer) WriteIEND() {
	w.writeChunk("IEND", nil)
}

func (w *Writer) writeChunk(tag string, payload []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	w.write(length[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(payload)

	w.write([]byte(tag))
	w.write(payload)

	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	w.write(sum[:])
}

func (w *Writer) write(p []byte) {
	w.out.Write(p)
	if w.hashing {
		w.sha.Write(p)
	}
}

// Digest finalizes and returns the accumulated SHA-1, if digest tracking
// was requested.
func (w *Writer) Digest() [sha1.Size]byte {
	var out [sha1.Size]byte
	if !w.hashing {
		return out
	}
	copy(out[:], w.sha.Sum(nil))
	return out
}

// idatWriter frames zlib-compressed bytes into IDAT chunks as they are
// flushed, so the caller can stream rows through it without buffering the
// whole compressed image in memory.
type idatWriter struct {
	w  *Writer
	zw *zlib.Writer
	fw *flushFramer
}

// flushFramer collects zlib output and repackages it into IDAT chunks on
// every Write call (zlib.Writer writes in its own internal chunk sizes).
type flushFramer struct {
	w *Writer
}

func (f *flushFramer) Write(p []byte) (int, error) {
	if len(p) > 0 {
		f.w.writeChunk("IDAT", p)
	}
	return len(p), nil
}

func newIDATWriter(w *Writer, compression int) (*idatWriter, error) {
	fw := &flushFramer{w: w}
	level := compression
	if level < 0 {
		level = zlib.DefaultCompression
	}
	zw, err := zlib.NewWriterLevel(fw, level)
	if err != nil {
		return nil, err
	}
	return &idatWriter{w: w, zw: zw, fw: fw}, nil
}

func (iw *idatWriter) Write(p []byte) (int, error) {
	return iw.zw.Write(p)
}

func (iw *idatWriter) Close() error {
	return iw.zw.Close()
}
