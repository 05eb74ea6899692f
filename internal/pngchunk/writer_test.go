package pngchunk

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_SignatureAndIHDR(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	w.Begin()
	w.WriteIHDR(4, 3, 8, ColorTypeRGBA)
	w.WriteIEND()

	out := buf.Bytes()
	require.GreaterOrEqual(t, len(out), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, out[:8])

	length := binary.BigEndian.Uint32(out[8:12])
	assert.Equal(t, uint32(13), length)
	assert.Equal(t, "IHDR", string(out[12:16]))

	width := binary.BigEndian.Uint32(out[16:20])
	height := binary.BigEndian.Uint32(out[20:24])
	assert.Equal(t, uint32(4), width)
	assert.Equal(t, uint32(3), height)
	assert.Equal(t, byte(8), out[24])
	assert.Equal(t, byte(ColorTypeRGBA), out[25])
}

func TestWriter_ChunkCRCVerifiable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	w.WriteIHDR(1, 1, 8, ColorTypeRGB)

	out := buf.Bytes()
	length := binary.BigEndian.Uint32(out[0:4])
	tag := out[4:8]
	payload := out[8 : 8+length]
	wantCRC := binary.BigEndian.Uint32(out[8+length : 12+length])

	crc := crc32.NewIEEE()
	crc.Write(tag)
	crc.Write(payload)
	assert.Equal(t, wantCRC, crc.Sum32())
}

func TestWriter_IDATRoundTripsThroughZlib(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, false)
	w.Begin()
	w.WriteIHDR(2, 1, 8, ColorTypeRGB)

	idat, err := w.BeginIDAT(-1)
	require.NoError(t, err)
	payload := []byte{1, 2, 3, 4, 5, 6}
	_, err = idat.Write(payload)
	require.NoError(t, err)
	require.NoError(t, idat.Close())
	w.WriteIEND()

	compressed := extractIDAT(t, buf.Bytes())
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	got, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriter_DigestTracksEmittedBytes(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	w.Begin()
	w.WriteIHDR(1, 1, 8, ColorTypeRGB)
	w.WriteIEND()

	assert.NotEqual(t, [20]byte{}, w.Digest())

	var noHash bytes.Buffer
	w2 := NewWriter(&noHash, false)
	w2.Begin()
	assert.Equal(t, [20]byte{}, w2.Digest())
}

// extractIDAT walks the chunk stream (skipping the 8-byte signature) and
// concatenates every IDAT chunk's payload.
func extractIDAT(t *testing.T, data []byte) []byte {
	t.Helper()
	var out []byte
	pos := 8
	for pos < len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		tag := string(data[pos+4 : pos+8])
		payload := data[pos+8 : pos+8+length]
		if tag == "IDAT" {
			out = append(out, payload...)
		}
		pos += 8 + length + 4
	}
	return out
}
