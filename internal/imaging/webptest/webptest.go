// Package webptest builds small, valid image files for tests. Every WebP it
// produces uses a lossless bitstream whose pixels are all transparent black,
// so files stay tiny whatever their dimensions.
package webptest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
)

const (
	animationFlag = 0x02
	alphaFlag     = 0x10
)

// VP8L returns a lossless bitstream for a w x h image
func VP8L(w, h int) []byte {
	var bw bitWriter
	bw.write(0x2f, 8) // signature
	bw.write(uint64(w-1), 14)
	bw.write(uint64(h-1), 14)
	bw.write(0, 1) // alpha hint
	bw.write(0, 3) // version
	bw.write(0, 1) // no transform
	bw.write(0, 1) // no color cache
	bw.write(0, 1) // no meta prefix codes
	// green, red, blue, alpha and distance codes: simple, one 1-bit symbol, zero
	for i := 0; i < 5; i++ {
		bw.write(1, 1)
		bw.write(0, 1)
		bw.write(0, 1)
		bw.write(0, 1)
	}
	return bw.bytes()
}

// Static returns a still WebP file of w x h pixels
func Static(w, h int) []byte {
	return File(Chunk("VP8L", VP8L(w, h)))
}

// Animated returns an animated WebP with one full-canvas frame per duration (ms)
func Animated(w, h int, durations ...int) []byte {
	vp8x := make([]byte, 10)
	vp8x[0] = animationFlag
	putUint24(vp8x[4:7], w-1)
	putUint24(vp8x[7:10], h-1)

	chunks := [][]byte{
		Chunk("VP8X", vp8x),
		Chunk("ANIM", make([]byte, 6)),
	}
	for _, d := range durations {
		chunks = append(chunks, Chunk("ANMF", Frame(w, h, d, Chunk("VP8L", VP8L(w, h)))))
	}
	return File(chunks...)
}

// Frame returns an ANMF payload placing the given sub-chunks at the origin
func Frame(w, h, duration int, subChunks ...[]byte) []byte {
	hdr := make([]byte, 16)
	putUint24(hdr[6:9], w-1)
	putUint24(hdr[9:12], h-1)
	putUint24(hdr[12:15], duration)
	for _, c := range subChunks {
		hdr = append(hdr, c...)
	}
	return hdr
}

// Corrupt returns a WebP whose VP8L chunk carries a bad signature
func Corrupt() []byte {
	data := VP8L(512, 512)
	data[0] = 0x00
	return File(Chunk("VP8L", data))
}

// Chunk encodes one RIFF chunk, padded to an even length
func Chunk(id string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)
	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

// File wraps chunks in a RIFF/WEBP container
func File(chunks ...[]byte) []byte {
	var body bytes.Buffer
	body.WriteString("WEBP")
	for _, c := range chunks {
		body.Write(c)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(body.Len()))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

// Pad appends an unknown chunk to a WebP file so it is at least size bytes.
// RIFF files always have an even length, so odd sizes round up by one.
func Pad(file []byte, size int) []byte {
	missing := size - len(file)
	if missing <= 0 {
		return file
	}
	payload := missing - 8
	if payload < 0 {
		payload = 0
	}

	out := make([]byte, 0, len(file)+8+payload+1)
	out = append(out, file...)
	out = append(out, Chunk("JUNK", make([]byte, payload))...)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)-8))
	return out
}

// PNG returns an opaque w x h PNG
func PNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 0xff, G: 0xcc, A: 0xff})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

type bitWriter struct {
	buf  []byte
	acc  uint64
	bits uint
}

// write appends the low n bits of v, least significant bit first
func (b *bitWriter) write(v uint64, n uint) {
	b.acc |= (v & (1<<n - 1)) << b.bits
	b.bits += n
	for b.bits >= 8 {
		b.buf = append(b.buf, byte(b.acc))
		b.acc >>= 8
		b.bits -= 8
	}
}

func (b *bitWriter) bytes() []byte {
	out := b.buf
	if b.bits > 0 {
		out = append(out, byte(b.acc))
	}
	return out
}

func putUint24(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}
