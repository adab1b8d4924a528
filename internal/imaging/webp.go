package imaging

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/riff"
	"golang.org/x/image/webp"
)

var (
	fccALPH = riff.FourCC{'A', 'L', 'P', 'H'}
	fccANIM = riff.FourCC{'A', 'N', 'I', 'M'}
	fccANMF = riff.FourCC{'A', 'N', 'M', 'F'}
	fccVP8  = riff.FourCC{'V', 'P', '8', ' '}
	fccVP8L = riff.FourCC{'V', 'P', '8', 'L'}
	fccVP8X = riff.FourCC{'V', 'P', '8', 'X'}
	fccWEBP = riff.FourCC{'W', 'E', 'B', 'P'}
)

// VP8X feature flags
const (
	AnimationFlag = 0x02
	AlphaFlag     = 0x10
)

const (
	vp8xPayloadLen = 10
	animPayloadLen = 6
	anmfHeaderLen  = 16
)

// frame is one ANMF chunk
type frame struct {
	width    int
	height   int
	duration int
	data     []byte // ALPH/VP8/VP8L sub-chunks
}

// InspectWebP walks the RIFF chunks of a WebP file. Animated files are
// verified frame by frame; still files are decoded whole.
func InspectWebP(data []byte) (Info, error) {
	formType, r, err := riff.NewReader(bytes.NewReader(data))
	if err != nil {
		return Info{}, &FormatError{Format: FormatWebP, Reason: "invalid RIFF header", Err: err}
	}
	if formType != fccWEBP {
		return Info{}, &FormatError{Format: FormatWebP, Reason: "RIFF form type is not WEBP"}
	}

	var (
		seenVP8X  bool
		seenANIM  bool
		seenImage bool
		animated  bool
		canvasW   int
		canvasH   int
		frames    []frame
	)

	for {
		id, length, chunk, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Info{}, &FormatError{Format: FormatWebP, Reason: "truncated chunk", Err: err}
		}

		switch id {
		case fccVP8X:
			if seenVP8X || seenImage || len(frames) > 0 {
				return Info{}, &FormatError{Format: FormatWebP, Reason: "misplaced VP8X chunk"}
			}
			if length != vp8xPayloadLen {
				return Info{}, &FormatError{Format: FormatWebP, Reason: fmt.Sprintf("VP8X chunk has length %d", length)}
			}
			var buf [vp8xPayloadLen]byte
			if _, err := io.ReadFull(chunk, buf[:]); err != nil {
				return Info{}, &FormatError{Format: FormatWebP, Reason: "truncated VP8X chunk", Err: err}
			}
			seenVP8X = true
			animated = buf[0]&AnimationFlag != 0
			canvasW = uint24(buf[4:7]) + 1
			canvasH = uint24(buf[7:10]) + 1

		case fccANIM:
			if !animated {
				return Info{}, &FormatError{Format: FormatWebP, Reason: "ANIM chunk without animation flag"}
			}
			if length != animPayloadLen {
				return Info{}, &FormatError{Format: FormatWebP, Reason: fmt.Sprintf("ANIM chunk has length %d", length)}
			}
			seenANIM = true

		case fccANMF:
			if !animated || !seenANIM {
				return Info{}, &FormatError{Format: FormatWebP, Reason: "ANMF chunk outside an animation"}
			}
			payload, err := io.ReadAll(chunk)
			if err != nil {
				return Info{}, &FormatError{Format: FormatWebP, Reason: "truncated ANMF chunk", Err: err}
			}
			f, err := parseFrame(payload)
			if err != nil {
				return Info{}, err
			}
			frames = append(frames, f)

		case fccALPH, fccVP8, fccVP8L:
			if animated {
				return Info{}, &FormatError{Format: FormatWebP, Reason: fmt.Sprintf("%s chunk outside a frame of an animation", fourCC(id))}
			}
			seenImage = true
		}
	}

	if animated {
		return animatedInfo(canvasW, canvasH, frames)
	}
	return stillInfo(data)
}

func stillInfo(data []byte) (Info, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return Info{}, &FormatError{Format: FormatWebP, Reason: "cannot decode image", Err: err}
	}
	bounds := img.Bounds()
	return Info{
		Format: FormatWebP,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Frames: 1,
	}, nil
}

func animatedInfo(canvasW, canvasH int, frames []frame) (Info, error) {
	if len(frames) == 0 {
		return Info{}, &FormatError{Format: FormatWebP, Reason: "animation has no frames"}
	}

	durations := make([]int, len(frames))
	for i, f := range frames {
		if err := decodeFrame(f); err != nil {
			return Info{}, &FormatError{Format: FormatWebP, Reason: fmt.Sprintf("cannot decode frame %d", i), Err: err}
		}
		durations[i] = f.duration
	}

	return Info{
		Format:         FormatWebP,
		Width:          canvasW,
		Height:         canvasH,
		Frames:         len(frames),
		FrameDurations: durations,
	}, nil
}

func parseFrame(payload []byte) (frame, error) {
	if len(payload) < anmfHeaderLen {
		return frame{}, &FormatError{Format: FormatWebP, Reason: fmt.Sprintf("ANMF chunk has length %d", len(payload))}
	}
	return frame{
		width:    uint24(payload[6:9]) + 1,
		height:   uint24(payload[9:12]) + 1,
		duration: uint24(payload[12:15]),
		data:     payload[anmfHeaderLen:],
	}, nil
}

// decodeFrame re-wraps the frame bitstream as a still WebP file and decodes it
func decodeFrame(f frame) error {
	var body bytes.Buffer
	body.Write(fccWEBP[:])
	if bytes.HasPrefix(f.data, fccALPH[:]) {
		var vp8x [vp8xPayloadLen]byte
		vp8x[0] = AlphaFlag
		putUint24(vp8x[4:7], f.width-1)
		putUint24(vp8x[7:10], f.height-1)
		writeChunk(&body, fccVP8X, vp8x[:])
	}
	body.Write(f.data)

	var file bytes.Buffer
	file.WriteString("RIFF")
	_ = binary.Write(&file, binary.LittleEndian, uint32(body.Len()))
	file.Write(body.Bytes())

	img, err := webp.Decode(&file)
	if err != nil {
		return err
	}
	if b := img.Bounds(); b.Dx() != f.width || b.Dy() != f.height {
		return fmt.Errorf("frame bitstream is %dx%d, header says %dx%d", b.Dx(), b.Dy(), f.width, f.height)
	}
	return nil
}

func writeChunk(w *bytes.Buffer, id riff.FourCC, payload []byte) {
	w.Write(id[:])
	_ = binary.Write(w, binary.LittleEndian, uint32(len(payload)))
	w.Write(payload)
	if len(payload)%2 == 1 {
		w.WriteByte(0)
	}
}

func uint24(b []byte) int {
	return int(b[0]) | int(b[1])<<8 | int(b[2])<<16
}

func putUint24(b []byte, v int) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

func fourCC(id riff.FourCC) string {
	return string(id[:])
}
