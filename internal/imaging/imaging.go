// Package imaging inspects sticker and tray image containers: format, pixel
// dimensions, frame count and frame timing. Images are decoded to verify their
// integrity but never re-encoded.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png" // tray images may be PNG

	_ "golang.org/x/image/webp" // registers the "webp" format with image.Decode
)

// Format names an image container
type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
)

// Info describes a decoded image container
type Info struct {
	Format         Format
	Width          int
	Height         int
	Frames         int
	FrameDurations []int // milliseconds, one entry per frame of an animation
}

// Animated reports whether the container holds more than one frame
func (i Info) Animated() bool {
	return i.Frames > 1
}

// TotalDuration returns the summed frame durations in milliseconds
func (i Info) TotalDuration() int {
	total := 0
	for _, d := range i.FrameDurations {
		total += d
	}
	return total
}

// FormatError reports a corrupt or unsupported image container
type FormatError struct {
	Format Format
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	prefix := "image"
	if e.Format != "" {
		prefix = string(e.Format)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Inspect sniffs the container and dispatches to the matching decoder.
// WebP is handled natively so animations are understood; anything else goes
// through the image package's registered decoders.
func Inspect(data []byte) (Info, error) {
	if IsWebP(data) {
		return InspectWebP(data)
	}

	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Info{}, &FormatError{Reason: "unsupported or corrupt image", Err: err}
	}

	bounds := img.Bounds()
	return Info{
		Format: Format(name),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Frames: 1,
	}, nil
}

// IsWebP reports whether data starts with a RIFF/WEBP header
func IsWebP(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}
