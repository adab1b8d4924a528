package imaging

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freewebtopdf/sticker-certifier/internal/imaging/webptest"
)

func TestInspect_StaticWebP(t *testing.T) {
	info, err := Inspect(webptest.Static(512, 512))
	require.NoError(t, err)

	assert.Equal(t, FormatWebP, info.Format)
	assert.Equal(t, 512, info.Width)
	assert.Equal(t, 512, info.Height)
	assert.Equal(t, 1, info.Frames)
	assert.False(t, info.Animated())
	assert.Zero(t, info.TotalDuration())
}

func TestInspect_PaddedStaticWebPSkipsUnknownChunks(t *testing.T) {
	data := webptest.Pad(webptest.Static(96, 96), 20*1024)
	assert.Len(t, data, 20*1024)

	info, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, 96, info.Width)
	assert.Equal(t, 96, info.Height)
}

func TestInspect_AnimatedWebP(t *testing.T) {
	info, err := Inspect(webptest.Animated(512, 512, 100, 40, 60))
	require.NoError(t, err)

	assert.Equal(t, FormatWebP, info.Format)
	assert.Equal(t, 512, info.Width)
	assert.Equal(t, 512, info.Height)
	assert.Equal(t, 3, info.Frames)
	assert.True(t, info.Animated())
	assert.Equal(t, []int{100, 40, 60}, info.FrameDurations)
	assert.Equal(t, 200, info.TotalDuration())
}

func TestInspect_AnimatedWebPWithSingleFrame(t *testing.T) {
	info, err := Inspect(webptest.Animated(64, 64, 50))
	require.NoError(t, err)

	assert.Equal(t, 1, info.Frames)
	assert.False(t, info.Animated())
	assert.Equal(t, []int{50}, info.FrameDurations)
}

func TestInspect_PNG(t *testing.T) {
	info, err := Inspect(webptest.PNG(96, 96))
	require.NoError(t, err)

	assert.Equal(t, FormatPNG, info.Format)
	assert.Equal(t, 96, info.Width)
	assert.Equal(t, 96, info.Height)
	assert.Equal(t, 1, info.Frames)
}

func TestInspect_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"corrupt bitstream", webptest.Corrupt()},
		{"truncated", webptest.Static(512, 512)[:20]},
		{"animation without frames", webptest.File(
			webptest.Chunk("VP8X", []byte{AnimationFlag, 0, 0, 0, 0xff, 0x01, 0, 0xff, 0x01, 0}),
			webptest.Chunk("ANIM", make([]byte, 6)),
		)},
		{"frame outside animation", webptest.File(
			webptest.Chunk("ANMF", webptest.Frame(8, 8, 10, webptest.Chunk("VP8L", webptest.VP8L(8, 8)))),
		)},
		{"frame with corrupt bitstream", webptest.File(
			webptest.Chunk("VP8X", []byte{AnimationFlag, 0, 0, 0, 7, 0, 0, 7, 0, 0}),
			webptest.Chunk("ANIM", make([]byte, 6)),
			webptest.Chunk("ANMF", webptest.Frame(8, 8, 10, webptest.Chunk("VP8L", []byte{0, 1, 2, 3}))),
		)},
		{"frame size mismatch", webptest.File(
			webptest.Chunk("VP8X", []byte{AnimationFlag, 0, 0, 0, 7, 0, 0, 7, 0, 0}),
			webptest.Chunk("ANIM", make([]byte, 6)),
			webptest.Chunk("ANMF", webptest.Frame(8, 8, 10, webptest.Chunk("VP8L", webptest.VP8L(4, 4)))),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inspect(tt.data)
			require.Error(t, err)

			var formatErr *FormatError
			assert.True(t, errors.As(err, &formatErr), "expected *FormatError, got %T", err)
		})
	}
}

func TestIsWebP(t *testing.T) {
	assert.True(t, IsWebP(webptest.Static(8, 8)))
	assert.False(t, IsWebP(webptest.PNG(8, 8)))
	assert.False(t, IsWebP([]byte("RIFF")))
}

// Feature: sticker-certifier, Property 6: frame timing survives the container walk
func TestProperty_FrameDurationsRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("durations written into ANMF headers are read back in order", prop.ForAll(
		func(durations []int) bool {
			info, err := Inspect(webptest.Animated(16, 16, durations...))
			if err != nil {
				return false
			}
			if info.Frames != len(durations) {
				return false
			}
			total := 0
			for i, d := range durations {
				if info.FrameDurations[i] != d {
					return false
				}
				total += d
			}
			return info.TotalDuration() == total
		},
		gen.SliceOfN(5, gen.IntRange(0, 1<<24-1)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: sticker-certifier, Property 7: dimensions survive the container walk
func TestProperty_StillDimensionsRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25
	properties := gopter.NewProperties(parameters)

	properties.Property("a still WebP reports the size encoded in its bitstream", prop.ForAll(
		func(w, h int) bool {
			info, err := Inspect(webptest.Static(w, h))
			return err == nil && info.Width == w && info.Height == h && info.Frames == 1
		},
		gen.IntRange(1, 600),
		gen.IntRange(1, 600),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
