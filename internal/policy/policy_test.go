package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestV2_Literals(t *testing.T) {
	l := V2()

	assert.Equal(t, 128, l.MaxTextChars)
	assert.Equal(t, 3, l.MinStickers)
	assert.Equal(t, 30, l.MaxStickers)
	assert.Equal(t, 1, l.MinEmojis)
	assert.Equal(t, 3, l.MaxEmojis)
	assert.Equal(t, int64(50*1024), l.MaxTrayImageBytes)
	assert.True(t, l.TrayIsExact())
	assert.Equal(t, 96, l.MinTrayImageSide)
	assert.Equal(t, int64(100*1024), l.MaxStickerBytes(false))
	assert.Equal(t, int64(500*1024), l.MaxStickerBytes(true))
	assert.Equal(t, 512, l.StickerWidth)
	assert.Equal(t, 512, l.StickerHeight)
	assert.Equal(t, 8, l.MinFrameDurationMS)
	assert.Equal(t, 10000, l.MaxTotalDurationMS)
	assert.Equal(t, 125, l.MaxAccessibilityChars(false))
	assert.Equal(t, 255, l.MaxAccessibilityChars(true))
	assert.Equal(t, "play.google.com", l.PlayStoreDomain)
	assert.Equal(t, "itunes.apple.com", l.AppStoreDomain)
	assert.NoError(t, l.Validate())
}

func TestV1_TrayRange(t *testing.T) {
	l := V1()

	assert.False(t, l.TrayIsExact())
	assert.Equal(t, 24, l.MinTrayImageSide)
	assert.Equal(t, 512, l.MaxTrayImageSide)
	assert.NoError(t, l.Validate())
}

func TestForVersion(t *testing.T) {
	l, err := ForVersion("")
	require.NoError(t, err)
	assert.Equal(t, VersionV2, l.Version)

	l, err = ForVersion("V1")
	require.NoError(t, err)
	assert.Equal(t, VersionV1, l.Version)

	_, err = ForVersion("v9")
	assert.Error(t, err)
}

func TestParse_OverridesOnlyListedKeys(t *testing.T) {
	l, err := Parse([]byte("version: v1\nmax_stickers: 40\n"))
	require.NoError(t, err)

	assert.Equal(t, VersionV1, l.Version)
	assert.Equal(t, 40, l.MaxStickers)
	assert.Equal(t, 24, l.MinTrayImageSide)
	assert.Equal(t, 3, l.MinStickers)
}

func TestParse_Empty(t *testing.T) {
	l, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, V2(), l)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("max_stikers: 40\n"))
	assert.Error(t, err)
}

func TestParse_RejectsInconsistentLimits(t *testing.T) {
	_, err := Parse([]byte("min_stickers: 10\nmax_stickers: 5\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_total_duration_ms: 5000\n"), 0644))

	l, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, l.MaxTotalDurationMS)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshal_RoundTripsThroughParse(t *testing.T) {
	data, err := V1().Marshal()
	require.NoError(t, err)

	l, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, V1(), l)
}
