package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// Feature: sticker-certifier, Property 9: total size is the sum of sticker sizes
func TestProperty_TotalSizeIsSumOfStickerSizes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("TotalSize equals the sum of attached sticker sizes", prop.ForAll(
		func(sizes []int64) bool {
			pack := StickerPack{Stickers: make([]Sticker, len(sizes))}
			pack.SetStickerSizes(sizes)

			var want int64
			for _, s := range sizes {
				want += s
			}
			return pack.TotalSize == want
		},
		gen.SliceOf(gen.Int64Range(0, 500*1024)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestStickerPack_Clone(t *testing.T) {
	pack := StickerPack{
		Identifier: "cats",
		Stickers:   []Sticker{{ImageFileName: "a.webp", Emojis: []string{"😺"}}},
	}

	clone := pack.Clone()
	clone.Stickers[0].Emojis[0] = "🐶"
	clone.Stickers[0].ImageFileName = "b.webp"

	assert.Equal(t, "😺", pack.Stickers[0].Emojis[0])
	assert.Equal(t, "a.webp", pack.Stickers[0].ImageFileName)
}

func TestStickerPack_SummaryAndStoreLinks(t *testing.T) {
	pack := StickerPack{
		Identifier: "cats",
		Name:       "Cats",
		Animated:   true,
		Stickers:   make([]Sticker, 3),
	}
	pack.SetStickerSizes([]int64{10, 20, 30})
	pack.SetStoreLinks("https://play.google.com/x", "https://itunes.apple.com/y")

	summary := pack.Summary()
	assert.Equal(t, "cats", summary.Identifier)
	assert.Equal(t, 3, summary.StickerCount)
	assert.Equal(t, int64(60), summary.TotalSize)
	assert.True(t, summary.Animated)
	assert.Equal(t, "https://play.google.com/x", pack.AndroidPlayStoreLink)
	assert.Equal(t, "https://itunes.apple.com/y", pack.IOSAppStoreLink)
}

func TestStickerPack_VerifyAsset(t *testing.T) {
	certified := []byte("RIFF certified sticker")
	pack := StickerPack{Identifier: "cats"}
	assert.False(t, pack.VerifyAsset("01.webp", certified), "nothing certified yet")

	digests := map[string]string{"01.webp": AssetDigest(certified)}
	pack.SetAssetDigests(digests)
	digests["01.webp"] = "tampered"

	assert.True(t, pack.VerifyAsset("01.webp", certified))
	assert.False(t, pack.VerifyAsset("01.webp", []byte("RIFF edited sticker")))
	assert.False(t, pack.VerifyAsset("02.webp", certified))

	clone := pack.Clone()
	clone.AssetDigests["01.webp"] = "changed"
	assert.True(t, pack.VerifyAsset("01.webp", certified), "clones do not share digests")
}
