package pack

import (
	"context"
	"fmt"
	"strings"

	"github.com/freewebtopdf/sticker-certifier/internal/assets"
	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/imaging/webptest"
)

var (
	stillSticker    = webptest.Static(512, 512)
	animatedSticker = webptest.Animated(512, 512, 20, 20)
	trayImage       = webptest.PNG(96, 96)
)

// testPack returns a well-formed pack with n stickers named NN.webp
func testPack(identifier string, n int, animated bool) domain.StickerPack {
	stickers := make([]domain.Sticker, n)
	for i := range stickers {
		stickers[i] = domain.Sticker{
			ImageFileName: fmt.Sprintf("%02d.webp", i+1),
			Emojis:        []string{"😺"},
		}
	}
	return domain.StickerPack{
		Identifier:       identifier,
		Name:             "Cats and friends",
		Publisher:        "Jane's studio",
		TrayImageFile:    "tray.png",
		ImageDataVersion: "1",
		Animated:         animated,
		Stickers:         stickers,
	}
}

// storeFor puts a valid tray image and one valid asset per sticker
func storeFor(packs ...domain.StickerPack) *assets.MemoryStore {
	store := assets.NewMemoryStore()
	for _, p := range packs {
		store.Put(p.Identifier, p.TrayImageFile, trayImage)
		for _, s := range p.Stickers {
			if p.Animated {
				store.Put(p.Identifier, s.ImageFileName, animatedSticker)
			} else {
				store.Put(p.Identifier, s.ImageFileName, stillSticker)
			}
		}
	}
	return store
}

// cancellingStore cancels the validation context once `after` fetches succeeded
type cancellingStore struct {
	domain.AssetStore
	cancel  context.CancelFunc
	after   int
	fetches int
}

func (s *cancellingStore) Fetch(ctx context.Context, packIdentifier, fileName string) ([]byte, error) {
	data, err := s.AssetStore.Fetch(ctx, packIdentifier, fileName)
	s.fetches++
	if s.fetches == s.after {
		s.cancel()
	}
	return data, err
}

// field is one key/value pair of a JSON object; value is raw JSON
type field struct {
	key   string
	value string
}

// object renders fields in order, keeping duplicates
func object(fields ...field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%q: %s", f.key, f.value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func array(values ...string) string {
	return "[" + strings.Join(values, ", ") + "]"
}

func str(s string) string {
	return fmt.Sprintf("%q", s)
}

func stickerJSON(file string, emojis ...string) string {
	quoted := make([]string, len(emojis))
	for i, e := range emojis {
		quoted[i] = str(e)
	}
	return object(field{"image_file", str(file)}, field{"emojis", array(quoted...)})
}

// packFields returns the fields of a well-formed pack object
func packFields(identifier string) []field {
	return []field{
		{"identifier", str(identifier)},
		{"name", str("Cats")},
		{"publisher", str("Jane")},
		{"tray_image_file", str("tray.png")},
		{"publisher_email", str("jane@example.com")},
		{"publisher_website", str("https://example.com")},
		{"privacy_policy_website", str("https://example.com/privacy")},
		{"license_agreement_website", str("https://example.com/license")},
		{"image_data_version", str("1")},
		{"avoid_cache", "false"},
		{"animated", "false"},
		{"stickers", array(
			stickerJSON("01.webp", "😺"),
			stickerJSON("02.webp", "😸", "😹"),
			stickerJSON("03.webp", "😻"),
		)},
	}
}

func manifestJSON(packs ...string) string {
	return object(
		field{"android_play_store_link", str("https://play.google.com/store/apps/details?id=com.example")},
		field{"ios_app_store_link", str("https://itunes.apple.com/app/id123")},
		field{"sticker_packs", array(packs...)},
	)
}
