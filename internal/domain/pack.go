package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
)

// StickerPack is a named bundle of stickers with shared metadata, as described
// by one entry of the manifest's sticker_packs array.
// Store links are manifest-wide and copied onto every pack after parsing.
type StickerPack struct {
	Identifier              string    `json:"identifier"`
	Name                    string    `json:"name"`
	Publisher               string    `json:"publisher"`
	TrayImageFile           string    `json:"tray_image_file"`
	PublisherEmail          string    `json:"publisher_email,omitempty"`
	PublisherWebsite        string    `json:"publisher_website,omitempty"`
	PrivacyPolicyWebsite    string    `json:"privacy_policy_website,omitempty"`
	LicenseAgreementWebsite string    `json:"license_agreement_website,omitempty"`
	AndroidPlayStoreLink    string    `json:"android_play_store_link,omitempty"`
	IOSAppStoreLink         string    `json:"ios_app_store_link,omitempty"`
	ImageDataVersion        string    `json:"image_data_version"`
	AvoidCache              bool      `json:"avoid_cache"`
	Animated                bool      `json:"animated"`
	Stickers                []Sticker `json:"stickers"`
	TotalSize               int64     `json:"total_size"` // Sum of sticker sizes, zero until sizes are attached

	// AssetDigests maps tray and sticker file names to the SHA-256 of the
	// bytes that were certified. Empty until the pack passes validation.
	AssetDigests map[string]string `json:"-"`
}

// Sticker is a single image in a pack. Size is zero until the asset has been read.
type Sticker struct {
	ImageFileName     string   `json:"image_file"`
	Emojis            []string `json:"emojis"`
	AccessibilityText string   `json:"accessibility_text,omitempty"`
	Size              int64    `json:"size"`
}

// SetStickerSizes attaches per-sticker byte sizes and recomputes TotalSize.
// sizes must be in sticker order; extra entries are ignored.
func (p *StickerPack) SetStickerSizes(sizes []int64) {
	for i := range p.Stickers {
		if i < len(sizes) {
			p.Stickers[i].Size = sizes[i]
		}
	}
	p.recomputeTotalSize()
}

func (p *StickerPack) recomputeTotalSize() {
	var total int64
	for _, s := range p.Stickers {
		total += s.Size
	}
	p.TotalSize = total
}

// SetStoreLinks copies the manifest-wide store links onto the pack.
func (p *StickerPack) SetStoreLinks(androidPlayStoreLink, iosAppStoreLink string) {
	p.AndroidPlayStoreLink = androidPlayStoreLink
	p.IOSAppStoreLink = iosAppStoreLink
}

// AssetDigest returns the hex SHA-256 of asset bytes
func AssetDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SetAssetDigests records the digests of the certified asset bytes
func (p *StickerPack) SetAssetDigests(digests map[string]string) {
	p.AssetDigests = maps.Clone(digests)
}

// VerifyAsset reports whether data is exactly the certified content of
// fileName. Files without a recorded digest never verify.
func (p *StickerPack) VerifyAsset(fileName string, data []byte) bool {
	want, ok := p.AssetDigests[fileName]
	return ok && want == AssetDigest(data)
}

// Clone returns a deep copy, so callers can hand packs out without sharing sticker slices.
func (p StickerPack) Clone() StickerPack {
	out := p
	out.Stickers = make([]Sticker, len(p.Stickers))
	for i, s := range p.Stickers {
		s.Emojis = slices.Clone(s.Emojis)
		out.Stickers[i] = s
	}
	out.AssetDigests = maps.Clone(p.AssetDigests)
	return out
}

// PackSummary is the listing view of a certified pack
type PackSummary struct {
	Identifier       string `json:"identifier"`
	Name             string `json:"name"`
	Publisher        string `json:"publisher"`
	TrayImageFile    string `json:"tray_image_file"`
	ImageDataVersion string `json:"image_data_version"`
	Animated         bool   `json:"animated"`
	StickerCount     int    `json:"sticker_count"`
	TotalSize        int64  `json:"total_size"`
}

// Summary returns the listing view of the pack
func (p *StickerPack) Summary() PackSummary {
	return PackSummary{
		Identifier:       p.Identifier,
		Name:             p.Name,
		Publisher:        p.Publisher,
		TrayImageFile:    p.TrayImageFile,
		ImageDataVersion: p.ImageDataVersion,
		Animated:         p.Animated,
		StickerCount:     len(p.Stickers),
		TotalSize:        p.TotalSize,
	}
}
