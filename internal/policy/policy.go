// Package policy holds the acceptance limits a sticker pack is certified against.
// The limits are versioned: V2 is the current rule set, V1 keeps the older
// tray image range for manifests produced against it.
package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// KB is the byte multiplier used by every size limit
const KB = 1024

// Version names
const (
	VersionV1 = "v1"
	VersionV2 = "v2"

	DefaultVersion = VersionV2
)

// Limits is one complete rule set. A tray dimension range with equal min and
// max means an exact size.
type Limits struct {
	Version string `yaml:"version" validate:"required"`

	MaxTextChars int `yaml:"max_text_chars" validate:"min=1"`

	MinStickers int `yaml:"min_stickers" validate:"min=1"`
	MaxStickers int `yaml:"max_stickers" validate:"gtefield=MinStickers"`
	MinEmojis   int `yaml:"min_emojis" validate:"min=0"`
	MaxEmojis   int `yaml:"max_emojis" validate:"gtefield=MinEmojis"`

	MaxTrayImageBytes      int64 `yaml:"max_tray_image_bytes" validate:"min=1"`
	MinTrayImageSide       int   `yaml:"min_tray_image_side" validate:"min=1"`
	MaxTrayImageSide       int   `yaml:"max_tray_image_side" validate:"gtefield=MinTrayImageSide"`
	MaxStaticStickerSize   int64 `yaml:"max_static_sticker_bytes" validate:"min=1"`
	MaxAnimatedStickerSize int64 `yaml:"max_animated_sticker_bytes" validate:"min=1"`
	StickerWidth           int   `yaml:"sticker_width" validate:"min=1"`
	StickerHeight          int   `yaml:"sticker_height" validate:"min=1"`

	MinFrameDurationMS int `yaml:"min_frame_duration_ms" validate:"min=0"`
	MaxTotalDurationMS int `yaml:"max_total_duration_ms" validate:"min=1"`

	MaxStaticAccessibilityChars   int `yaml:"max_static_accessibility_chars" validate:"min=0"`
	MaxAnimatedAccessibilityChars int `yaml:"max_animated_accessibility_chars" validate:"min=0"`

	PlayStoreDomain string `yaml:"play_store_domain" validate:"required,hostname"`
	AppStoreDomain  string `yaml:"app_store_domain" validate:"required,hostname"`

	StickerExtension   string   `yaml:"sticker_extension" validate:"required,startswith=."`
	TrayImageExtension []string `yaml:"tray_image_extensions" validate:"required,min=1,dive,startswith=."`
}

// V2 returns the current rule set: exact 96x96 tray images.
func V2() Limits {
	return Limits{
		Version:                       VersionV2,
		MaxTextChars:                  128,
		MinStickers:                   3,
		MaxStickers:                   30,
		MinEmojis:                     1,
		MaxEmojis:                     3,
		MaxTrayImageBytes:             50 * KB,
		MinTrayImageSide:              96,
		MaxTrayImageSide:              96,
		MaxStaticStickerSize:          100 * KB,
		MaxAnimatedStickerSize:        500 * KB,
		StickerWidth:                  512,
		StickerHeight:                 512,
		MinFrameDurationMS:            8,
		MaxTotalDurationMS:            10000,
		MaxStaticAccessibilityChars:   125,
		MaxAnimatedAccessibilityChars: 255,
		PlayStoreDomain:               "play.google.com",
		AppStoreDomain:                "itunes.apple.com",
		StickerExtension:              ".webp",
		TrayImageExtension:            []string{".png", ".webp"},
	}
}

// V1 returns the legacy rule set, which accepted any tray side from 24 to 512 pixels.
func V1() Limits {
	l := V2()
	l.Version = VersionV1
	l.MinTrayImageSide = 24
	l.MaxTrayImageSide = 512
	return l
}

// ForVersion returns the built-in rule set for a version name
func ForVersion(version string) (Limits, error) {
	switch strings.ToLower(strings.TrimSpace(version)) {
	case "", VersionV2:
		return V2(), nil
	case VersionV1:
		return V1(), nil
	default:
		return Limits{}, fmt.Errorf("unknown policy version: %s", version)
	}
}

// TrayIsExact reports whether the tray image must have one exact size
func (l Limits) TrayIsExact() bool {
	return l.MinTrayImageSide == l.MaxTrayImageSide
}

// MaxStickerBytes returns the sticker byte ceiling for a static or animated pack
func (l Limits) MaxStickerBytes(animated bool) int64 {
	if animated {
		return l.MaxAnimatedStickerSize
	}
	return l.MaxStaticStickerSize
}

// MaxAccessibilityChars returns the accessibility text limit for a static or animated pack
func (l Limits) MaxAccessibilityChars(animated bool) int {
	if animated {
		return l.MaxAnimatedAccessibilityChars
	}
	return l.MaxStaticAccessibilityChars
}

// Validate checks the limits for internal consistency
func (l Limits) Validate() error {
	if err := validator.New().Struct(l); err != nil {
		return fmt.Errorf("invalid policy %s: %w", l.Version, err)
	}
	return nil
}

// LoadFile reads a YAML policy file. The file starts from the built-in rule
// set named by its version field and overrides only the keys it lists.
// Unknown keys are rejected.
func LoadFile(path string) (Limits, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Limits{}, fmt.Errorf("failed to read policy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML policy content, see LoadFile
func Parse(data []byte) (Limits, error) {
	var header struct {
		Version string `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return Limits{}, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	limits, err := ForVersion(header.Version)
	if err != nil {
		return Limits{}, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&limits); err != nil && !errors.Is(err, io.EOF) {
		return Limits{}, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	if err := limits.Validate(); err != nil {
		return Limits{}, err
	}
	return limits, nil
}

// Marshal renders the limits as YAML
func (l Limits) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}
