package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputValidator_ValidateText(t *testing.T) {
	v := NewInputValidator()

	tests := []struct {
		name    string
		value   string
		wantErr string
	}{
		{"simple", "Cuppy", ""},
		{"punctuation and spaces", "Jane's pack, vol. 2 - cats_and dogs", ""},
		{"every whitespace", "a b\tc\nd\re\ff\vg", ""},
		{"empty", "", "is empty"},
		{"too long", strings.Repeat("a", 129), "cannot exceed 128 characters"},
		{"exactly max", strings.Repeat("a", 128), ""},
		{"invalid char slash", "a/b", "contains invalid characters"},
		{"invalid char unicode", "café", "contains invalid characters"},
		{"double dot", "a..b", "cannot contain .."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateText("name", tt.value, 128)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInputValidator_ValidateWebsiteURL(t *testing.T) {
	v := NewInputValidator()

	assert.NoError(t, v.ValidateWebsiteURL("publisher website", "https://example.com/about"))
	assert.NoError(t, v.ValidateWebsiteURL("publisher website", "http://example.com"))
	assert.Error(t, v.ValidateWebsiteURL("publisher website", "example.com"))
	assert.Error(t, v.ValidateWebsiteURL("publisher website", "ftp://example.com"))
	assert.Error(t, v.ValidateWebsiteURL("publisher website", "https://"))
	assert.Error(t, v.ValidateWebsiteURL("publisher website", "http://[::1"))
}

func TestInputValidator_ValidateStoreURL(t *testing.T) {
	v := NewInputValidator()

	assert.NoError(t, v.ValidateStoreURL("android play store link", "https://play.google.com/store/apps/details?id=com.example", "play.google.com"))
	assert.NoError(t, v.ValidateStoreURL("ios app store link", "https://itunes.apple.com/app/id123", "itunes.apple.com"))

	err := v.ValidateStoreURL("android play store link", "https://example.com/app", "play.google.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "play.google.com")

	err = v.ValidateStoreURL("ios app store link", "itunes.apple.com/app", "itunes.apple.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid url")
}

func TestInputValidator_ValidateEmail(t *testing.T) {
	v := NewInputValidator()

	assert.NoError(t, v.ValidateEmail("publisher email", "stickers@example.com"))
	assert.Error(t, v.ValidateEmail("publisher email", "not-an-email"))
	assert.Error(t, v.ValidateEmail("publisher email", "a@"))
}

func TestInputValidator_ValidateFileName(t *testing.T) {
	v := NewInputValidator()

	assert.NoError(t, v.ValidateFileName("image_file", "01_Cuppy_smile.webp", ".webp"))
	assert.NoError(t, v.ValidateFileName("tray_image_file", "tray.png", ".png", ".webp"))
	assert.Error(t, v.ValidateFileName("image_file", "", ".webp"))
	assert.Error(t, v.ValidateFileName("image_file", "sticker.png", ".webp"))
	assert.Error(t, v.ValidateFileName("image_file", "../sticker.webp", ".webp"))
	assert.Error(t, v.ValidateFileName("image_file", `dir\sticker.webp`, ".webp"))
}

// Feature: sticker-certifier, Property 10: traversal filenames are always rejected
func TestProperty_TraversalFileNamesRejected(t *testing.T) {
	v := NewInputValidator()
	properties := gopter.NewProperties(nil)

	properties.Property("any file name containing .. or a path separator fails", prop.ForAll(
		func(prefix, suffix, bad string) bool {
			name := prefix + bad + suffix + ".webp"
			return v.ValidateFileName("image_file", name, ".webp") != nil
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.OneConstOf("..", "/", `\`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrors_Classification(t *testing.T) {
	structErr := &StructuralError{PackIdentifier: "cats", Reason: "unknown field in json: foo"}
	valErr := &ValidationError{PackIdentifier: "cats", FileName: "a.webp", Reason: "sticker width should be 512"}
	assetErr := &AssetError{PackIdentifier: "cats", FileName: "a.webp", Err: ErrAssetNotFound}

	assert.True(t, IsStructuralError(structErr))
	assert.False(t, IsValidationError(structErr))
	assert.True(t, IsValidationError(valErr))
	assert.False(t, IsStructuralError(valErr))
	assert.True(t, IsNotFound(assetErr))

	wrapped := &ValidationError{PackIdentifier: "cats", FileName: "a.webp", Reason: "cannot open sticker file", Cause: assetErr}
	assert.True(t, errors.Is(wrapped, ErrAssetNotFound))
	assert.Contains(t, wrapped.Error(), "sticker pack identifier: cats")
	assert.Contains(t, wrapped.Error(), "filename: a.webp")
}
