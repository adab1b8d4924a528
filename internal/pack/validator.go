package pack

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/imaging"
	"github.com/freewebtopdf/sticker-certifier/internal/policy"
)

// Validator enforces the acceptance policy on a parsed pack. It stops at the
// first violated rule.
type Validator struct {
	store  domain.AssetStore
	limits policy.Limits
	input  *domain.InputValidator
}

// NewValidator creates a validator reading assets from store
func NewValidator(store domain.AssetStore, limits policy.Limits) *Validator {
	return &Validator{
		store:  store,
		limits: limits,
		input:  domain.NewInputValidator(),
	}
}

// Limits returns the rule set the validator enforces
func (v *Validator) Limits() policy.Limits {
	return v.limits
}

// Validate checks pack and, when every rule holds, attaches the byte size of
// each sticker, the pack total and the digest of every certified file. A
// failing pack is left unchanged.
//
// Rule failures are *domain.ValidationError. The one exception is a done
// ctx: the context error is returned wrapped, since an interrupted check
// says nothing about the pack.
func (v *Validator) Validate(ctx context.Context, pack *domain.StickerPack) error {
	if err := v.validateMetadata(pack); err != nil {
		return err
	}
	digests := make(map[string]string, len(pack.Stickers)+1)
	if err := v.validateTrayImage(ctx, pack, digests); err != nil {
		return err
	}

	count := len(pack.Stickers)
	if count < v.limits.MinStickers || count > v.limits.MaxStickers {
		return invalid(pack.Identifier, "", fmt.Sprintf("sticker pack sticker count should be between %d to %d inclusive, it currently has %d",
			v.limits.MinStickers, v.limits.MaxStickers, count), nil)
	}

	sizes := make([]int64, count)
	for i := range pack.Stickers {
		if err := ctx.Err(); err != nil {
			return interrupted(pack.Identifier, err)
		}
		size, err := v.validateSticker(ctx, pack, &pack.Stickers[i], digests)
		if err != nil {
			return err
		}
		sizes[i] = size
	}

	pack.SetStickerSizes(sizes)
	pack.SetAssetDigests(digests)

	log.Debug().
		Str("pack", pack.Identifier).
		Int("stickers", count).
		Int64("total_size", pack.TotalSize).
		Bool("animated", pack.Animated).
		Msg("Sticker pack certified")

	return nil
}

func (v *Validator) validateMetadata(pack *domain.StickerPack) error {
	texts := []struct {
		field string
		value string
	}{
		{"identifier", pack.Identifier},
		{"publisher", pack.Publisher},
		{"name", pack.Name},
	}
	for _, t := range texts {
		if err := v.input.ValidateText(t.field, t.value, v.limits.MaxTextChars); err != nil {
			return invalid(pack.Identifier, "", err.Error(), nil)
		}
	}

	if err := v.input.ValidateFileName("sticker pack tray image file", pack.TrayImageFile, v.limits.TrayImageExtension...); err != nil {
		return invalid(pack.Identifier, pack.TrayImageFile, err.Error(), nil)
	}

	type check struct {
		value string
		run   func() error
	}
	checks := []check{
		{pack.AndroidPlayStoreLink, func() error {
			return v.input.ValidateStoreURL("android play store link", pack.AndroidPlayStoreLink, v.limits.PlayStoreDomain)
		}},
		{pack.IOSAppStoreLink, func() error {
			return v.input.ValidateStoreURL("ios app store link", pack.IOSAppStoreLink, v.limits.AppStoreDomain)
		}},
		{pack.LicenseAgreementWebsite, func() error {
			return v.input.ValidateWebsiteURL("license agreement link", pack.LicenseAgreementWebsite)
		}},
		{pack.PrivacyPolicyWebsite, func() error {
			return v.input.ValidateWebsiteURL("privacy policy link", pack.PrivacyPolicyWebsite)
		}},
		{pack.PublisherWebsite, func() error {
			return v.input.ValidateWebsiteURL("publisher website link", pack.PublisherWebsite)
		}},
		{pack.PublisherEmail, func() error {
			return v.input.ValidateEmail("publisher email", pack.PublisherEmail)
		}},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if err := c.run(); err != nil {
			return invalid(pack.Identifier, "", err.Error(), nil)
		}
	}

	return nil
}

func (v *Validator) validateTrayImage(ctx context.Context, pack *domain.StickerPack, digests map[string]string) error {
	file := pack.TrayImageFile
	data, err := v.store.Fetch(ctx, pack.Identifier, file)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return interrupted(pack.Identifier, ctxErr)
		}
		return invalid(pack.Identifier, file, "cannot open tray image", err)
	}
	digests[file] = domain.AssetDigest(data)

	if int64(len(data)) > v.limits.MaxTrayImageBytes {
		return invalid(pack.Identifier, file, fmt.Sprintf("tray image should be less than %d KB, current file is %d KB",
			v.limits.MaxTrayImageBytes/policy.KB, int64(len(data))/policy.KB), nil)
	}

	info, err := imaging.Inspect(data)
	if err != nil {
		return invalid(pack.Identifier, file, "cannot decode tray image", err)
	}

	minSide, maxSide := v.limits.MinTrayImageSide, v.limits.MaxTrayImageSide
	if v.limits.TrayIsExact() {
		if info.Width != minSide || info.Height != minSide {
			return invalid(pack.Identifier, file, fmt.Sprintf("tray image should be %dx%d pixels, current tray image is %dx%d",
				minSide, minSide, info.Width, info.Height), nil)
		}
	} else {
		if info.Height < minSide || info.Height > maxSide {
			return invalid(pack.Identifier, file, fmt.Sprintf("tray image height should be between %d and %d pixels, current tray image height is %d",
				minSide, maxSide, info.Height), nil)
		}
		if info.Width < minSide || info.Width > maxSide {
			return invalid(pack.Identifier, file, fmt.Sprintf("tray image width should be between %d and %d pixels, current tray image width is %d",
				minSide, maxSide, info.Width), nil)
		}
	}

	if info.Animated() {
		return invalid(pack.Identifier, file, fmt.Sprintf("tray image should not be animated, it has %d frames", info.Frames), nil)
	}
	return nil
}

// validateSticker checks one sticker, records its digest and returns its byte size
func (v *Validator) validateSticker(ctx context.Context, pack *domain.StickerPack, sticker *domain.Sticker, digests map[string]string) (int64, error) {
	id, file := pack.Identifier, sticker.ImageFileName

	if len(sticker.Emojis) > v.limits.MaxEmojis {
		return 0, invalid(id, file, "emoji count exceed limit", nil)
	}
	if len(sticker.Emojis) < v.limits.MinEmojis {
		return 0, invalid(id, file, fmt.Sprintf("to provide best user experience, please associate at least %d emoji to this sticker", v.limits.MinEmojis), nil)
	}

	if maxChars := v.limits.MaxAccessibilityChars(pack.Animated); utf8.RuneCountInString(sticker.AccessibilityText) > maxChars {
		return 0, invalid(id, file, fmt.Sprintf("accessibility text length exceeds the limit of %d characters", maxChars), nil)
	}

	if err := v.input.ValidateFileName("sticker image file", file, v.limits.StickerExtension); err != nil {
		return 0, invalid(id, file, err.Error(), nil)
	}

	data, err := v.store.Fetch(ctx, id, file)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, interrupted(id, ctxErr)
		}
		return 0, invalid(id, file, "cannot open sticker file", err)
	}
	digests[file] = domain.AssetDigest(data)

	size := int64(len(data))
	if maxBytes := v.limits.MaxStickerBytes(pack.Animated); size > maxBytes {
		kind := "static"
		if pack.Animated {
			kind = "animated"
		}
		return 0, invalid(id, file, fmt.Sprintf("%s sticker should be less than %d KB, current file is %d KB",
			kind, maxBytes/policy.KB, size/policy.KB), nil)
	}

	info, err := imaging.Inspect(data)
	if err != nil {
		return 0, invalid(id, file, "error parsing webp image", err)
	}
	if info.Format != imaging.FormatWebP {
		return 0, invalid(id, file, fmt.Sprintf("sticker should be a webp image, found %s", info.Format), nil)
	}

	if info.Height != v.limits.StickerHeight {
		return 0, invalid(id, file, fmt.Sprintf("sticker height should be %d, current height is %d", v.limits.StickerHeight, info.Height), nil)
	}
	if info.Width != v.limits.StickerWidth {
		return 0, invalid(id, file, fmt.Sprintf("sticker width should be %d, current width is %d", v.limits.StickerWidth, info.Width), nil)
	}

	if !pack.Animated {
		if info.Frames != 1 {
			return 0, invalid(id, file, "this pack is not marked as animated sticker pack, all stickers should be static stickers", nil)
		}
		return size, nil
	}

	if info.Frames <= 1 {
		return 0, invalid(id, file, "this pack is marked as animated sticker pack, all stickers should animate", nil)
	}
	for i, d := range info.FrameDurations {
		if d < v.limits.MinFrameDurationMS {
			return 0, invalid(id, file, fmt.Sprintf("animated sticker frame duration limit is %d ms, frame %d lasts %d ms",
				v.limits.MinFrameDurationMS, i, d), nil)
		}
	}
	if total := info.TotalDuration(); total > v.limits.MaxTotalDurationMS {
		return 0, invalid(id, file, fmt.Sprintf("sticker animation max duration is: %d ms, current duration is: %d ms",
			v.limits.MaxTotalDurationMS, total), nil)
	}

	return size, nil
}

func interrupted(identifier string, err error) error {
	return fmt.Errorf("validation of sticker pack %s cancelled: %w", identifier, err)
}

func invalid(identifier, fileName, reason string, cause error) *domain.ValidationError {
	return &domain.ValidationError{
		PackIdentifier: identifier,
		FileName:       fileName,
		Reason:         reason,
		Cause:          cause,
	}
}
