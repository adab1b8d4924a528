// Package pack parses sticker pack manifests and certifies the parsed packs
// against the acceptance policy.
package pack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/policy"
)

// ManifestFileName is the conventional name of a manifest inside an asset directory
const ManifestFileName = "contents.json"

// Manifest keys
const (
	keyAndroidPlayStoreLink = "android_play_store_link"
	keyIOSAppStoreLink      = "ios_app_store_link"
	keyStickerPacks         = "sticker_packs"

	keyIdentifier              = "identifier"
	keyName                    = "name"
	keyPublisher               = "publisher"
	keyTrayImageFile           = "tray_image_file"
	keyPublisherEmail          = "publisher_email"
	keyPublisherWebsite        = "publisher_website"
	keyPrivacyPolicyWebsite    = "privacy_policy_website"
	keyLicenseAgreementWebsite = "license_agreement_website"
	keyImageDataVersion        = "image_data_version"
	keyAvoidCache              = "avoid_cache"
	keyAnimated                = "animated"
	keyStickers                = "stickers"

	keyImageFile         = "image_file"
	keyEmojis            = "emojis"
	keyAccessibilityText = "accessibility_text"
)

// ManifestParser reads a manifest token by token. The schema is closed: any
// key it does not know fails the whole parse.
type ManifestParser struct {
	input            *domain.InputValidator
	stickerExtension string
}

// NewManifestParser creates a parser that expects sticker files with the
// current policy's extension
func NewManifestParser() *ManifestParser {
	return NewManifestParserFor(policy.V2())
}

// NewManifestParserFor creates a parser checking sticker file names against
// the extension of limits, so it agrees with a validator built on the same limits
func NewManifestParserFor(limits policy.Limits) *ManifestParser {
	return &ManifestParser{
		input:            domain.NewInputValidator(),
		stickerExtension: limits.StickerExtension,
	}
}

// ParseFile reads and parses a manifest file from the given path
func (p *ManifestParser) ParseFile(path string) ([]domain.StickerPack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer f.Close()

	return p.Parse(f)
}

// ParseBytes parses manifest content from bytes
func (p *ManifestParser) ParseBytes(data []byte) ([]domain.StickerPack, error) {
	return p.Parse(bytes.NewReader(data))
}

// Parse consumes the manifest from r and returns its packs in source order,
// each carrying the manifest-wide store links. Every failure is a
// *domain.StructuralError.
func (p *ManifestParser) Parse(r io.Reader) ([]domain.StickerPack, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	packs, err := p.readManifest(dec)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("packs", len(packs)).Msg("Manifest parsed")
	return packs, nil
}

func (p *ManifestParser) readManifest(dec *json.Decoder) ([]domain.StickerPack, error) {
	if err := expectDelim(dec, '{', "manifest", ""); err != nil {
		return nil, err
	}

	var (
		androidPlayStoreLink string
		iosAppStoreLink      string
		packs                []domain.StickerPack
	)
	seen := make(map[string]bool)
	for {
		key, done, err := nextKey(dec, "")
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		if seen[key] {
			return nil, structural("", "", "duplicate field in json: "+key, nil)
		}
		seen[key] = true

		switch key {
		case keyAndroidPlayStoreLink:
			androidPlayStoreLink, err = readString(dec, key, "")
		case keyIOSAppStoreLink:
			iosAppStoreLink, err = readString(dec, key, "")
		case keyStickerPacks:
			packs, err = p.readPacks(dec)
		default:
			err = structural("", "", "unknown field in json: "+key, nil)
		}
		if err != nil {
			return nil, err
		}
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, structural("", "", "unexpected data after the manifest object", err)
	}

	if len(packs) == 0 {
		return nil, structural("", "", "sticker pack list cannot be empty", nil)
	}

	for i := range packs {
		packs[i].SetStoreLinks(androidPlayStoreLink, iosAppStoreLink)
	}
	return packs, nil
}

func (p *ManifestParser) readPacks(dec *json.Decoder) ([]domain.StickerPack, error) {
	if err := expectDelim(dec, '[', keyStickerPacks, ""); err != nil {
		return nil, err
	}

	var packs []domain.StickerPack
	identifiers := make(map[string]bool)
	for dec.More() {
		pack, err := p.readPack(dec)
		if err != nil {
			return nil, err
		}
		if identifiers[pack.Identifier] {
			return nil, structural(pack.Identifier, "", "sticker pack identifier is used by more than one pack", nil)
		}
		identifiers[pack.Identifier] = true
		packs = append(packs, pack)
	}

	if err := expectDelim(dec, ']', keyStickerPacks, ""); err != nil {
		return nil, err
	}
	return packs, nil
}

// packBuilder collects pack fields one key at a time
type packBuilder struct {
	identifier              string
	name                    string
	publisher               string
	trayImageFile           string
	publisherEmail          string
	publisherWebsite        string
	privacyPolicyWebsite    string
	licenseAgreementWebsite string
	imageDataVersion        string
	avoidCache              bool
	animated                bool
	stickers                []domain.Sticker
}

// build checks the required fields and converts to a descriptor
func (b *packBuilder) build() (domain.StickerPack, error) {
	switch {
	case b.identifier == "":
		return domain.StickerPack{}, structural("", "", "identifier cannot be empty", nil)
	case b.name == "":
		return domain.StickerPack{}, structural(b.identifier, "", "name cannot be empty", nil)
	case b.publisher == "":
		return domain.StickerPack{}, structural(b.identifier, "", "publisher cannot be empty", nil)
	case b.trayImageFile == "":
		return domain.StickerPack{}, structural(b.identifier, "", "tray_image_file cannot be empty", nil)
	case len(b.stickers) == 0:
		return domain.StickerPack{}, structural(b.identifier, "", "sticker list is empty", nil)
	case domain.ContainsTraversal(b.identifier):
		return domain.StickerPack{}, structural(b.identifier, "", "identifier should not contain .. or / to prevent directory traversal", nil)
	case domain.ContainsTraversal(b.trayImageFile):
		return domain.StickerPack{}, structural(b.identifier, b.trayImageFile, "tray_image_file should not contain .. or / to prevent directory traversal", nil)
	case b.imageDataVersion == "":
		return domain.StickerPack{}, structural(b.identifier, "", "image_data_version should not be empty", nil)
	}

	return domain.StickerPack{
		Identifier:              b.identifier,
		Name:                    b.name,
		Publisher:               b.publisher,
		TrayImageFile:           b.trayImageFile,
		PublisherEmail:          b.publisherEmail,
		PublisherWebsite:        b.publisherWebsite,
		PrivacyPolicyWebsite:    b.privacyPolicyWebsite,
		LicenseAgreementWebsite: b.licenseAgreementWebsite,
		ImageDataVersion:        b.imageDataVersion,
		AvoidCache:              b.avoidCache,
		Animated:                b.animated,
		Stickers:                b.stickers,
	}, nil
}

func (p *ManifestParser) readPack(dec *json.Decoder) (domain.StickerPack, error) {
	if err := expectDelim(dec, '{', "sticker pack", ""); err != nil {
		return domain.StickerPack{}, err
	}

	var b packBuilder
	seen := make(map[string]bool)
	for {
		key, done, err := nextKey(dec, b.identifier)
		if err != nil {
			return domain.StickerPack{}, err
		}
		if done {
			break
		}
		if seen[key] {
			return domain.StickerPack{}, structural(b.identifier, "", "duplicate field in json: "+key, nil)
		}
		seen[key] = true

		switch key {
		case keyIdentifier:
			b.identifier, err = readString(dec, key, b.identifier)
		case keyName:
			b.name, err = readString(dec, key, b.identifier)
		case keyPublisher:
			b.publisher, err = readString(dec, key, b.identifier)
		case keyTrayImageFile:
			b.trayImageFile, err = readString(dec, key, b.identifier)
		case keyPublisherEmail:
			b.publisherEmail, err = readString(dec, key, b.identifier)
		case keyPublisherWebsite:
			b.publisherWebsite, err = readString(dec, key, b.identifier)
		case keyPrivacyPolicyWebsite:
			b.privacyPolicyWebsite, err = readString(dec, key, b.identifier)
		case keyLicenseAgreementWebsite:
			b.licenseAgreementWebsite, err = readString(dec, key, b.identifier)
		case keyImageDataVersion:
			b.imageDataVersion, err = readString(dec, key, b.identifier)
		case keyAvoidCache:
			b.avoidCache, err = readBool(dec, key, b.identifier)
		case keyAnimated:
			b.animated, err = readBool(dec, key, b.identifier)
		case keyStickers:
			b.stickers, err = p.readStickers(dec, b.identifier)
		default:
			err = structural(b.identifier, "", "unknown field in json: "+key, nil)
		}
		if err != nil {
			return domain.StickerPack{}, err
		}
	}

	return b.build()
}

func (p *ManifestParser) readStickers(dec *json.Decoder, identifier string) ([]domain.Sticker, error) {
	if err := expectDelim(dec, '[', keyStickers, identifier); err != nil {
		return nil, err
	}

	var stickers []domain.Sticker
	for dec.More() {
		sticker, err := p.readSticker(dec, identifier)
		if err != nil {
			return nil, err
		}
		stickers = append(stickers, sticker)
	}

	if err := expectDelim(dec, ']', keyStickers, identifier); err != nil {
		return nil, err
	}
	return stickers, nil
}

// stickerBuilder collects sticker fields one key at a time
type stickerBuilder struct {
	imageFile         string
	emojis            []string
	accessibilityText string
}

func (b *stickerBuilder) build(p *ManifestParser, identifier string) (domain.Sticker, error) {
	if err := p.input.ValidateFileName("sticker image_file", b.imageFile, p.stickerExtension); err != nil {
		return domain.Sticker{}, structural(identifier, b.imageFile, err.Error(), nil)
	}
	emojis := b.emojis
	if emojis == nil {
		emojis = []string{}
	}
	return domain.Sticker{
		ImageFileName:     b.imageFile,
		Emojis:            emojis,
		AccessibilityText: b.accessibilityText,
	}, nil
}

func (p *ManifestParser) readSticker(dec *json.Decoder, identifier string) (domain.Sticker, error) {
	if err := expectDelim(dec, '{', "sticker", identifier); err != nil {
		return domain.Sticker{}, err
	}

	var b stickerBuilder
	seen := make(map[string]bool)
	for {
		key, done, err := nextKey(dec, identifier)
		if err != nil {
			return domain.Sticker{}, err
		}
		if done {
			break
		}
		if seen[key] {
			return domain.Sticker{}, structural(identifier, b.imageFile, "duplicate field in json: "+key, nil)
		}
		seen[key] = true

		switch key {
		case keyImageFile:
			b.imageFile, err = readString(dec, key, identifier)
		case keyEmojis:
			b.emojis, err = readEmojis(dec, identifier)
		case keyAccessibilityText:
			b.accessibilityText, err = readString(dec, key, identifier)
		default:
			err = structural(identifier, b.imageFile, "unknown field in json: "+key, nil)
		}
		if err != nil {
			return domain.Sticker{}, err
		}
	}

	return b.build(p, identifier)
}

// readEmojis reads an array of strings, dropping empty entries
func readEmojis(dec *json.Decoder, identifier string) ([]string, error) {
	if err := expectDelim(dec, '[', keyEmojis, identifier); err != nil {
		return nil, err
	}

	emojis := []string{}
	for dec.More() {
		emoji, err := readString(dec, keyEmojis, identifier)
		if err != nil {
			return nil, err
		}
		if emoji != "" {
			emojis = append(emojis, emoji)
		}
	}

	if err := expectDelim(dec, ']', keyEmojis, identifier); err != nil {
		return nil, err
	}
	return emojis, nil
}

// nextKey returns the next object key, or done when the object closes
func nextKey(dec *json.Decoder, identifier string) (key string, done bool, err error) {
	tok, err := dec.Token()
	if err != nil {
		return "", false, malformed(identifier, err)
	}
	switch t := tok.(type) {
	case string:
		return t, false, nil
	case json.Delim:
		if t == '}' {
			return "", true, nil
		}
	}
	return "", false, structural(identifier, "", fmt.Sprintf("unexpected token %v", tok), nil)
}

func expectDelim(dec *json.Decoder, want json.Delim, what, identifier string) error {
	tok, err := dec.Token()
	if err != nil {
		return malformed(identifier, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return structural(identifier, "", fmt.Sprintf("%s should start with %q, found %s", what, want, describeToken(tok)), nil)
	}
	return nil
}

func readString(dec *json.Decoder, key, identifier string) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", malformed(identifier, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", structural(identifier, "", fmt.Sprintf("%s should be a string, found %s", key, describeToken(tok)), nil)
	}
	return s, nil
}

func readBool(dec *json.Decoder, key, identifier string) (bool, error) {
	tok, err := dec.Token()
	if err != nil {
		return false, malformed(identifier, err)
	}
	b, ok := tok.(bool)
	if !ok {
		return false, structural(identifier, "", fmt.Sprintf("%s should be a boolean, found %s", key, describeToken(tok)), nil)
	}
	return b, nil
}

func describeToken(tok json.Token) string {
	switch t := tok.(type) {
	case nil:
		return "null"
	case json.Delim:
		return fmt.Sprintf("%q", t.String())
	case string:
		return fmt.Sprintf("string %q", t)
	case json.Number:
		return "number " + t.String()
	case bool:
		return fmt.Sprintf("boolean %t", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func malformed(identifier string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return structural(identifier, "", "malformed json", err)
}

func structural(identifier, fileName, reason string, cause error) *domain.StructuralError {
	return &domain.StructuralError{
		PackIdentifier: identifier,
		FileName:       fileName,
		Reason:         reason,
		Cause:          cause,
	}
}
