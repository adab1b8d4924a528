// Package catalog holds the certified packs of the configured manifest in
// memory. Nothing is persisted: the catalog is rebuilt from the manifest on
// every start and on every reload.
package catalog

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/pack"
)

// Config holds the catalog's manifest and asset locations
type Config struct {
	// ManifestFile is the manifest path, or its URL when Source is set
	ManifestFile string
	AssetsDir    string
	// Source supplies the manifest bytes; nil reads ManifestFile from disk
	Source ManifestSource
}

// ManifestSource supplies raw manifest content, e.g. from a remote origin
type ManifestSource interface {
	ReadManifest(ctx context.Context) ([]byte, error)
}

// Invalidator drops cached asset bytes once a reload has certified new ones
type Invalidator interface {
	Invalidate()
}

// Catalog implements domain.PackRepository
type Catalog struct {
	mu       sync.RWMutex
	packs    map[string]*domain.StickerPack
	packList []*domain.StickerPack
	loadedAt time.Time
	lastErr  error

	loadMu sync.Mutex
	config Config

	parser      *pack.ManifestParser
	certifier   *pack.Certifier
	invalidator Invalidator

	loads    int64
	failures int64
}

// New creates an empty catalog. invalidator may be nil.
func New(config Config, parser *pack.ManifestParser, certifier *pack.Certifier, invalidator Invalidator) *Catalog {
	return &Catalog{
		packs:       make(map[string]*domain.StickerPack),
		packList:    make([]*domain.StickerPack, 0),
		config:      config,
		parser:      parser,
		certifier:   certifier,
		invalidator: invalidator,
	}
}

// Load parses and certifies the manifest, then swaps the new pack list in
// and drops cached asset bytes. The certifier must read assets from the
// origin rather than through the cache. On failure the previously loaded
// packs and the cache stay in place.
func (c *Catalog) Load(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	select {
	case <-ctx.Done():
		return domain.NewAppErrorWithCause(
			domain.ErrTimeout,
			"Load cancelled",
			408,
			ctx.Err(),
			map[string]any{"operation": "load"},
		)
	default:
	}

	start := time.Now()
	packs, err := c.certify(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loads++
	if err != nil {
		c.failures++
		c.lastErr = err
		log.Error().Err(err).Str("manifest", c.config.ManifestFile).Msg("Catalog load failed")
		return err
	}

	c.packs = make(map[string]*domain.StickerPack, len(packs))
	c.packList = make([]*domain.StickerPack, 0, len(packs))
	for i := range packs {
		p := &packs[i]
		c.packs[p.Identifier] = p
		c.packList = append(c.packList, p)
	}
	c.loadedAt = time.Now()
	c.lastErr = nil
	if c.invalidator != nil {
		c.invalidator.Invalidate()
	}

	log.Info().
		Int("packs", len(packs)).
		Str("manifest", c.config.ManifestFile).
		Dur("duration", time.Since(start)).
		Msg("Catalog loaded")
	return nil
}

func (c *Catalog) parse(ctx context.Context) ([]domain.StickerPack, error) {
	if c.config.Source == nil {
		return c.parser.ParseFile(c.config.ManifestFile)
	}
	data, err := c.config.Source.ReadManifest(ctx)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseBytes(data)
}

func (c *Catalog) certify(ctx context.Context) ([]domain.StickerPack, error) {
	packs, err := c.parse(ctx)
	if err != nil {
		if domain.IsStructuralError(err) {
			return nil, domain.NewAppErrorWithCause(
				domain.ErrManifestInvalid,
				"Manifest does not conform to the schema",
				400,
				err,
				map[string]any{"manifest": c.config.ManifestFile},
			).WithContext(ctx, "load")
		}
		return nil, domain.NewAppErrorWithCause(
			domain.ErrInternal,
			"Failed to read manifest",
			500,
			err,
			map[string]any{"manifest": c.config.ManifestFile},
		).WithContext(ctx, "load")
	}

	if err := c.certifier.Certify(ctx, packs); err != nil {
		var valErr *domain.ValidationError
		if errors.As(err, &valErr) {
			return nil, domain.NewAppErrorWithCause(
				domain.ErrPackInvalid,
				"Sticker pack failed certification",
				422,
				err,
				map[string]any{"pack": valErr.PackIdentifier, "file": valErr.FileName},
			).WithContext(ctx, "load")
		}
		if ctx.Err() != nil {
			return nil, domain.NewAppErrorWithCause(
				domain.ErrTimeout,
				"Certification cancelled",
				408,
				err,
				map[string]any{"operation": "load"},
			).WithContext(ctx, "load")
		}
		return nil, domain.NewAppErrorWithCause(
			domain.ErrInternal,
			"Certification did not complete",
			500,
			err,
			nil,
		).WithContext(ctx, "load")
	}

	return packs, nil
}

// Reload re-reads the manifest and its assets
func (c *Catalog) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// GetAllPacks returns copies of every certified pack in manifest order
func (c *Catalog) GetAllPacks(ctx context.Context) ([]domain.StickerPack, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.loadedAt.IsZero() {
		return nil, c.notReady()
	}

	result := make([]domain.StickerPack, len(c.packList))
	for i, p := range c.packList {
		result[i] = p.Clone()
	}
	return result, nil
}

// GetPackByID retrieves a certified pack by identifier
func (c *Catalog) GetPackByID(ctx context.Context, identifier string) (*domain.StickerPack, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.loadedAt.IsZero() {
		return nil, c.notReady()
	}

	p, exists := c.packs[identifier]
	if !exists {
		return nil, domain.NewAppError(
			domain.ErrPackNotFound,
			"Sticker pack not found",
			404,
			map[string]any{"identifier": identifier},
		)
	}

	clone := p.Clone()
	return &clone, nil
}

// LastError returns the error of the most recent load, or nil if it succeeded
func (c *Catalog) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

func (c *Catalog) notReady() error {
	details := map[string]any{"manifest": c.config.ManifestFile}
	if c.lastErr != nil {
		details["last_error"] = c.lastErr.Error()
	}
	return domain.NewAppError(
		domain.ErrCatalogNotLoaded,
		"Catalog has no certified packs yet",
		503,
		details,
	)
}

// HealthCheck reports whether certified packs are being served
func (c *Catalog) HealthCheck(ctx context.Context) domain.HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	details := map[string]any{
		"pack_count": len(c.packList),
		"manifest":   c.config.ManifestFile,
		"assets_dir": c.config.AssetsDir,
	}

	if c.config.Source == nil {
		if _, err := os.Stat(c.config.ManifestFile); err != nil {
			details["error"] = err.Error()
			return domain.HealthStatus{
				Status:    domain.HealthStatusUnhealthy,
				Message:   "Manifest file is not accessible",
				Details:   details,
				Timestamp: now,
			}
		}
	}

	if c.loadedAt.IsZero() {
		if c.lastErr != nil {
			details["error"] = c.lastErr.Error()
		}
		return domain.HealthStatus{
			Status:    domain.HealthStatusUnhealthy,
			Message:   "Catalog has not been loaded",
			Details:   details,
			Timestamp: now,
		}
	}

	details["loaded_at"] = c.loadedAt
	if c.lastErr != nil {
		details["error"] = c.lastErr.Error()
		return domain.HealthStatus{
			Status:    domain.HealthStatusDegraded,
			Message:   "Last reload failed, serving previously certified packs",
			Details:   details,
			Timestamp: now,
		}
	}

	if len(c.packs) != len(c.packList) {
		details["map_size"] = len(c.packs)
		details["list_size"] = len(c.packList)
		return domain.HealthStatus{
			Status:    domain.HealthStatusUnhealthy,
			Message:   "Data structure inconsistency detected",
			Details:   details,
			Timestamp: now,
		}
	}

	return domain.HealthStatus{
		Status:    domain.HealthStatusHealthy,
		Message:   "Catalog is serving certified packs",
		Details:   details,
		Timestamp: now,
	}
}

// GetStats returns catalog statistics
func (c *Catalog) GetStats(ctx context.Context) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var stickers, animated int
	var totalBytes int64
	for _, p := range c.packList {
		stickers += len(p.Stickers)
		totalBytes += p.TotalSize
		if p.Animated {
			animated++
		}
	}

	stats := map[string]any{
		"pack_count":     len(c.packList),
		"animated_packs": animated,
		"sticker_count":  stickers,
		"total_bytes":    totalBytes,
		"manifest_file":  c.config.ManifestFile,
		"assets_dir":     c.config.AssetsDir,
		"loads":          c.loads,
		"failed_loads":   c.failures,
	}
	if !c.loadedAt.IsZero() {
		stats["loaded_at"] = c.loadedAt
	}
	if c.lastErr != nil {
		stats["last_error"] = c.lastErr.Error()
	}
	return stats
}

var _ domain.PackRepository = (*Catalog)(nil)
