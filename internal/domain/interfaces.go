package domain

import "context"

// AssetStore returns the raw bytes of a pack asset. Failures are *AssetError
// values wrapping ErrAssetNotFound or the underlying read error.
type AssetStore interface {
	Fetch(ctx context.Context, packIdentifier, fileName string) ([]byte, error)
}

// PackRepository defines the contract for reading certified packs
type PackRepository interface {
	GetAllPacks(ctx context.Context) ([]StickerPack, error)
	GetPackByID(ctx context.Context, identifier string) (*StickerPack, error)
	Reload(ctx context.Context) error

	// Health and monitoring
	HealthCheck(ctx context.Context) HealthStatus
	GetStats(ctx context.Context) map[string]any
}

// ManifestCertifier parses and validates manifests submitted from outside the catalog
type ManifestCertifier interface {
	Parse(ctx context.Context, data []byte) ([]StickerPack, error)
	Certify(ctx context.Context, data []byte) ([]StickerPack, error)
}

// CacheManager defines the contract for asset caching operations
type CacheManager interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte)
	Invalidate(key string)
	Clear()
	Stats() CacheStats

	// Health and monitoring
	HealthCheck(ctx context.Context) HealthStatus
}

// HealthChecker defines the interface for system health monitoring
type HealthChecker interface {
	CheckHealth(ctx context.Context) SystemHealth
	CheckComponent(ctx context.Context, component string) HealthStatus
}
