package assets

import (
	"context"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// CachedStore is a read-through cache in front of another store. Failed
// fetches are never cached.
type CachedStore struct {
	next  domain.AssetStore
	cache domain.CacheManager
}

// NewCachedStore wraps next with cache
func NewCachedStore(next domain.AssetStore, cache domain.CacheManager) *CachedStore {
	return &CachedStore{next: next, cache: cache}
}

// Fetch implements domain.AssetStore
func (s *CachedStore) Fetch(ctx context.Context, packIdentifier, fileName string) ([]byte, error) {
	key := Key(packIdentifier, fileName)
	if data, ok := s.cache.Get(key); ok {
		return data, nil
	}

	data, err := s.next.Fetch(ctx, packIdentifier, fileName)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, data)
	return data, nil
}

// Invalidate drops every cached asset, used when the catalog reloads
func (s *CachedStore) Invalidate() {
	s.cache.Clear()
}

var _ domain.AssetStore = (*CachedStore)(nil)
