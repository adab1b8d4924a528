// Package assets provides the stores that resolve a pack identifier and file
// name to raw asset bytes.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// DirStore reads assets laid out as <root>/<identifier>/<file name>
type DirStore struct {
	root    string
	maxSize int64
}

// NewDirStore creates a store rooted at dir. Files larger than maxSize bytes
// are refused without being read; zero means no limit.
func NewDirStore(dir string, maxSize int64) *DirStore {
	return &DirStore{root: dir, maxSize: maxSize}
}

// Root returns the directory the store reads from
func (s *DirStore) Root() string {
	return s.root
}

// Fetch implements domain.AssetStore
func (s *DirStore) Fetch(ctx context.Context, packIdentifier, fileName string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, assetError(packIdentifier, fileName, err)
	}
	if packIdentifier == "" || fileName == "" ||
		domain.ContainsTraversal(packIdentifier) || domain.ContainsTraversal(fileName) {
		return nil, assetError(packIdentifier, fileName, fmt.Errorf("%w: invalid asset path", domain.ErrAssetNotFound))
	}

	path := filepath.Join(s.root, packIdentifier, fileName)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, assetError(packIdentifier, fileName, domain.ErrAssetNotFound)
		}
		return nil, assetError(packIdentifier, fileName, err)
	}
	if info.IsDir() {
		return nil, assetError(packIdentifier, fileName, fmt.Errorf("%w: path is a directory", domain.ErrAssetNotFound))
	}
	if s.maxSize > 0 && info.Size() > s.maxSize {
		return nil, assetError(packIdentifier, fileName, fmt.Errorf("file is %d bytes, store limit is %d", info.Size(), s.maxSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, assetError(packIdentifier, fileName, err)
	}

	log.Debug().
		Str("pack", packIdentifier).
		Str("file", fileName).
		Int("bytes", len(data)).
		Msg("Asset read from disk")
	return data, nil
}

// MemoryStore keeps assets in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	assets map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{assets: make(map[string][]byte)}
}

// Put stores data for a pack asset, replacing any previous value
func (s *MemoryStore) Put(packIdentifier, fileName string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[Key(packIdentifier, fileName)] = data
}

// Delete removes a pack asset
func (s *MemoryStore) Delete(packIdentifier, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assets, Key(packIdentifier, fileName))
}

// Fetch implements domain.AssetStore
func (s *MemoryStore) Fetch(ctx context.Context, packIdentifier, fileName string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, assetError(packIdentifier, fileName, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.assets[Key(packIdentifier, fileName)]
	if !ok {
		return nil, assetError(packIdentifier, fileName, domain.ErrAssetNotFound)
	}
	return data, nil
}

// Key is the cache and map key of a pack asset
func Key(packIdentifier, fileName string) string {
	return packIdentifier + "/" + fileName
}

func assetError(packIdentifier, fileName string, err error) *domain.AssetError {
	return &domain.AssetError{
		PackIdentifier: packIdentifier,
		FileName:       fileName,
		Err:            err,
	}
}

var (
	_ domain.AssetStore = (*DirStore)(nil)
	_ domain.AssetStore = (*MemoryStore)(nil)
)
