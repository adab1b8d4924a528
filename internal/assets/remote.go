package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// DefaultRemoteTimeout is the default HTTP timeout for remote fetches
const DefaultRemoteTimeout = 30 * time.Second

// maxManifestSize bounds a downloaded manifest
const maxManifestSize = 10 * 1024 * 1024

// RemoteConfig holds configuration for the HTTP store
type RemoteConfig struct {
	// BaseURL is the origin assets are published under as
	// <BaseURL>/<identifier>/<file name>
	BaseURL string
	// ManifestName is the manifest file name under BaseURL
	ManifestName string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// MaxSize refuses larger assets; zero means no limit
	MaxSize int64
}

// HTTPStore fetches pack assets and the manifest from a remote origin
type HTTPStore struct {
	config     RemoteConfig
	base       *url.URL
	httpClient *http.Client
}

// NewHTTPStore creates a store for the origin in config
func NewHTTPStore(config RemoteConfig) (*HTTPStore, error) {
	if config.Timeout == 0 {
		config.Timeout = DefaultRemoteTimeout
	}

	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid assets URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid assets URL %q: scheme must be http or https", config.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid assets URL %q: missing host", config.BaseURL)
	}

	return &HTTPStore{
		config: config,
		base:   base,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Fetch implements domain.AssetStore
func (s *HTTPStore) Fetch(ctx context.Context, packIdentifier, fileName string) ([]byte, error) {
	if packIdentifier == "" || fileName == "" ||
		domain.ContainsTraversal(packIdentifier) || domain.ContainsTraversal(fileName) {
		return nil, assetError(packIdentifier, fileName, fmt.Errorf("%w: invalid asset path", domain.ErrAssetNotFound))
	}

	data, err := s.get(ctx, s.base.JoinPath(packIdentifier, fileName).String(), s.config.MaxSize)
	if err != nil {
		return nil, assetError(packIdentifier, fileName, err)
	}

	log.Debug().
		Str("pack", packIdentifier).
		Str("file", fileName).
		Int("bytes", len(data)).
		Msg("Asset downloaded")
	return data, nil
}

// ReadManifest downloads the manifest published next to the assets
func (s *HTTPStore) ReadManifest(ctx context.Context) ([]byte, error) {
	data, err := s.get(ctx, s.ManifestURL(), maxManifestSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	return data, nil
}

// ManifestURL returns the location of the remote manifest
func (s *HTTPStore) ManifestURL() string {
	return s.base.JoinPath(s.config.ManifestName).String()
}

func (s *HTTPStore) get(ctx context.Context, target string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "github.com/freewebtopdf/sticker-certifier")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrAssetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected HTTP %d", resp.StatusCode)
	}
	if limit > 0 && resp.ContentLength > limit {
		return nil, fmt.Errorf("file is %d bytes, store limit is %d", resp.ContentLength, limit)
	}

	body := io.Reader(resp.Body)
	if limit > 0 {
		// one extra byte tells an oversized body from one exactly at the limit
		body = io.LimitReader(resp.Body, limit+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds store limit of %d bytes", limit)
	}
	return data, nil
}

var _ domain.AssetStore = (*HTTPStore)(nil)
