package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freewebtopdf/sticker-certifier/internal/assets"
	"github.com/freewebtopdf/sticker-certifier/internal/cache"
	"github.com/freewebtopdf/sticker-certifier/internal/catalog"
	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/health"
	"github.com/freewebtopdf/sticker-certifier/internal/imaging/webptest"
	"github.com/freewebtopdf/sticker-certifier/internal/pack"
	"github.com/freewebtopdf/sticker-certifier/internal/policy"
)

const catsManifest = `{
  "android_play_store_link": "https://play.google.com/store/apps/details?id=com.example.cats",
  "ios_app_store_link": "https://itunes.apple.com/app/id1234567890",
  "sticker_packs": [
    {
      "identifier": "cats",
      "name": "Cats",
      "publisher": "Jane Doe",
      "tray_image_file": "tray.png",
      "image_data_version": "1",
      "avoid_cache": false,
      "publisher_email": "jane@example.com",
      "publisher_website": "https://example.com",
      "privacy_policy_website": "https://example.com/privacy",
      "license_agreement_website": "https://example.com/license",
      "animated": false,
      "stickers": [
        {"image_file": "01.webp", "emojis": ["😺", "😸"]},
        {"image_file": "02.webp", "emojis": ["😹"]},
        {"image_file": "03.webp", "emojis": ["😻", "😼", "😽"]}
      ]
    }
  ]
}`

type integrationEnv struct {
	root    string
	catalog *catalog.Catalog
	app     *RouterResult
}

func newIntegrationEnv(t testing.TB) *integrationEnv {
	t.Helper()
	root := t.TempDir()

	write := func(name string, data []byte) {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
	write(pack.ManifestFileName, []byte(catsManifest))
	write("cats/tray.png", webptest.PNG(96, 96))
	for i := 1; i <= 3; i++ {
		write(fmt.Sprintf("cats/%02d.webp", i), webptest.Static(512, 512))
	}

	assetCache := cache.NewLRUCache(100, 0)
	origin := assets.NewDirStore(root, 0)
	store := assets.NewCachedStore(origin, assetCache)
	parser := pack.NewManifestParser()
	certifier := pack.NewCertifier(pack.NewValidator(origin, policy.V2()), 2)
	cat := catalog.New(catalog.Config{
		ManifestFile: filepath.Join(root, pack.ManifestFileName),
		AssetsDir:    root,
	}, parser, certifier, store)
	require.NoError(t, cat.Load(context.Background()))

	app := SetupRouter(RouterDependencies{
		Repository:    cat,
		Assets:        store,
		Certifier:     pack.NewService(parser, certifier),
		Cache:         assetCache,
		HealthChecker: health.NewSystemHealthChecker(cat, assetCache),
	}, RouterConfig{BodyLimit: 1024 * 1024})
	t.Cleanup(app.Cleanup)

	return &integrationEnv{root: root, catalog: cat, app: app}
}

func (e *integrationEnv) request(t *testing.T, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	resp, err := e.app.App.Test(httptest.NewRequest(method, target, reader), -1)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestAPIEndpointsIntegration(t *testing.T) {
	env := newIntegrationEnv(t)

	t.Run("list packs", func(t *testing.T) {
		status, body := env.request(t, "GET", "/v1/packs", "")
		require.Equal(t, 200, status)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(1), data["count"])
		summary := data["packs"].([]any)[0].(map[string]any)
		assert.Equal(t, "cats", summary["identifier"])
		assert.Equal(t, float64(3*len(webptest.Static(512, 512))), summary["total_size"])
	})

	t.Run("get pack carries store links", func(t *testing.T) {
		status, body := env.request(t, "GET", "/v1/packs/cats", "")
		require.Equal(t, 200, status)
		got := body["data"].(map[string]any)["pack"].(map[string]any)
		assert.Equal(t, "https://itunes.apple.com/app/id1234567890", got["ios_app_store_link"])
	})

	t.Run("download sticker", func(t *testing.T) {
		// the second download is served from the asset cache
		for i := 0; i < 2; i++ {
			resp, err := env.app.App.Test(httptest.NewRequest("GET", "/v1/packs/cats/assets/02.webp", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, webptest.Static(512, 512), raw)
		}
	})

	t.Run("traversal in asset name", func(t *testing.T) {
		status, body := env.request(t, "GET", "/v1/packs/cats/assets/..%2Fcontents.json", "")
		assert.Equal(t, 404, status)
		assert.Equal(t, domain.ErrAssetUnavailable, body["code"])
	})

	t.Run("validate submitted manifest", func(t *testing.T) {
		status, body := env.request(t, "POST", "/v1/manifests/validate", catsManifest)
		require.Equal(t, 200, status)
		packs := body["data"].(map[string]any)["packs"].([]any)
		stickers := packs[0].(map[string]any)["stickers"].([]any)
		assert.Equal(t, float64(len(webptest.Static(512, 512))), stickers[0].(map[string]any)["size"])
	})

	t.Run("validate manifest for unknown assets", func(t *testing.T) {
		manifest := strings.Replace(catsManifest, `"identifier": "cats"`, `"identifier": "dogs"`, 1)
		status, body := env.request(t, "POST", "/v1/manifests/validate", manifest)
		assert.Equal(t, 422, status)
		assert.Equal(t, domain.ErrPackInvalid, body["code"])
		assert.Equal(t, "cannot open tray image", body["message"])
	})

	t.Run("parse rejects unknown field", func(t *testing.T) {
		manifest := strings.Replace(catsManifest, `"animated": false`, `"animated": false, "color": "red"`, 1)
		status, body := env.request(t, "POST", "/v1/manifests/parse", manifest)
		assert.Equal(t, 400, status)
		assert.Equal(t, domain.ErrManifestInvalid, body["code"])
		assert.Equal(t, "unknown field in json: color", body["message"])
		assert.Equal(t, "cats", body["details"].(map[string]any)["pack_identifier"])
	})

	t.Run("health", func(t *testing.T) {
		status, body := env.request(t, "GET", "/health", "")
		assert.Equal(t, 200, status)
		assert.Equal(t, domain.HealthStatusHealthy, body["status"])
	})

	t.Run("metrics", func(t *testing.T) {
		status, body := env.request(t, "GET", "/metrics", "")
		require.Equal(t, 200, status)
		data := body["data"].(map[string]any)
		assert.Equal(t, float64(1), data["catalog"].(map[string]any)["pack_count"])
		assert.Greater(t, data["cache"].(map[string]any)["hits"], float64(0))
	})
}

func TestReloadIntegration(t *testing.T) {
	env := newIntegrationEnv(t)

	// an undersized sticker on disk must fail the reload
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "cats", "03.webp"), webptest.Static(511, 512), 0644))

	status, body := env.request(t, "POST", "/v1/packs/reload", "")
	assert.Equal(t, 422, status)
	assert.Equal(t, "sticker width should be 512, current width is 511", body["message"])
	assert.Equal(t, "03.webp", body["details"].(map[string]any)["file_name"])

	// the previously certified pack is still served
	status, _ = env.request(t, "GET", "/v1/packs/cats", "")
	assert.Equal(t, 200, status)
	assert.Error(t, env.catalog.LastError())

	// but never with the rejected bytes
	status, body = env.request(t, "GET", "/v1/packs/cats/assets/03.webp", "")
	assert.Equal(t, 409, status)
	assert.Equal(t, domain.ErrAssetModified, body["code"])

	require.NoError(t, os.WriteFile(filepath.Join(env.root, "cats", "03.webp"), webptest.Static(512, 512), 0644))
	status, body = env.request(t, "POST", "/v1/packs/reload", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(1), body["data"].(map[string]any)["count"])

	resp, err := env.app.App.Test(httptest.NewRequest("GET", "/v1/packs/cats/assets/03.webp", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestAssetEditedWithoutReload(t *testing.T) {
	env := newIntegrationEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "cats", "01.webp"), webptest.Static(511, 512), 0644))

	status, body := env.request(t, "GET", "/v1/packs/cats/assets/01.webp", "")
	assert.Equal(t, 409, status)
	assert.Equal(t, domain.ErrAssetModified, body["code"])
	assert.Equal(t, "01.webp", body["details"].(map[string]any)["file_name"])

	resp, err := env.app.App.Test(httptest.NewRequest("GET", "/v1/packs/cats/assets/02.webp", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestConcurrentRequests(t *testing.T) {
	env := newIntegrationEnv(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := "/v1/packs"
			if i%2 == 0 {
				target = fmt.Sprintf("/v1/packs/cats/assets/%02d.webp", i%3+1)
			}
			resp, err := env.app.App.Test(httptest.NewRequest("GET", target, nil), -1)
			assert.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		}(i)
	}
	wg.Wait()
}
