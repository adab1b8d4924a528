package api

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func benchmarkRequest(b *testing.B, method, target, body string, parallel bool) {
	env := newIntegrationEnv(b)

	do := func() error {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		resp, err := env.app.App.Test(httptest.NewRequest(method, target, reader), -1)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != 200 {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return nil
	}

	// warm the asset cache
	if err := do(); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()

	if !parallel {
		for i := 0; i < b.N; i++ {
			if err := do(); err != nil {
				b.Fatal(err)
			}
		}
		return
	}
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := do(); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkListPacks(b *testing.B) {
	benchmarkRequest(b, "GET", "/v1/packs", "", false)
}

func BenchmarkListPacksParallel(b *testing.B) {
	benchmarkRequest(b, "GET", "/v1/packs", "", true)
}

func BenchmarkCachedAsset(b *testing.B) {
	benchmarkRequest(b, "GET", "/v1/packs/cats/assets/01.webp", "", false)
}

func BenchmarkCachedAssetParallel(b *testing.B) {
	benchmarkRequest(b, "GET", "/v1/packs/cats/assets/01.webp", "", true)
}

func BenchmarkValidateManifest(b *testing.B) {
	benchmarkRequest(b, "POST", "/v1/manifests/validate", catsManifest, false)
}
