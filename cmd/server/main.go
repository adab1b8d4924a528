package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/api"
	"github.com/freewebtopdf/sticker-certifier/internal/assets"
	"github.com/freewebtopdf/sticker-certifier/internal/cache"
	"github.com/freewebtopdf/sticker-certifier/internal/catalog"
	"github.com/freewebtopdf/sticker-certifier/internal/config"
	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/health"
	"github.com/freewebtopdf/sticker-certifier/internal/pack"

	docs "github.com/freewebtopdf/sticker-certifier/docs"
)

// @title Sticker Certifier API
// @version 1.0
// @description Certifies sticker pack manifests and serves the certified packs and their assets
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /
// @schemes http https

// @tag.name Packs
// @tag.description Certified sticker pack catalog

// @tag.name Manifests
// @tag.description Manifest parsing and certification

// @tag.name System
// @tag.description System health and metrics operations

func main() {
	healthCheck := flag.Bool("health-check", false, "Perform health check and exit")
	flag.Parse()

	if *healthCheck {
		performHealthCheck()
		return
	}

	setupLogger()

	log.Info().Msg("Sticker Certifier starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatal().Err(err).Msg("Assets directory is not usable")
	}

	docs.SwaggerInfo.Host = os.Getenv("DOMAIN")

	logStartupConfig(cfg)

	svc, err := buildService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.catalog.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to certify sticker packs")
	}

	if cfg.Catalog.ReloadInterval > 0 {
		go runReloadLoop(ctx, svc.catalog, cfg.Catalog.ReloadInterval)
		log.Info().Dur("interval", cfg.Catalog.ReloadInterval).Msg("Catalog reload loop started")
	}

	app := svc.router.App
	app.Server().ReadTimeout = cfg.Server.ReadTimeout
	app.Server().WriteTimeout = cfg.Server.WriteTimeout

	setupGracefulShutdown(app, func() {
		cancel()
		svc.router.Cleanup()
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info().
		Int("port", cfg.Server.Port).
		Str("addr", serverAddr).
		Msg("Starting HTTP server")

	if err := app.Listen(serverAddr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}
}

// service bundles the components the HTTP server is built from
type service struct {
	catalog *catalog.Catalog
	cache   *cache.LRUCache
	router  *api.RouterResult
}

// buildService wires the asset store, the certifier and the catalog behind
// the HTTP router. Assets come from ASSETS_URL when set, otherwise from
// ASSETS_DIR. The catalog is returned unloaded.
func buildService(cfg *config.Config) (*service, error) {
	limits, err := cfg.PolicyLimits()
	if err != nil {
		return nil, fmt.Errorf("failed to load certification policy: %w", err)
	}

	catalogConfig := catalog.Config{
		ManifestFile: cfg.Catalog.ManifestFile,
		AssetsDir:    cfg.Catalog.AssetsDir,
	}

	var origin domain.AssetStore = assets.NewDirStore(cfg.Catalog.AssetsDir, cfg.Catalog.MaxAssetBytes)
	if cfg.Remote() {
		remote, err := assets.NewHTTPStore(assets.RemoteConfig{
			BaseURL:      cfg.Catalog.AssetsURL,
			ManifestName: pack.ManifestFileName,
			Timeout:      cfg.Catalog.RemoteTimeout,
			MaxSize:      cfg.Catalog.MaxAssetBytes,
		})
		if err != nil {
			return nil, err
		}
		origin = remote
		catalogConfig.ManifestFile = remote.ManifestURL()
		catalogConfig.AssetsDir = cfg.Catalog.AssetsURL
		catalogConfig.Source = remote
	}

	assetCache := cache.NewLRUCache(cfg.Cache.MaxSize, cfg.Cache.MaxBytes)
	store := assets.NewCachedStore(origin, assetCache)

	parser := pack.NewManifestParserFor(limits)
	// certification reads the origin so rejected bytes never reach the cache
	certifier := pack.NewCertifier(pack.NewValidator(origin, limits), cfg.Policy.Concurrency)

	cat := catalog.New(catalogConfig, parser, certifier, store)

	healthChecker := health.NewSystemHealthChecker(cat, assetCache)

	router := api.SetupRouter(api.RouterDependencies{
		Repository:    cat,
		Assets:        store,
		Certifier:     pack.NewService(parser, certifier),
		Cache:         assetCache,
		HealthChecker: healthChecker,
	}, api.RouterConfig{
		CORSOrigins:    cfg.Security.CORSOrigins,
		BodyLimit:      cfg.Server.BodyLimit,
		RateLimitRPS:   cfg.Security.RateLimitRPS,
		RateLimitBurst: cfg.Security.RateLimitBurst,
	})

	log.Info().
		Str("policy_version", limits.Version).
		Int("max_stickers", limits.MaxStickers).
		Int("concurrency", cfg.Policy.Concurrency).
		Msg("Certification policy loaded")

	return &service{catalog: cat, cache: assetCache, router: router}, nil
}

// runReloadLoop re-certifies the catalog on every tick until ctx is done.
// A failed reload leaves the previous packs in service.
func runReloadLoop(ctx context.Context, repo domain.PackRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.Reload(ctx); err != nil {
				log.Warn().Err(err).Msg("Scheduled catalog reload failed")
			}
		}
	}
}

func setupLogger() {
	zerolog.TimeFieldFormat = time.RFC3339

	level := os.Getenv("LOG_LEVEL")
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if os.Getenv("LOG_FORMAT") == "text" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func logStartupConfig(cfg *config.Config) {
	log.Info().
		Int("server_port", cfg.Server.Port).
		Dur("server_read_timeout", cfg.Server.ReadTimeout).
		Dur("server_write_timeout", cfg.Server.WriteTimeout).
		Int("server_body_limit", cfg.Server.BodyLimit).
		Int("cache_max_size", cfg.Cache.MaxSize).
		Int64("cache_max_bytes", cfg.Cache.MaxBytes).
		Str("catalog_assets_dir", cfg.Catalog.AssetsDir).
		Str("catalog_assets_url", cfg.Catalog.AssetsURL).
		Str("catalog_manifest_file", cfg.Catalog.ManifestFile).
		Dur("catalog_reload_interval", cfg.Catalog.ReloadInterval).
		Str("policy_version", cfg.Policy.Version).
		Str("policy_file", cfg.Policy.File).
		Strs("security_cors_origins", cfg.Security.CORSOrigins).
		Int("security_rate_limit_rps", cfg.Security.RateLimitRPS).
		Str("logging_level", cfg.Logging.Level).
		Str("logging_format", cfg.Logging.Format).
		Msg("Configuration loaded successfully")
}

func setupGracefulShutdown(app *fiber.App, stopBackground func()) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-ctx.Done()
		stop()

		log.Info().Msg("Received shutdown signal, initiating graceful shutdown")

		if stopBackground != nil {
			stopBackground()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Info().Msg("Stopping HTTP server...")
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error during HTTP server shutdown")
		}

		log.Info().Msg("Graceful shutdown completed")
		os.Exit(0)
	}()
}

func performHealthCheck() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	client := &http.Client{
		Timeout: 3 * time.Second,
	}

	resp, err := client.Get(fmt.Sprintf("http://localhost:%s/health", port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}
