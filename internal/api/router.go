package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
	"github.com/freewebtopdf/sticker-certifier/internal/middleware"
)

const (
	manifestsPrefix = "/v1/manifests/"
	assetsSegment   = "/assets/"

	headerCrossOriginResourcePolicy = "Cross-Origin-Resource-Policy"
)

// RouterConfig contains configuration for the HTTP router
type RouterConfig struct {
	CORSOrigins    []string
	BodyLimit      int
	RateLimitRPS   int
	RateLimitBurst int
}

// RouterDependencies contains all dependencies needed by the router
type RouterDependencies struct {
	Repository    domain.PackRepository
	Assets        domain.AssetStore
	Certifier     domain.ManifestCertifier
	Cache         domain.CacheManager
	HealthChecker domain.HealthChecker
}

// RouterResult contains the configured app and cleanup function
type RouterResult struct {
	App     *fiber.App
	Cleanup func()
}

// SetupRouter creates the Fiber app serving the certified catalog, manifest
// submissions and the system endpoints
func SetupRouter(deps RouterDependencies, config RouterConfig) *RouterResult {
	app := fiber.New(fiber.Config{
		AppName:               "sticker-certifier",
		BodyLimit:             config.BodyLimit,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	// Middleware order matters: the request ID must exist before anything logs
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(requestLogger())
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error().
				Str("request_id", getRequestID(c)).
				Interface("panic", e).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("Panic recovered")
		},
	}))
	app.Use(securityHeaders())

	var stopRateLimiter func()
	if config.RateLimitRPS > 0 {
		rateLimiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		stopRateLimiter = rateLimiter.StartCleanupRoutine()
		app.Use(rateLimiter.Middleware())
	}

	if len(config.CORSOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:  strings.Join(config.CORSOrigins, ","),
			AllowMethods:  "GET,POST,OPTIONS",
			AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID,X-API-Key",
			ExposeHeaders: "ETag,X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining",
			MaxAge:        86400,
		}))
	}

	v1 := app.Group("/v1")
	packHandlers := NewPackHandlers(deps.Repository, deps.Assets, deps.Certifier)
	registerPackRoutes(v1.Group("/packs"), packHandlers)
	registerManifestRoutes(v1.Group("/manifests"), packHandlers)

	system := NewHandlers(deps.Repository, deps.Cache, deps.HealthChecker)
	app.Get("/health", system.HealthHandler)
	app.Get("/metrics", system.MetricsHandler)
	app.Get("/swagger/*", swagger.HandlerDefault)

	cleanup := func() {
		if stopRateLimiter != nil {
			stopRateLimiter()
		}
	}

	return &RouterResult{App: app, Cleanup: cleanup}
}

// registerPackRoutes mounts the certified catalog under /v1/packs. The static
// reload route is registered before the :id routes.
func registerPackRoutes(packs fiber.Router, h *PackHandlers) {
	packs.Get("/", h.ListPacksHandler)
	packs.Post("/reload", h.ReloadHandler)
	packs.Get("/:id", h.GetPackHandler)
	packs.Get("/:id/assets/:file", h.GetAssetHandler)
}

// registerManifestRoutes mounts the manifest submission endpoints
func registerManifestRoutes(manifests fiber.Router, h *PackHandlers) {
	manifests.Post("/parse", h.ParseManifestHandler)
	manifests.Post("/validate", h.ValidateManifestHandler)
}

// errorHandler turns errors returned by Fiber itself (routing, body limit)
// into the JSON error envelope. A rejected manifest body is reported with
// the manifest codes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	isManifest := strings.HasPrefix(c.Path(), manifestsPrefix)
	resp := ErrorResponse{Status: "error", Message: message}

	switch code {
	case fiber.StatusRequestEntityTooLarge:
		resp.Code = domain.ErrTooLarge
		resp.Message = "Request payload too large"
		if isManifest {
			resp.Message = "Manifest exceeds the request body limit"
		}
	case fiber.StatusBadRequest:
		resp.Code = domain.ErrInvalidInput
		if isManifest {
			resp.Code = domain.ErrManifestInvalid
		}
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		resp.Code = domain.ErrNotFound
	default:
		resp.Code = domain.ErrInternal
	}

	return c.Status(code).JSON(resp)
}

// requestLogger logs one line per request. Probe traffic is logged at debug
// level so it does not drown catalog requests.
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		logEvent := log.Info()
		switch {
		case status >= 500:
			logEvent = log.Error()
		case status >= 400:
			logEvent = log.Warn()
		case c.Path() == "/health" || c.Path() == "/metrics":
			logEvent = log.Debug()
		}

		logEvent = logEvent.
			Str("request_id", getRequestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Int("body_size", len(c.Body())).
			Int("response_size", len(c.Response().Body()))
		if id := c.Params("id"); id != "" {
			logEvent = logEvent.Str("pack", id)
		}
		if file := c.Params("file"); file != "" {
			logEvent = logEvent.Str("file", file)
		}
		logEvent.Msg("HTTP request processed")

		return err
	}
}

// securityHeaders sets the response hardening headers. Sticker images are
// embedded by other origins, so asset responses allow cross-origin reads.
func securityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
		c.Set(fiber.HeaderXFrameOptions, "DENY")
		c.Set(fiber.HeaderStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		c.Set(fiber.HeaderReferrerPolicy, "no-referrer")

		if strings.Contains(c.Path(), assetsSegment) {
			c.Set(headerCrossOriginResourcePolicy, "cross-origin")
		} else {
			c.Set(headerCrossOriginResourcePolicy, "same-origin")
			c.Set(fiber.HeaderContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		}

		return c.Next()
	}
}
