package middleware

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity   int
	tokens     float64 // fractional so slow refill rates still accumulate
	refillRate int     // tokens per second
	lastRefill time.Time
	mutex      sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow takes a token if one is available and reports the tokens left
func (tb *TokenBucket) Allow() (bool, int) {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()

	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed*float64(tb.refillRate))
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true, int(tb.tokens)
	}

	return false, 0
}

// Endpoint classes share one bucket per client
const (
	ClassDefault   = "default"
	ClassAssets    = "assets"
	ClassManifests = "manifests"
	ClassReload    = "reload"
	ClassProbe     = "probe"
)

type limit struct {
	capacity   int
	refillRate int
}

// RateLimiter manages rate limiting per client and endpoint class
type RateLimiter struct {
	buckets map[string]*TokenBucket
	mutex   sync.RWMutex

	limits map[string]limit
}

// NewRateLimiter creates a rate limiter whose default class allows rps
// requests per second with the given burst
func NewRateLimiter(rps, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		limits: map[string]limit{
			ClassDefault: {burst, rps},
			// sticker apps fetch every asset of a pack at once
			ClassAssets: {burst * 4, rps * 4},
			// manifest validation decodes every image in the submission
			ClassManifests: {max(burst/4, 1), max(rps/4, 1)},
			ClassReload:    {2, 1},
			ClassProbe:     {20, 2},
		},
	}
}

// EndpointClass maps a request path to its rate limit class
func EndpointClass(path string) string {
	switch {
	case path == "/health" || path == "/metrics":
		return ClassProbe
	case path == "/v1/packs/reload":
		return ClassReload
	case strings.HasPrefix(path, "/v1/manifests/"):
		return ClassManifests
	case strings.HasPrefix(path, "/v1/packs/") && strings.Contains(path, "/assets/"):
		return ClassAssets
	default:
		return ClassDefault
	}
}

// getBucket gets or creates a token bucket for a client+class combination
func (rl *RateLimiter) getBucket(clientID, class string) *TokenBucket {
	key := clientID + ":" + class

	rl.mutex.RLock()
	bucket, exists := rl.buckets[key]
	rl.mutex.RUnlock()

	if exists {
		return bucket
	}

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	// Double-check after acquiring write lock
	if bucket, exists := rl.buckets[key]; exists {
		return bucket
	}

	l := rl.limits[class]
	bucket = NewTokenBucket(l.capacity, l.refillRate)
	rl.buckets[key] = bucket

	return bucket
}

// getClientID extracts client identifier from request
func (rl *RateLimiter) getClientID(c *fiber.Ctx) string {
	if apiKey := c.Get("X-API-Key"); apiKey != "" {
		return "api:" + apiKey
	}
	if auth := c.Get("Authorization"); auth != "" {
		return "auth:" + auth
	}
	return "ip:" + c.IP()
}

// Middleware returns a Fiber middleware for rate limiting
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientID := rl.getClientID(c)
		class := EndpointClass(c.Path())
		bucket := rl.getBucket(clientID, class)

		allowed, remaining := bucket.Allow()
		c.Set("X-RateLimit-Limit", strconv.Itoa(bucket.capacity))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			// every class refills at least one token per second
			retryAfter := 1
			appErr := domain.NewAppError(
				domain.ErrRateLimit,
				"Rate limit exceeded",
				429,
				map[string]any{
					"endpoint_class": class,
					"retry_after":    retryAfter,
				},
			).WithContext(c.Context(), "rate_limit")

			c.Set("Retry-After", strconv.Itoa(retryAfter))

			return c.Status(appErr.StatusCode).JSON(map[string]any{
				"status":  "error",
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			})
		}

		return c.Next()
	}
}

// CleanupOldBuckets removes buckets that have been idle for an hour
func (rl *RateLimiter) CleanupOldBuckets() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	for key, bucket := range rl.buckets {
		bucket.mutex.Lock()
		idle := now.Sub(bucket.lastRefill)
		bucket.mutex.Unlock()
		if idle > time.Hour {
			delete(rl.buckets, key)
		}
	}
}

// StartCleanupRoutine starts a background routine to clean up old buckets.
// Returns a stop function to cancel the routine.
func (rl *RateLimiter) StartCleanupRoutine() (stop func()) {
	ticker := time.NewTicker(10 * time.Minute)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				rl.CleanupOldBuckets()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// GetStats returns rate limiter statistics
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mutex.RLock()
	defer rl.mutex.RUnlock()

	classes := make(map[string]any, len(rl.limits))
	for class, l := range rl.limits {
		classes[class] = map[string]int{"capacity": l.capacity, "refill_rate": l.refillRate}
	}

	return map[string]any{
		"active_buckets": len(rl.buckets),
		"classes":        classes,
	}
}
