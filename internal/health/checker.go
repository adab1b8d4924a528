// Package health reports whether the certified catalog and the asset cache
// are fit to serve.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/freewebtopdf/sticker-certifier/internal/domain"
)

// Component names accepted by CheckComponent
const (
	ComponentCatalog = "catalog"
	ComponentCache   = "asset_cache"
)

const (
	defaultCheckTimeout = 5 * time.Second
	defaultResultTTL    = 10 * time.Second
)

type componentCheck func(ctx context.Context) domain.HealthStatus

// SystemHealthChecker aggregates the health of the catalog and the asset
// cache. Results are reused for a short TTL so probes do not re-stat the
// manifest on every request.
type SystemHealthChecker struct {
	repository domain.PackRepository
	cache      domain.CacheManager
	checks     map[string]componentCheck

	timeout   time.Duration
	ttl       time.Duration
	startTime time.Time

	mu         sync.Mutex
	lastCheck  time.Time
	lastHealth domain.SystemHealth
}

// NewSystemHealthChecker creates a checker over the catalog and the cache
func NewSystemHealthChecker(repository domain.PackRepository, cache domain.CacheManager) *SystemHealthChecker {
	return &SystemHealthChecker{
		repository: repository,
		cache:      cache,
		checks: map[string]componentCheck{
			ComponentCatalog: repository.HealthCheck,
			ComponentCache:   cache.HealthCheck,
		},
		timeout:   defaultCheckTimeout,
		ttl:       defaultResultTTL,
		startTime: time.Now(),
	}
}

// CheckHealth returns the worst component status together with catalog and
// cache metrics
func (h *SystemHealthChecker) CheckHealth(ctx context.Context) domain.SystemHealth {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.lastCheck.IsZero() && time.Since(h.lastCheck) < h.ttl {
		return h.lastHealth
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	now := time.Now()
	overall := domain.HealthStatusHealthy
	components := make(map[string]domain.HealthStatus, len(h.checks))
	for name, check := range h.checks {
		status := check(checkCtx)
		components[name] = status
		overall = domain.WorseStatus(overall, status.Status)
	}

	h.lastHealth = domain.SystemHealth{
		Status:     overall,
		Timestamp:  now,
		Components: components,
		Metrics:    h.metrics(checkCtx),
		Uptime:     time.Since(h.startTime),
	}
	h.lastCheck = now

	return h.lastHealth
}

// CheckComponent checks a single component by name, bypassing the cached result
func (h *SystemHealthChecker) CheckComponent(ctx context.Context, component string) domain.HealthStatus {
	check, ok := h.checks[component]
	if !ok {
		return domain.HealthStatus{
			Status:    domain.HealthStatusUnhealthy,
			Message:   "Unknown component",
			Timestamp: time.Now(),
			Details: map[string]any{
				"component": component,
				"error":     "Component not found",
			},
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return check(checkCtx)
}

// Invalidate forces the next CheckHealth to run the component checks, e.g.
// after a catalog reload
func (h *SystemHealthChecker) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastCheck = time.Time{}
}

// IsHealthy returns true if every component is healthy
func (h *SystemHealthChecker) IsHealthy(ctx context.Context) bool {
	return h.CheckHealth(ctx).Status == domain.HealthStatusHealthy
}

func (h *SystemHealthChecker) metrics(ctx context.Context) map[string]any {
	metrics := map[string]any{
		ComponentCache: h.cache.Stats(),
		"system": map[string]any{
			"uptime_seconds": time.Since(h.startTime).Seconds(),
			"timestamp":      time.Now(),
		},
	}
	if catalogStats := h.repository.GetStats(ctx); catalogStats != nil {
		metrics[ComponentCatalog] = catalogStats
	}
	return metrics
}

var _ domain.HealthChecker = (*SystemHealthChecker)(nil)
