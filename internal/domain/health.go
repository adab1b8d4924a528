package domain

import "time"

// Health status values, ordered from best to worst
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"
)

var statusRank = map[string]int{
	HealthStatusHealthy:   0,
	HealthStatusDegraded:  1,
	HealthStatusUnhealthy: 2,
}

// WorseStatus returns the worse of two health statuses. Unrecognised values
// count as unhealthy.
func WorseStatus(a, b string) string {
	if _, ok := statusRank[a]; !ok {
		a = HealthStatusUnhealthy
	}
	if _, ok := statusRank[b]; !ok {
		b = HealthStatusUnhealthy
	}
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// CacheStats describes the asset cache. MaxBytes is zero when the cache is
// bounded by entry count only.
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Bytes     int64   `json:"bytes"`
	MaxBytes  int64   `json:"max_bytes"`
	HitRatio  float64 `json:"hit_ratio"`
}

// Utilization is the fill level of the tighter of the two cache bounds, in [0, 1]
func (s CacheStats) Utilization() float64 {
	var u float64
	if s.MaxSize > 0 {
		u = float64(s.Size) / float64(s.MaxSize)
	}
	if s.MaxBytes > 0 {
		if b := float64(s.Bytes) / float64(s.MaxBytes); b > u {
			u = b
		}
	}
	return u
}

// HealthStatus is the reported state of one component (catalog, asset cache)
type HealthStatus struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// SystemHealth is the /health payload
type SystemHealth struct {
	Status     string                  `json:"status"`
	Timestamp  time.Time               `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
	Metrics    map[string]any          `json:"metrics,omitempty"`
	Uptime     time.Duration           `json:"uptime"`
}
