package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorseStatus(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{HealthStatusHealthy, HealthStatusHealthy, HealthStatusHealthy},
		{HealthStatusHealthy, HealthStatusDegraded, HealthStatusDegraded},
		{HealthStatusUnhealthy, HealthStatusDegraded, HealthStatusUnhealthy},
		{HealthStatusHealthy, "starting", HealthStatusUnhealthy},
		{"", HealthStatusHealthy, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, WorseStatus(tt.a, tt.b))
		})
	}
}

func TestCacheStats_Utilization(t *testing.T) {
	assert.Equal(t, 0.0, CacheStats{}.Utilization())
	assert.Equal(t, 0.5, CacheStats{Size: 5, MaxSize: 10}.Utilization())
	assert.Equal(t, 0.75, CacheStats{Size: 1, MaxSize: 10, Bytes: 75, MaxBytes: 100}.Utilization())
	assert.Equal(t, 0.2, CacheStats{Size: 2, MaxSize: 10, Bytes: 75}.Utilization())
}
