package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheStatsHitRatePercent(t *testing.T) {
	tests := []struct {
		name     string
		stats    CacheStats
		expected float64
	}{
		{name: "no lookups", stats: CacheStats{}, expected: 0},
		{name: "all hits", stats: CacheStats{hits: 4}, expected: 100},
		{name: "all misses", stats: CacheStats{misses: 4}, expected: 0},
		{name: "three of four", stats: CacheStats{hits: 3, misses: 1}, expected: 75},
		{name: "one of three", stats: CacheStats{hits: 1, misses: 2}, expected: 100.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.stats.HitRatePercent(), 1e-9)
		})
	}
}
