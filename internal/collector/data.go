package collector

import (
	"time"

	"github.com/rohmanhakim/news-harvester/internal/fetcher"
)

// RunReport is the aggregate outcome of one collection run.
type RunReport struct {
	pagesProcessed  int
	itemsCollected  int
	totalErrors     int
	cacheStats      fetcher.CacheStats
	cacheSizeByte   int64
	cacheEntryCount int
	outputFile      string
	duration        time.Duration
}

func (r RunReport) PagesProcessed() int {
	return r.pagesProcessed
}

func (r RunReport) ItemsCollected() int {
	return r.itemsCollected
}

func (r RunReport) TotalErrors() int {
	return r.totalErrors
}

func (r RunReport) CacheStats() fetcher.CacheStats {
	return r.cacheStats
}

func (r RunReport) CacheSizeByte() int64 {
	return r.cacheSizeByte
}

// CacheSizeMB renders the cache footprint the way the run summary
// prints it.
func (r RunReport) CacheSizeMB() float64 {
	return float64(r.cacheSizeByte) / (1024 * 1024)
}

func (r RunReport) CacheEntryCount() int {
	return r.cacheEntryCount
}

func (r RunReport) OutputFile() string {
	return r.outputFile
}

func (r RunReport) Duration() time.Duration {
	return r.duration
}
