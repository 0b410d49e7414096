package fetcher

/*
CacheStats is a point-in-time snapshot of one fetcher's cache interactions.

Counters reset with the fetcher instance; they are not persisted. Only
fetches that consulted the cache are counted: bypassed fetches (caching
disabled) move neither counter.
*/
type CacheStats struct {
	hits        uint64
	misses      uint64
	bytesStored uint64
}

func (s CacheStats) Hits() uint64 {
	return s.hits
}

func (s CacheStats) Misses() uint64 {
	return s.misses
}

// BytesStored is the total size of all bodies written to the store by this
// fetcher, an approximation of the network traffic the cache saves on
// subsequent runs.
func (s CacheStats) BytesStored() uint64 {
	return s.bytesStored
}

// HitRatePercent returns hits as a percentage of cache-consulting fetches.
// A fetcher that never consulted the cache has a hit rate of zero.
func (s CacheStats) HitRatePercent() float64 {
	total := s.hits + s.misses
	if total == 0 {
		return 0
	}
	return 100 * float64(s.hits) / float64(total)
}
