package fetcher

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/news-harvester/internal/cache"
	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/pkg/failure"
	"github.com/rohmanhakim/news-harvester/pkg/retry"
)

/*
CachedFetcher serves fetches from a local response cache, falling through
to a network fetcher on miss.

Decision order for each fetch:

 1. Caching disabled: go straight to the network, touch no counters.
 2. Fresh cached entry: return it. No network, no politeness cost.
 3. Otherwise: network fetch; on success, store the body for next time.

Fetch failures surface to the caller untouched and are never cached.
Store failures are demoted to warnings: a broken cache must never turn a
successful fetch into a failed one.
*/
type CachedFetcher struct {
	store        cache.Store
	network      Fetcher
	metadataSink metadata.MetadataSink
	policy       CachePolicy

	hits        atomic.Uint64
	misses      atomic.Uint64
	bytesStored atomic.Uint64
}

func NewCachedFetcher(
	store cache.Store,
	network Fetcher,
	metadataSink metadata.MetadataSink,
	policy CachePolicy,
) *CachedFetcher {
	return &CachedFetcher{
		store:        store,
		network:      network,
		metadataSink: metadataSink,
		policy:       policy,
	}
}

func (c *CachedFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	fetchUrl := fetchParam.fetchUrl

	if !c.policy.useCache {
		c.metadataSink.RecordCacheEvent(metadata.CacheBypassed, "", fetchUrl.String())
		return c.network.Fetch(ctx, fetchParam, retryParam)
	}

	key, keyErr := cache.NewKey(fetchUrl, c.policy.hashAlgo)
	if keyErr != nil {
		// Can't address the cache for this request; fetch uncached
		c.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			"CachedFetcher.Fetch",
			metadata.CauseCacheFailure,
			keyErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
		return c.network.Fetch(ctx, fetchParam, retryParam)
	}

	if entry, ok := c.store.Get(key, c.policy.ttl); ok {
		c.hits.Add(1)
		c.metadataSink.RecordCacheEvent(metadata.CacheHit, key.Identity(), fetchUrl.String())
		c.metadataSink.RecordFetch(fetchUrl.String(), http.StatusOK, 0, "", 0, true)
		return FetchResult{
			url:       fetchUrl,
			body:      entry.Body(),
			fromCache: true,
			meta: ResponseMeta{
				statusCode:          http.StatusOK,
				transferredSizeByte: uint64(entry.SizeByte()),
			},
		}, nil
	}

	c.misses.Add(1)
	c.metadataSink.RecordCacheEvent(metadata.CacheMiss, key.Identity(), fetchUrl.String())

	result, err := c.network.Fetch(ctx, fetchParam, retryParam)
	if err != nil {
		return FetchResult{}, err
	}

	if putErr := c.store.Put(key, result.Body()); putErr != nil {
		c.metadataSink.RecordCacheEvent(metadata.CacheStoreFailed, key.Identity(), fetchUrl.String())
		c.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			"CachedFetcher.Fetch",
			metadata.CauseCacheFailure,
			putErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
				metadata.NewAttr(metadata.AttrCacheKey, key.Identity()),
			},
		)
		return result, nil
	}

	c.bytesStored.Add(uint64(len(result.Body())))
	c.metadataSink.RecordCacheEvent(metadata.CacheStore, key.Identity(), fetchUrl.String())
	return result, nil
}

// Stats returns a snapshot of this fetcher's cache counters.
func (c *CachedFetcher) Stats() CacheStats {
	return CacheStats{
		hits:        c.hits.Load(),
		misses:      c.misses.Load(),
		bytesStored: c.bytesStored.Load(),
	}
}

var _ Fetcher = (*CachedFetcher)(nil)
