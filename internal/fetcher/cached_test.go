package fetcher_test

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/news-harvester/internal/cache"
	"github.com/rohmanhakim/news-harvester/internal/fetcher"
	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/pkg/failure"
	"github.com/rohmanhakim/news-harvester/pkg/hashutil"
	"github.com/rohmanhakim/news-harvester/pkg/retry"
)

// stubNetworkFetcher counts calls and replays a canned response
type stubNetworkFetcher struct {
	calls int
	body  []byte
	err   failure.ClassifiedError
}

func (s *stubNetworkFetcher) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
	retryParam retry.RetryParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	s.calls++
	if s.err != nil {
		return fetcher.FetchResult{}, s.err
	}
	return fetcher.NewFetchResultForTest(
		fetchParam.URL(),
		s.body,
		http.StatusOK,
		uint64(len(s.body)),
		map[string]string{"Content-Type": "text/html"},
		false,
	), nil
}

// failingStore rejects every Put, simulating a full or read-only disk
type failingStore struct {
	cache.Store
}

func (f *failingStore) Get(key cache.Key, ttl time.Duration) (cache.Entry, bool) {
	return cache.Entry{}, false
}

func (f *failingStore) Put(key cache.Key, body []byte) failure.ClassifiedError {
	return &cache.StoreError{
		Message:   "no space left on device",
		Retryable: false,
		Cause:     cache.ErrCauseWriteFailure,
	}
}

func testPolicy(useCache bool, ttl time.Duration) fetcher.CachePolicy {
	return fetcher.NewCachePolicy(useCache, ttl, hashutil.HashAlgoSHA256)
}

func testFetchParam(t *testing.T, raw string) fetcher.FetchParam {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return fetcher.NewFetchParam(*parsed, "test-agent")
}

func TestCachedFetcher_SecondFetchServedFromCache(t *testing.T) {
	store := cache.NewFileStore(t.TempDir(), &metadata.NoopSink{})
	network := &stubNetworkFetcher{body: []byte("<html><body>cached page</body></html>")}
	sink := &mockMetadataSink{}
	f := fetcher.NewCachedFetcher(store, network, sink, testPolicy(true, 24*time.Hour))

	param := testFetchParam(t, "https://news.example.com/latest")

	first, err := f.Fetch(context.Background(), param, createTestRetryParam(1))
	require.NoError(t, err)
	assert.False(t, first.FromCache())

	second, err := f.Fetch(context.Background(), param, createTestRetryParam(1))
	require.NoError(t, err)
	assert.True(t, second.FromCache())
	assert.Equal(t, http.StatusOK, second.Code())

	// Byte-for-byte identical body, exactly one network call
	assert.Equal(t, first.Body(), second.Body())
	assert.Equal(t, 1, network.calls)

	stats := f.Stats()
	assert.Equal(t, uint64(1), stats.Hits())
	assert.Equal(t, uint64(1), stats.Misses())
	assert.Equal(t, uint64(len(network.body)), stats.BytesStored())
	assert.Equal(t, 50.0, stats.HitRatePercent())
}

func TestCachedFetcher_EquivalentURLSpellingsShareEntry(t *testing.T) {
	store := cache.NewFileStore(t.TempDir(), &metadata.NoopSink{})
	network := &stubNetworkFetcher{body: []byte("<html>page</html>")}
	f := fetcher.NewCachedFetcher(store, network, &mockMetadataSink{}, testPolicy(true, 24*time.Hour))

	_, err := f.Fetch(context.Background(), testFetchParam(t, "https://news.example.com/latest?a=1&b=2"), createTestRetryParam(1))
	require.NoError(t, err)

	result, err := f.Fetch(context.Background(), testFetchParam(t, "https://news.example.com/latest?b=2&a=1#top"), createTestRetryParam(1))
	require.NoError(t, err)

	assert.True(t, result.FromCache())
	assert.Equal(t, 1, network.calls)
}

func TestCachedFetcher_ExpiredEntryRefetched(t *testing.T) {
	root := t.TempDir()
	store := cache.NewFileStore(root, &metadata.NoopSink{})
	network := &stubNetworkFetcher{body: []byte("<html>fresh</html>")}
	f := fetcher.NewCachedFetcher(store, network, &mockMetadataSink{}, testPolicy(true, time.Hour))

	param := testFetchParam(t, "https://news.example.com/latest")

	_, err := f.Fetch(context.Background(), param, createTestRetryParam(1))
	require.NoError(t, err)

	// Age the stored entry past the ttl
	key, keyErr := cache.NewKey(param.URL(), hashutil.HashAlgoSHA256)
	require.NoError(t, keyErr)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, key.Filename()), past, past))

	result, err := f.Fetch(context.Background(), param, createTestRetryParam(1))
	require.NoError(t, err)

	assert.False(t, result.FromCache())
	assert.Equal(t, 2, network.calls)

	stats := f.Stats()
	assert.Equal(t, uint64(0), stats.Hits())
	assert.Equal(t, uint64(2), stats.Misses())
}

func TestCachedFetcher_CacheDisabledBypassesStore(t *testing.T) {
	root := t.TempDir()
	store := cache.NewFileStore(root, &metadata.NoopSink{})
	network := &stubNetworkFetcher{body: []byte("<html>page</html>")}
	sink := &mockMetadataSink{}
	f := fetcher.NewCachedFetcher(store, network, sink, testPolicy(false, 24*time.Hour))

	param := testFetchParam(t, "https://news.example.com/latest")

	for i := 0; i < 3; i++ {
		result, err := f.Fetch(context.Background(), param, createTestRetryParam(1))
		require.NoError(t, err)
		assert.False(t, result.FromCache())
	}

	// Every fetch hit the network and nothing was written to disk
	assert.Equal(t, 3, network.calls)
	count, err := store.EntryCount()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	stats := f.Stats()
	assert.Equal(t, uint64(0), stats.Hits())
	assert.Equal(t, uint64(0), stats.Misses())
	assert.Equal(t, 0.0, stats.HitRatePercent())

	require.Len(t, sink.cacheEvents, 3)
	for _, evt := range sink.cacheEvents {
		assert.Equal(t, metadata.CacheBypassed, evt.event)
	}
}

func TestCachedFetcher_StoreFailureDoesNotFailFetch(t *testing.T) {
	network := &stubNetworkFetcher{body: []byte("<html>page</html>")}
	sink := &mockMetadataSink{}
	f := fetcher.NewCachedFetcher(&failingStore{}, network, sink, testPolicy(true, 24*time.Hour))

	result, err := f.Fetch(context.Background(), testFetchParam(t, "https://news.example.com/latest"), createTestRetryParam(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>page</html>"), result.Body())

	// The failure shows up as a warning, not in the result
	require.Len(t, sink.errorEvents, 1)
	assert.Equal(t, metadata.CauseCacheFailure, sink.errorEvents[0].cause)

	// Bytes only count entries that actually landed on disk
	assert.Equal(t, uint64(0), f.Stats().BytesStored())
}

func TestCachedFetcher_FetchFailureNotCached(t *testing.T) {
	store := cache.NewFileStore(t.TempDir(), &metadata.NoopSink{})
	network := &stubNetworkFetcher{
		err: &fetcher.FetchError{
			Message:   "server error: 500",
			Retryable: true,
			Cause:     fetcher.ErrCauseRequest5xx,
		},
	}
	f := fetcher.NewCachedFetcher(store, network, &mockMetadataSink{}, testPolicy(true, 24*time.Hour))

	param := testFetchParam(t, "https://news.example.com/latest")

	_, err := f.Fetch(context.Background(), param, createTestRetryParam(1))
	require.Error(t, err)

	count, countErr := store.EntryCount()
	require.NoError(t, countErr)
	assert.Equal(t, 0, count)

	// The failed fetch counted as a miss and the next attempt goes out again
	_, err = f.Fetch(context.Background(), param, createTestRetryParam(1))
	require.Error(t, err)
	assert.Equal(t, 2, network.calls)
	assert.Equal(t, uint64(2), f.Stats().Misses())
}

func TestCachedFetcher_StatsTrackMixedTraffic(t *testing.T) {
	store := cache.NewFileStore(t.TempDir(), &metadata.NoopSink{})
	network := &stubNetworkFetcher{body: []byte("<html>page</html>")}
	f := fetcher.NewCachedFetcher(store, network, &mockMetadataSink{}, testPolicy(true, 24*time.Hour))

	pageOne := testFetchParam(t, "https://news.example.com/latest?page=1")
	pageTwo := testFetchParam(t, "https://news.example.com/latest?page=2")

	// miss, miss, hit, hit
	for _, param := range []fetcher.FetchParam{pageOne, pageTwo, pageOne, pageTwo} {
		_, err := f.Fetch(context.Background(), param, createTestRetryParam(1))
		require.NoError(t, err)
	}

	stats := f.Stats()
	assert.Equal(t, uint64(2), stats.Hits())
	assert.Equal(t, uint64(2), stats.Misses())
	assert.Equal(t, 50.0, stats.HitRatePercent())
	assert.Equal(t, uint64(2*len(network.body)), stats.BytesStored())
}
