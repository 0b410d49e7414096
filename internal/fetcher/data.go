package fetcher

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/news-harvester/pkg/hashutil"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

type FetchResult struct {
	url       url.URL
	body      []byte
	meta      ResponseMeta
	fromCache bool
}

func (f *FetchResult) URL() url.URL {
	return f.url
}

func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.responseHeaders
}

// FromCache reports whether the body was served from the local cache
// rather than the network. Cached responses did not touch the remote
// host, so politeness accounting must skip them.
func (f *FetchResult) FromCache() bool {
	return f.fromCache
}

type ResponseMeta struct {
	statusCode          int
	transferredSizeByte uint64
	responseHeaders     map[string]string
}

/*
CachePolicy bundles the caller's caching decisions for a fetch session:
whether to cache at all, how long entries stay fresh, and which hash
algorithm derives entry filenames.

The policy is fixed per fetcher instance. ttl applies at read time only;
entries themselves carry no expiry information.
*/
type CachePolicy struct {
	useCache bool
	ttl      time.Duration
	hashAlgo hashutil.HashAlgo
}

func NewCachePolicy(useCache bool, ttl time.Duration, hashAlgo hashutil.HashAlgo) CachePolicy {
	return CachePolicy{
		useCache: useCache,
		ttl:      ttl,
		hashAlgo: hashAlgo,
	}
}

func (p CachePolicy) UseCache() bool {
	return p.useCache
}

func (p CachePolicy) TTL() time.Duration {
	return p.ttl
}

func (p CachePolicy) HashAlgo() hashutil.HashAlgo {
	return p.hashAlgo
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	transferredSizeByte uint64,
	responseHeaders map[string]string,
	fromCache bool,
) FetchResult {
	return FetchResult{
		url:       url,
		body:      body,
		fromCache: fromCache,
		meta: ResponseMeta{
			statusCode:          statusCode,
			transferredSizeByte: transferredSizeByte,
			responseHeaders:     responseHeaders,
		},
	}
}
