package metadata

/*
Metadata Collected
- Fetch timestamps and HTTP status codes
- Cache hit/miss/store events
- Artifact paths (CSV, article Markdown, cache entries)
- Final run statistics

Determinism guarantees:
 - Metadata does not affect control flow
 - Errors do not change pagination decisions
 - Output is stable given identical inputs

Metadata is write-only.
No component may read metadata to influence collection decisions.
*/

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability.
  - TCP timeouts, DNS failures, connection resets.

# CausePolicyDisallow

  - The remote refused the request: HTTP 403 / 401, rate-limit enforcement.

# CauseContentInvalid

  - Content was fetched but could not be processed meaningfully.
  - Non-HTML responses, unextractable pages, broken DOM.

# CauseCacheFailure

  - A cache entry could not be read or written.
  - Always recovered locally; never visible to the caller of a fetch.

# CauseStorageFailure

  - Failure while persisting run artifacts (CSV, Markdown).
  - Disk full, write permission errors, filesystem I/O failures.

# CauseRetryFailure

  - All retry attempts for a network fetch were exhausted.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseCacheFailure
	CauseStorageFailure
	CauseRetryFailure
)

// causeLabel maps the canonical cause table to stable log labels.
func causeLabel(cause ErrorCause) string {
	switch cause {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseCacheFailure:
		return "cache_failure"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseRetryFailure:
		return "retry_failure"
	default:
		return "unknown"
	}
}

type AttrKey string

const (
	AttrURL       AttrKey = "url"
	AttrWritePath AttrKey = "write_path"
	AttrMessage   AttrKey = "message"
	AttrCacheKey  AttrKey = "cache_key"
	AttrPage      AttrKey = "page"
	AttrField     AttrKey = "field"
)

type Attribute struct {
	key   AttrKey
	value string
}

func NewAttr(key AttrKey, value string) Attribute {
	return Attribute{
		key:   key,
		value: value,
	}
}

func (a *Attribute) Key() AttrKey {
	return a.key
}

func (a *Attribute) Value() string {
	return a.value
}

type ArtifactKind string

const (
	ArtifactCSV        ArtifactKind = "csv"
	ArtifactMarkdown   ArtifactKind = "markdown"
	ArtifactCacheEntry ArtifactKind = "cache_entry"
)

// CacheEvent classifies a single cache interaction. Observational only:
// the hit/miss counters that drive reporting live on the cache-aware
// fetcher, not here.
type CacheEvent string

const (
	CacheHit         CacheEvent = "hit"
	CacheMiss        CacheEvent = "miss"
	CacheStore       CacheEvent = "store"
	CacheStoreFailed CacheEvent = "store_failed"
	CacheBypassed    CacheEvent = "bypassed"
)
