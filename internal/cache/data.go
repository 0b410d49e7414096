package cache

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rohmanhakim/news-harvester/pkg/failure"
	"github.com/rohmanhakim/news-harvester/pkg/hashutil"
	"github.com/rohmanhakim/news-harvester/pkg/urlutil"
)

// entryExtension marks files in the store root that hold cached response
// bodies. Anything else in the directory is ignored by scans.
const entryExtension = ".cache"

/*
Key identifies a cached response.

A Key is a pure function of the request identity: the canonical form of the
URL plus its sorted query string. Two URLs that differ only in fragment or in
query-parameter ordering produce the same Key. Construction never consults
the filesystem or the clock.
*/
type Key struct {
	identity string
	filename string
}

// NewKey derives the cache key for a request URL.
// The stored filename is the hex digest of the identity string, so keys are
// filesystem-safe regardless of what characters the URL contains.
func NewKey(fetchUrl url.URL, algo hashutil.HashAlgo) (Key, failure.ClassifiedError) {
	identity := urlutil.Identity(fetchUrl)
	digest, err := hashutil.HashBytes([]byte(identity), algo)
	if err != nil {
		return Key{}, &StoreError{
			Message:   fmt.Sprintf("derive key for %s: %v", identity, err),
			Retryable: false,
			Cause:     ErrCauseKeyDerivation,
		}
	}
	return Key{
		identity: identity,
		filename: digest + entryExtension,
	}, nil
}

func (k Key) Identity() string {
	return k.identity
}

func (k Key) Filename() string {
	return k.filename
}

/*
Entry is a snapshot of one cached response.

Entries are immutable: storing a new response for the same Key replaces the
entry wholesale, it never mutates an existing one. storedAt is fixed at store
time and is the reference point for expiry.
*/
type Entry struct {
	body     []byte
	storedAt time.Time
	sizeByte int64
}

func (e Entry) Body() []byte {
	return e.body
}

func (e Entry) StoredAt() time.Time {
	return e.storedAt
}

func (e Entry) SizeByte() int64 {
	return e.sizeByte
}
