package cache

import (
	"time"

	"github.com/rohmanhakim/news-harvester/pkg/failure"
)

/*
Store persists fetched response bodies keyed by request identity.

Freshness is decided at read time against the ttl the caller passes in:
the store itself has no notion of a global expiry policy. Get fails closed:
an entry that is expired, unreadable, or corrupt is reported as absent,
never as an error, so a broken cache degrades to re-fetching rather than
breaking the run.
*/
type Store interface {
	// Get returns the entry for key if one exists and is younger than ttl.
	// The second return is false for any absent, expired, or unreadable
	// entry. Expired entries are left in place.
	Get(key Key, ttl time.Duration) (Entry, bool)

	// Put stores body under key, replacing any existing entry atomically.
	Put(key Key, body []byte) failure.ClassifiedError

	// PurgeExpired removes every entry older than ttl and reports how many
	// were removed.
	PurgeExpired(ttl time.Duration) (int, failure.ClassifiedError)

	// Size returns the total size in bytes of all entries, fresh or not.
	Size() (int64, failure.ClassifiedError)

	// EntryCount returns the number of entries, fresh or not.
	EntryCount() (int, failure.ClassifiedError)

	// Clear removes every entry regardless of age.
	Clear() failure.ClassifiedError
}
