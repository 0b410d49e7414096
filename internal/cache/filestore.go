package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/pkg/failure"
	"github.com/rohmanhakim/news-harvester/pkg/fileutil"
)

/*
FileStore keeps one file per cached response under a single root directory.

Layout:

	<root>/<hex digest>.cache

The file holds the raw response body and nothing else. The entry's store
time is the file's modification time, so expiry needs no sidecar metadata
and survives process restarts for free. Writes go through a temp file and
rename, so a reader never sees a partially written entry.
*/
type FileStore struct {
	root         string
	metadataSink metadata.MetadataSink
}

func NewFileStore(root string, metadataSink metadata.MetadataSink) *FileStore {
	return &FileStore{
		root:         root,
		metadataSink: metadataSink,
	}
}

func (s *FileStore) Get(key Key, ttl time.Duration) (Entry, bool) {
	path := filepath.Join(s.root, key.Filename())

	info, err := os.Stat(path)
	if err != nil {
		// Plain miss, not worth a metadata record
		return Entry{}, false
	}
	if info.IsDir() {
		s.recordFailure("get", fmt.Sprintf("entry path is a directory: %s", path), key)
		return Entry{}, false
	}

	storedAt := info.ModTime()
	if time.Since(storedAt) > ttl {
		// Expired entries stay on disk; the next Put overwrites them
		return Entry{}, false
	}

	body, err := os.ReadFile(path)
	if err != nil {
		s.recordFailure("get", fmt.Sprintf("read entry %s: %v", path, err), key)
		return Entry{}, false
	}

	return Entry{
		body:     body,
		storedAt: storedAt,
		sizeByte: info.Size(),
	}, true
}

func (s *FileStore) Put(key Key, body []byte) failure.ClassifiedError {
	if err := fileutil.EnsureDir(s.root); err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
		}
	}

	path := filepath.Join(s.root, key.Filename())
	if err := fileutil.WriteFileAtomic(path, body, 0644); err != nil {
		return &StoreError{
			Message:   err.Error(),
			Retryable: err.Severity() == failure.SeverityRecoverable,
			Cause:     ErrCauseWriteFailure,
		}
	}

	s.metadataSink.RecordArtifact(metadata.ArtifactCacheEntry, path, []metadata.Attribute{
		metadata.NewAttr(metadata.AttrCacheKey, key.Identity()),
	})
	return nil
}

func (s *FileStore) PurgeExpired(ttl time.Duration) (int, failure.ClassifiedError) {
	entries, err := s.listEntries()
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, entry := range entries {
		info, statErr := entry.Info()
		if statErr != nil {
			continue
		}
		if time.Since(info.ModTime()) <= ttl {
			continue
		}
		path := filepath.Join(s.root, entry.Name())
		if rmErr := os.Remove(path); rmErr != nil {
			s.metadataSink.RecordError(
				time.Now(),
				"cache",
				"purge_expired",
				metadata.CauseCacheFailure,
				rmErr.Error(),
				[]metadata.Attribute{metadata.NewAttr(metadata.AttrWritePath, path)},
			)
			continue
		}
		purged++
	}
	return purged, nil
}

func (s *FileStore) Size() (int64, failure.ClassifiedError) {
	entries, err := s.listEntries()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, entry := range entries {
		info, statErr := entry.Info()
		if statErr != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (s *FileStore) EntryCount() (int, failure.ClassifiedError) {
	entries, err := s.listEntries()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *FileStore) Clear() failure.ClassifiedError {
	entries, err := s.listEntries()
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(s.root, entry.Name())
		if rmErr := os.Remove(path); rmErr != nil {
			return &StoreError{
				Message:   fmt.Sprintf("remove entry %s: %v", path, rmErr),
				Retryable: true,
				Cause:     ErrCauseWriteFailure,
			}
		}
	}
	return nil
}

// listEntries returns the directory entries that look like cache entries.
// A store root that does not exist yet is an empty store, not an error.
func (s *FileStore) listEntries() ([]os.DirEntry, failure.ClassifiedError) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StoreError{
			Message:   fmt.Sprintf("read store root %s: %v", s.root, err),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
		}
	}

	entries := make([]os.DirEntry, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), entryExtension) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *FileStore) recordFailure(action string, message string, key Key) {
	s.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		metadata.CauseCacheFailure,
		message,
		[]metadata.Attribute{metadata.NewAttr(metadata.AttrCacheKey, key.Identity())},
	)
}

var _ Store = (*FileStore)(nil)
