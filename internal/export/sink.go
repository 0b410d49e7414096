package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rohmanhakim/news-harvester/internal/extractor"
	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/pkg/failure"
	"github.com/rohmanhakim/news-harvester/pkg/fileutil"
	"github.com/rohmanhakim/news-harvester/pkg/hashutil"
	"github.com/rohmanhakim/news-harvester/pkg/urlutil"
)

/*
Responsibilities
- Persist the collected items as CSV
- Persist converted article Markdown
- Ensure deterministic filenames

Output Characteristics
- Stable column and directory layout
- Idempotent writes
- Overwrite-safe reruns
*/

// csvHeader is the fixed column layout of the item export.
var csvHeader = []string{"title", "link", "tag", "summary", "collected_at", "content_path"}

type CSVSink struct {
	metadataSink metadata.MetadataSink
}

func NewCSVSink(
	metadataSink metadata.MetadataSink,
) CSVSink {
	return CSVSink{
		metadataSink: metadataSink,
	}
}

// WriteItems writes all collected items to a single CSV file, replacing
// any previous export at that path.
func (s *CSVSink) WriteItems(
	outputFile string,
	items []extractor.Item,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := writeCSV(outputFile, items)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"export",
			"CSVSink.WriteItems",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactCSV,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
		},
	)
	return writeResult, nil
}

func writeCSV(outputFile string, items []extractor.Item) (WriteResult, failure.ClassifiedError) {
	if dir := filepath.Dir(outputFile); dir != "." {
		if err := fileutil.EnsureDir(dir); err != nil {
			return WriteResult{}, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCausePathError,
				Path:      dir,
			}
		}
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	records := make([][]string, 0, len(items)+1)
	records = append(records, csvHeader)
	for _, item := range items {
		records = append(records, []string{
			item.Title(),
			itemLink(item),
			item.SourceTag(),
			item.Summary(),
			item.CollectedAt().Format(time.RFC3339),
			item.ContentPath(),
		})
	}

	if err := writer.WriteAll(records); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      outputFile,
		}
	}

	if err := fileutil.WriteFileAtomic(outputFile, buf.Bytes(), 0644); err != nil {
		return WriteResult{}, classifyWriteError(err, outputFile)
	}

	return NewWriteResult("", outputFile), nil
}

// itemLink renders the article link, or empty when the headline carried none.
func itemLink(item extractor.Item) string {
	link := item.Link()
	if link.Host == "" {
		return ""
	}
	return link.String()
}

type MarkdownSink struct {
	metadataSink metadata.MetadataSink
}

func NewMarkdownSink(
	metadataSink metadata.MetadataSink,
) MarkdownSink {
	return MarkdownSink{
		metadataSink: metadataSink,
	}
}

// WriteArticle persists one converted article under contentDir. The
// filename is derived from the canonical article URL, so re-harvesting
// the same article overwrites its file instead of accumulating copies.
func (s *MarkdownSink) WriteArticle(
	contentDir string,
	articleUrl url.URL,
	markdown []byte,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	writeResult, err := writeArticle(contentDir, articleUrl, markdown, hashAlgo)
	if err != nil {
		var storageError *StorageError
		errors.As(err, &storageError)
		s.metadataSink.RecordError(
			time.Now(),
			"export",
			"MarkdownSink.WriteArticle",
			mapStorageErrorToMetadataCause(storageError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, articleUrl.String()),
				metadata.NewAttr(metadata.AttrWritePath, storageError.Path),
			},
		)
		return WriteResult{}, storageError
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactMarkdown,
		writeResult.Path(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, writeResult.Path()),
			metadata.NewAttr(metadata.AttrURL, articleUrl.String()),
		},
	)
	return writeResult, nil
}

func writeArticle(
	contentDir string,
	articleUrl url.URL,
	markdown []byte,
	hashAlgo hashutil.HashAlgo,
) (WriteResult, failure.ClassifiedError) {
	canonical := urlutil.Canonicalize(articleUrl)

	urlHashFull, err := hashutil.HashBytes([]byte(canonical.String()), hashAlgo)
	if err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseHashComputationFailed,
			Path:      "",
		}
	}

	// First 12 hex characters keep filenames short but collision-safe
	// at this scale
	urlHash := urlHashFull[:12]

	if err := fileutil.EnsureDir(contentDir); err != nil {
		return WriteResult{}, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCausePathError,
			Path:      contentDir,
		}
	}

	fullPath := filepath.Join(contentDir, urlHash+".md")
	if err := os.WriteFile(fullPath, markdown, 0644); err != nil {
		return WriteResult{}, classifyOSWriteError(err, fullPath)
	}

	return NewWriteResult(urlHash, fullPath), nil
}

func classifyWriteError(err failure.ClassifiedError, path string) *StorageError {
	return &StorageError{
		Message:   err.Error(),
		Retryable: err.Severity() == failure.SeverityRecoverable,
		Cause:     ErrCauseWriteFailure,
		Path:      path,
	}
}

func classifyOSWriteError(err error, path string) *StorageError {
	cause := StorageErrorCause(ErrCauseWriteFailure)
	retryable := false

	// Disk full is worth retrying once space is reclaimed
	if errors.Is(err, syscall.ENOSPC) {
		cause = ErrCauseDiskFull
		retryable = true
	}

	return &StorageError{
		Message:   fmt.Sprintf("%v", err),
		Retryable: retryable,
		Cause:     cause,
		Path:      path,
	}
}
