/*
Responsibilities
- Parse raw article bytes into a DOM tree
- Remove site chrome and noise
- Remove empty leftovers the stripping creates

This stage ensures downstream Markdown conversion is deterministic.
*/
package sanitizer

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/pkg/failure"
	"golang.org/x/net/html"
)

type ArticleSanitizer struct {
	metadataSink metadata.MetadataSink
}

func NewArticleSanitizer(metadataSink metadata.MetadataSink) ArticleSanitizer {
	return ArticleSanitizer{
		metadataSink: metadataSink,
	}
}

func (a *ArticleSanitizer) Sanitize(htmlByte []byte) (SanitizedDoc, failure.ClassifiedError) {
	doc, err := sanitize(htmlByte)
	if err != nil {
		var sanitizationError *SanitizationError
		errors.As(err, &sanitizationError)
		a.metadataSink.RecordError(
			time.Now(),
			"sanitizer",
			"ArticleSanitizer.Sanitize",
			mapSanitizationErrorToMetadataCause(sanitizationError),
			err.Error(),
			nil,
		)
		return SanitizedDoc{}, sanitizationError
	}
	return doc, nil
}

func sanitize(htmlByte []byte) (SanitizedDoc, error) {
	root, err := html.Parse(bytes.NewReader(htmlByte))
	if err != nil {
		return SanitizedDoc{}, &SanitizationError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseBrokenDOM,
		}
	}

	removeChrome(root)
	removeEmptyNodesBottomUp(root)

	return SanitizedDoc{root: root}, nil
}
