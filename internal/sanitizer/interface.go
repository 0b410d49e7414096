package sanitizer

import (
	"github.com/rohmanhakim/news-harvester/pkg/failure"
)

// Sanitizer defines the interface for HTML sanitization.
// Implementations must ensure the DOM is structurally valid and deterministic
type Sanitizer interface {
	// Sanitize parses the article bytes and returns a document stripped
	// of site chrome, or a ClassifiedError if the bytes are not a usable
	// HTML document.
	Sanitize(htmlByte []byte) (SanitizedDoc, failure.ClassifiedError)
}

// Compile-time interface check
var _ Sanitizer = (*ArticleSanitizer)(nil)
