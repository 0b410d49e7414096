package sanitizer

import (
	"golang.org/x/net/html"
)

type SanitizedDoc struct {
	root *html.Node
}

func (s *SanitizedDoc) Root() *html.Node {
	return s.root
}

// NewSanitizedDoc creates a SanitizedDoc for testing purposes.
// The field remains private to maintain immutability.
func NewSanitizedDoc(root *html.Node) SanitizedDoc {
	return SanitizedDoc{
		root: root,
	}
}
