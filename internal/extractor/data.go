package extractor

import (
	"net/url"
	"time"
)

// Item is one collected headline with its context.
// Items are value objects; enrichment (like attaching the stored article
// path) produces a copy instead of mutating in place.
type Item struct {
	title       string
	link        url.URL
	sourceTag   string
	summary     string
	collectedAt time.Time
	contentPath string
}

func (i Item) Title() string {
	return i.title
}

func (i Item) Link() url.URL {
	return i.link
}

// SourceTag is the HTML element or class the headline was found under,
// kept for debugging selector coverage per site.
func (i Item) SourceTag() string {
	return i.sourceTag
}

func (i Item) Summary() string {
	return i.summary
}

func (i Item) CollectedAt() time.Time {
	return i.collectedAt
}

func (i Item) ContentPath() string {
	return i.contentPath
}

// WithContentPath returns a copy of the item pointing at its stored
// article file.
func (i Item) WithContentPath(path string) Item {
	copied := i
	copied.contentPath = path
	return copied
}

// NewItemForTest constructs an Item without going through extraction.
func NewItemForTest(
	title string,
	link url.URL,
	sourceTag string,
	summary string,
	collectedAt time.Time,
) Item {
	return Item{
		title:       title,
		link:        link,
		sourceTag:   sourceTag,
		summary:     summary,
		collectedAt: collectedAt,
	}
}
