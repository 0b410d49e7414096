package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/pkg/failure"
)

/*
Responsibilities
- Parse listing pages into a DOM tree
- Match headline candidates against the selector table
- Resolve each headline to an absolute article link

Extraction Rules
- Candidates shorter than minTitleLength are discarded
- The article link is searched in this order:
    - The matched node itself is an anchor
    - An anchor inside the matched node
    - The nearest anchor ancestor
- Relative links are resolved against the page URL
- Pure fragment links ("#...") are treated as no link
- Duplicate titles within one page are collected once

The extractor never fetches; it only reads the bytes it is given.
*/

type HeadlineExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewHeadlineExtractor(
	metadataSink metadata.MetadataSink,
) HeadlineExtractor {
	return HeadlineExtractor{
		metadataSink: metadataSink,
	}
}

func (h *HeadlineExtractor) Extract(
	pageUrl url.URL,
	htmlByte []byte,
) ([]Item, failure.ClassifiedError) {
	items, err := h.extract(pageUrl, htmlByte)
	if err != nil {
		var extractionError *ExtractionError
		errors.As(err, &extractionError)
		h.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"HeadlineExtractor.Extract",
			mapExtractionErrorToMetadataCause(extractionError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fmt.Sprintf("%v", pageUrl.String())),
			},
		)
		return nil, extractionError
	}
	return items, nil
}

func (h *HeadlineExtractor) extract(pageUrl url.URL, htmlByte []byte) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlByte))
	if err != nil {
		return nil, &ExtractionError{
			Message:   fmt.Sprintf("failed to parse HTML: %v", err),
			Retryable: false,
			Cause:     ErrCauseNotHTML,
		}
	}

	collectedAt := time.Now()
	seenTitles := make(map[string]bool)
	var items []Item

	for _, selector := range headlineSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			title := normalizeTitle(sel.Text())
			if utf8.RuneCountInString(title) < minTitleLength {
				return
			}

			dedupeKey := strings.ToLower(title)
			if seenTitles[dedupeKey] {
				return
			}
			seenTitles[dedupeKey] = true

			items = append(items, Item{
				title:       title,
				link:        resolveArticleLink(pageUrl, sel),
				sourceTag:   selectorLabel(selector, sel),
				summary:     nearbySummary(sel),
				collectedAt: collectedAt,
			})
		})
	}

	return items, nil
}

// normalizeTitle collapses the whitespace runs that nested markup
// leaves behind in the text content.
func normalizeTitle(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// resolveArticleLink finds the anchor associated with a headline node and
// resolves its href to an absolute URL. Returns the zero url.URL when the
// headline carries no usable link.
func resolveArticleLink(pageUrl url.URL, sel *goquery.Selection) url.URL {
	href := ""

	switch {
	case sel.Is("a"):
		href, _ = sel.Attr("href")
	case sel.Find("a").Length() > 0:
		href, _ = sel.Find("a").First().Attr("href")
	default:
		if closest := sel.Closest("a"); closest.Length() > 0 {
			href, _ = closest.Attr("href")
		}
	}

	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return url.URL{}
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return url.URL{}
	}
	return *pageUrl.ResolveReference(parsed)
}

// selectorLabel reports what matched: class selectors keep their label,
// element selectors report the actual tag name.
func selectorLabel(selector string, sel *goquery.Selection) string {
	if strings.HasPrefix(selector, ".") {
		return strings.TrimPrefix(selector, ".")
	}
	return goquery.NodeName(sel)
}

// nearbySummary picks up the lead paragraph when the markup places one
// right after the headline.
func nearbySummary(sel *goquery.Selection) string {
	next := sel.Next()
	if next.Length() > 0 && goquery.NodeName(next) == "p" {
		return normalizeTitle(next.Text())
	}
	return ""
}

var _ PageExtractor = (*HeadlineExtractor)(nil)
