package extractor

import (
	"net/url"

	"github.com/rohmanhakim/news-harvester/pkg/failure"
)

type PageExtractor interface {
	Extract(
		pageUrl url.URL,
		htmlByte []byte,
	) ([]Item, failure.ClassifiedError)
}
