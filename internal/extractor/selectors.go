package extractor

/*
Selector Strategy

News sites rarely agree on markup. Headlines are matched in two layers:

 1. Plain heading elements (h1-h3), which almost every site uses.
 2. Class-based selectors covering the common CMS conventions, including
    the Portuguese-language ones (titulo, manchete) seen on Brazilian
    news portals.

A node matched by more than one selector is collected once; later
duplicates of the same title on the same page are dropped.
*/

// headlineSelectors lists the CSS selectors probed on every listing page,
// in match priority order.
var headlineSelectors = []string{
	"h1",
	"h2",
	"h3",
	".titulo",
	".manchete",
	".headline",
	".title",
	".news-title",
}

// minTitleLength filters out section labels and widget headings, which
// tend to be short ("Sports", "Mais lidas"). Real headlines run longer.
const minTitleLength = 20
