package extractor_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/news-harvester/internal/extractor"
	"github.com/rohmanhakim/news-harvester/internal/metadata"
)

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return *parsed
}

func extractItems(t *testing.T, pageUrl string, body string) []extractor.Item {
	t.Helper()
	ex := extractor.NewHeadlineExtractor(&metadata.NoopSink{})
	items, err := ex.Extract(mustParseURL(t, pageUrl), []byte(body))
	require.NoError(t, err)
	return items
}

func TestExtractHeadlinesFromListing(t *testing.T) {
	body := `<html><body>
		<h1>Governo anuncia novo pacote de infraestrutura</h1>
		<h2><a href="/noticias/economia-cresce">Economia cresce 2,1% no segundo trimestre</a></h2>
		<div class="manchete"><a href="https://other.example.com/chuvas">Chuvas intensas atingem o litoral durante o feriado</a></div>
	</body></html>`

	items := extractItems(t, "https://news.example.com/latest", body)
	require.Len(t, items, 3)

	assert.Equal(t, "Governo anuncia novo pacote de infraestrutura", items[0].Title())
	assert.Equal(t, "h1", items[0].SourceTag())

	assert.Equal(t, "Economia cresce 2,1% no segundo trimestre", items[1].Title())
	link1 := items[1].Link()
	assert.Equal(t, "https://news.example.com/noticias/economia-cresce", link1.String())
	assert.Equal(t, "h2", items[1].SourceTag())

	link2 := items[2].Link()
	assert.Equal(t, "https://other.example.com/chuvas", link2.String())
	assert.Equal(t, "manchete", items[2].SourceTag())
}

func TestExtractFiltersShortTitles(t *testing.T) {
	body := `<html><body>
		<h2>Esportes</h2>
		<h2>Mais lidas</h2>
		<h2>Prefeitura abre inscrições para concurso público</h2>
	</body></html>`

	items := extractItems(t, "https://news.example.com/latest", body)
	require.Len(t, items, 1)
	assert.Equal(t, "Prefeitura abre inscrições para concurso público", items[0].Title())
}

func TestExtractDeduplicatesTitlesWithinPage(t *testing.T) {
	body := `<html><body>
		<h2>Economia cresce no segundo trimestre</h2>
		<div class="headline">Economia cresce no segundo trimestre</div>
		<div class="headline">ECONOMIA CRESCE NO SEGUNDO TRIMESTRE</div>
	</body></html>`

	items := extractItems(t, "https://news.example.com/latest", body)
	assert.Len(t, items, 1)
}

func TestExtractLinkDetection(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "headline is the anchor",
			body:     `<a href="/a1" class="headline">Headline served directly from an anchor tag</a>`,
			expected: "https://news.example.com/a1",
		},
		{
			name:     "anchor inside headline",
			body:     `<h2><a href="/a2">Headline wrapping an inner anchor element</a></h2>`,
			expected: "https://news.example.com/a2",
		},
		{
			name:     "anchor wrapping headline",
			body:     `<a href="/a3"><h2>Headline nested inside an outer anchor</h2></a>`,
			expected: "https://news.example.com/a3",
		},
		{
			name:     "fragment link dropped",
			body:     `<h2><a href="#comments">Headline linking only to a page fragment</a></h2>`,
			expected: "",
		},
		{
			name:     "no link at all",
			body:     `<h2>Headline published without any link markup</h2>`,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := extractItems(t, "https://news.example.com/latest", "<html><body>"+tt.body+"</body></html>")
			require.Len(t, items, 1)
			link := items[0].Link()
			assert.Equal(t, tt.expected, link.String())
		})
	}
}

func TestExtractCollapsesNestedWhitespace(t *testing.T) {
	body := `<html><body><h2>
		<a href="/a">Economia
			cresce  no
			segundo trimestre</a>
	</h2></body></html>`

	items := extractItems(t, "https://news.example.com/latest", body)
	require.Len(t, items, 1)
	assert.Equal(t, "Economia cresce no segundo trimestre", items[0].Title())
}

func TestExtractPicksUpLeadParagraph(t *testing.T) {
	body := `<html><body>
		<h2>Prefeitura abre inscrições para concurso público</h2>
		<p>As inscrições começam na próxima segunda-feira.</p>
	</body></html>`

	items := extractItems(t, "https://news.example.com/latest", body)
	require.Len(t, items, 1)
	assert.Equal(t, "As inscrições começam na próxima segunda-feira.", items[0].Summary())
}

func TestExtractEmptyPage(t *testing.T) {
	items := extractItems(t, "https://news.example.com/latest", "<html><body><p>nada por aqui</p></body></html>")
	assert.Empty(t, items)
}

func TestWithContentPathReturnsCopy(t *testing.T) {
	original := extractor.NewItemForTest(
		"Economia cresce no segundo trimestre",
		mustParseURL(t, "https://news.example.com/a"),
		"h2",
		"",
		time.Now(),
	)

	enriched := original.WithContentPath("content/abc123def456.md")

	assert.Equal(t, "content/abc123def456.md", enriched.ContentPath())
	assert.Empty(t, original.ContentPath())
	assert.Equal(t, original.Title(), enriched.Title())
}
