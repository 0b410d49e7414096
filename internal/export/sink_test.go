package export_test

import (
	"encoding/csv"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/news-harvester/internal/export"
	"github.com/rohmanhakim/news-harvester/internal/extractor"
	"github.com/rohmanhakim/news-harvester/internal/metadata"
	"github.com/rohmanhakim/news-harvester/pkg/hashutil"
)

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return *parsed
}

func testItems(t *testing.T) []extractor.Item {
	t.Helper()
	collectedAt := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	return []extractor.Item{
		extractor.NewItemForTest(
			"Economia cresce 2,1% no segundo trimestre",
			mustParseURL(t, "https://news.example.com/noticias/economia"),
			"h2",
			"O PIB avançou segundo o instituto.",
			collectedAt,
		),
		extractor.NewItemForTest(
			"Chuvas intensas atingem o litoral",
			url.URL{},
			"manchete",
			"",
			collectedAt,
		),
	}
}

func TestCSVSinkWriteItems(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "news.csv")
	sink := export.NewCSVSink(&metadata.NoopSink{})

	result, err := sink.WriteItems(outputFile, testItems(t))
	require.NoError(t, err)
	assert.Equal(t, outputFile, result.Path())

	file, openErr := os.Open(outputFile)
	require.NoError(t, openErr)
	defer file.Close()

	records, readErr := csv.NewReader(file).ReadAll()
	require.NoError(t, readErr)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"title", "link", "tag", "summary", "collected_at", "content_path"}, records[0])
	assert.Equal(t, []string{
		"Economia cresce 2,1% no segundo trimestre",
		"https://news.example.com/noticias/economia",
		"h2",
		"O PIB avançou segundo o instituto.",
		"2026-08-30T10:00:00Z",
		"",
	}, records[1])

	// Linkless item exports an empty link column
	assert.Equal(t, "", records[2][1])
}

func TestCSVSinkOverwritesPreviousExport(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "news.csv")
	sink := export.NewCSVSink(&metadata.NoopSink{})

	_, err := sink.WriteItems(outputFile, testItems(t))
	require.NoError(t, err)
	_, err = sink.WriteItems(outputFile, testItems(t)[:1])
	require.NoError(t, err)

	file, openErr := os.Open(outputFile)
	require.NoError(t, openErr)
	defer file.Close()

	records, readErr := csv.NewReader(file).ReadAll()
	require.NoError(t, readErr)
	assert.Len(t, records, 2)
}

func TestCSVSinkEmptyRun(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "news.csv")
	sink := export.NewCSVSink(&metadata.NoopSink{})

	_, err := sink.WriteItems(outputFile, nil)
	require.NoError(t, err)

	content, readErr := os.ReadFile(outputFile)
	require.NoError(t, readErr)
	assert.Equal(t, "title,link,tag,summary,collected_at,content_path\n", string(content))
}

func TestCSVSinkContentPathColumn(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "news.csv")
	sink := export.NewCSVSink(&metadata.NoopSink{})

	item := testItems(t)[0].WithContentPath("content/abc123def456.md")
	_, err := sink.WriteItems(outputFile, []extractor.Item{item})
	require.NoError(t, err)

	content, readErr := os.ReadFile(outputFile)
	require.NoError(t, readErr)
	assert.Contains(t, string(content), "content/abc123def456.md")
}

func TestMarkdownSinkWriteArticle(t *testing.T) {
	contentDir := filepath.Join(t.TempDir(), "content")
	sink := export.NewMarkdownSink(&metadata.NoopSink{})
	articleUrl := mustParseURL(t, "https://news.example.com/noticias/economia")

	result, err := sink.WriteArticle(contentDir, articleUrl, []byte("# Economia\n\nCorpo.\n"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)

	assert.Len(t, result.URLHash(), 12)
	assert.True(t, strings.HasSuffix(result.Path(), result.URLHash()+".md"))

	content, readErr := os.ReadFile(result.Path())
	require.NoError(t, readErr)
	assert.Equal(t, "# Economia\n\nCorpo.\n", string(content))
}

func TestMarkdownSinkDeterministicFilename(t *testing.T) {
	contentDir := filepath.Join(t.TempDir(), "content")
	sink := export.NewMarkdownSink(&metadata.NoopSink{})

	first, err := sink.WriteArticle(contentDir, mustParseURL(t, "https://news.example.com/noticias/economia"), []byte("v1"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)

	// Equivalent spelling overwrites the same file
	second, err := sink.WriteArticle(contentDir, mustParseURL(t, "https://NEWS.example.com/noticias/economia/"), []byte("v2"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)

	assert.Equal(t, first.Path(), second.Path())

	content, readErr := os.ReadFile(first.Path())
	require.NoError(t, readErr)
	assert.Equal(t, "v2", string(content))

	entries, dirErr := os.ReadDir(contentDir)
	require.NoError(t, dirErr)
	assert.Len(t, entries, 1)
}

func TestMarkdownSinkBlockedContentDir(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "occupied")
	require.NoError(t, os.WriteFile(blocked, []byte("not a directory"), 0644))

	sink := export.NewMarkdownSink(&metadata.NoopSink{})
	_, err := sink.WriteArticle(
		filepath.Join(blocked, "content"),
		mustParseURL(t, "https://news.example.com/noticias/economia"),
		[]byte("body"),
		hashutil.HashAlgoSHA256,
	)
	require.Error(t, err)

	var storageErr *export.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, export.StorageErrorCause(export.ErrCausePathError), storageErr.Cause)
}
