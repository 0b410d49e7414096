package urlutil_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/news-harvester/pkg/urlutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return *parsed
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "lowercases scheme and host",
			in:   "HTTPS://News.Example.ORG/noticias",
			want: "https://news.example.org/noticias",
		},
		{
			name: "strips default https port",
			in:   "https://news.example.org:443/noticias",
			want: "https://news.example.org/noticias",
		},
		{
			name: "strips trailing slash",
			in:   "https://news.example.org/noticias/",
			want: "https://news.example.org/noticias",
		},
		{
			name: "keeps root path",
			in:   "https://news.example.org/",
			want: "https://news.example.org/",
		},
		{
			name: "drops fragment and query",
			in:   "https://news.example.org/noticias?page=2#headline",
			want: "https://news.example.org/noticias",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urlutil.Canonicalize(mustParse(t, tt.in))
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	source := mustParse(t, "HTTP://Example.COM:80/Docs/?q=1#frag")
	once := urlutil.Canonicalize(source)
	twice := urlutil.Canonicalize(once)
	assert.Equal(t, once.String(), twice.String())
}

func TestIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain url keeps no query",
			in:   "https://news.example.org/noticias/",
			want: "https://news.example.org/noticias",
		},
		{
			name: "query is kept",
			in:   "https://news.example.org/noticias?page=2",
			want: "https://news.example.org/noticias?page=2",
		},
		{
			name: "query keys are sorted",
			in:   "https://news.example.org/noticias?page=2&category=events",
			want: "https://news.example.org/noticias?category=events&page=2",
		},
		{
			name: "fragment does not change identity",
			in:   "https://news.example.org/noticias?page=2#top",
			want: "https://news.example.org/noticias?page=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, urlutil.Identity(mustParse(t, tt.in)))
		})
	}
}

func TestIdentity_QueryOrderInsensitive(t *testing.T) {
	first := urlutil.Identity(mustParse(t, "https://news.example.org/n?a=1&b=2"))
	second := urlutil.Identity(mustParse(t, "https://news.example.org/n?b=2&a=1"))
	assert.Equal(t, first, second)
}

func TestPageURL(t *testing.T) {
	base := mustParse(t, "https://news.example.org/noticias/")

	tests := []struct {
		name string
		page int
		want string
	}{
		{name: "page one is the base listing", page: 1, want: "https://news.example.org/noticias/"},
		{name: "page two uses path form", page: 2, want: "https://news.example.org/noticias/page/2/"},
		{name: "page ten uses path form", page: 10, want: "https://news.example.org/noticias/page/10/"},
		{name: "page zero clamps to base", page: 0, want: "https://news.example.org/noticias/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := urlutil.PageURL(base, tt.page)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestPageURL_BaseWithoutTrailingSlash(t *testing.T) {
	base := mustParse(t, "https://news.example.org/noticias")
	got := urlutil.PageURL(base, 3)
	assert.Equal(t, "https://news.example.org/noticias/page/3/", got.String())
}
