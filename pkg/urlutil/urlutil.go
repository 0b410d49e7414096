package urlutil

import (
	"fmt"
	"net/url"
)

// Canonicalize applies a deterministic normalization to a URL, producing a canonical form.
// It maps equivalent URL spellings to a single canonical representation.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Query parameters are removed
//   - Default ports are omitted (e.g., :80 for http, :443 for https)
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
func Canonicalize(sourceUrl url.URL) url.URL {
	// Create a copy to avoid mutating the original
	canonical := sourceUrl

	// Lowercase scheme and host
	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	// Remove default port if present
	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	// Clean the path: remove trailing slashes (except root)
	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	// Remove fragment (anchor)
	canonical.Fragment = ""
	canonical.RawFragment = ""

	// Remove query parameters
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// Identity returns the request-identity string used to key cached responses:
// the canonical URL plus its sorted, re-encoded query string.
//
// Fragments never reach the server, so they are dropped. Query parameters do
// affect the response (e.g. ?page=2) and are kept, re-encoded in sorted key
// order so that parameter ordering in the source URL does not change the
// identity. Pure function of the request.
func Identity(sourceUrl url.URL) string {
	canonical := Canonicalize(sourceUrl)

	query := sourceUrl.Query()
	if len(query) == 0 {
		return canonical.String()
	}

	// url.Values.Encode sorts by key
	return canonical.String() + "?" + query.Encode()
}

// PageURL returns the listing URL for the given 1-based page number.
// Page 1 is the base listing itself; later pages use the /page/N/ path form
// commonly served by news CMSes.
func PageURL(baseUrl url.URL, page int) url.URL {
	if page <= 1 {
		return baseUrl
	}

	paged := baseUrl
	path := paged.Path
	if len(path) == 0 || path[len(path)-1] != '/' {
		path += "/"
	}
	paged.Path = fmt.Sprintf("%spage/%d/", path, page)
	return paged
}

// lowerASCII converts ASCII characters to lowercase without allocating.
// This is faster than strings.ToLower for ASCII-only strings.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
