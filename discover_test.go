package main

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsePage(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return parsed
}

func TestDiscoverPostLinks(t *testing.T) {
	doc := parsePage(t, `<html><body>
		<a href="/blog/post-one/">One</a>
		<a href="/blog/post-one/">One again</a>
		<a href="https://example.com/blog/post-two">Two</a>
		<a href="/blog/">All posts</a>
		<a href="/blog">All posts, no slash</a>
		<a href="/about">About</a>
	</body></html>`)
	base := mustParseURL(t, "https://example.com/contributors/someone/")

	links := DiscoverPostLinks(doc, base)

	assert.Equal(t, []string{
		"https://example.com/blog/post-one/",
		"https://example.com/blog/post-two",
	}, links)
}

func TestDiscoverPostLinksExcludesListingItself(t *testing.T) {
	doc := parsePage(t, `<html><body>
		<a href="/blog/page/2/">next listing</a>
		<a href="/blog/a-post/">a post</a>
	</body></html>`)
	base := mustParseURL(t, "https://example.com/blog/page/2/")

	links := DiscoverPostLinks(doc, base)

	assert.Equal(t, []string{"https://example.com/blog/a-post/"}, links)
}

func TestDiscoverPostLinksEmptyPage(t *testing.T) {
	doc := parsePage(t, `<html><body><p>nothing here</p></body></html>`)
	base := mustParseURL(t, "https://example.com/")

	assert.Empty(t, DiscoverPostLinks(doc, base))
}

func TestDiscoverNextPageByTitle(t *testing.T) {
	doc := parsePage(t, `<html><body>
		<div data-component="Pagination Links Bar">
			<a title="Previous" href="/page/1">←</a>
			<a title="Next" href="/page/3">→</a>
		</div>
	</body></html>`)
	base := mustParseURL(t, "https://example.com/page/2")

	assert.Equal(t, "https://example.com/page/3", DiscoverNextPage(doc, base))
}

func TestDiscoverNextPageByAriaLabel(t *testing.T) {
	doc := parsePage(t, `<html><body>
		<div data-component="Pagination Links Bar">
			<a aria-label="Next page" href="/page/3">→</a>
		</div>
	</body></html>`)
	base := mustParseURL(t, "https://example.com/page/2")

	assert.Equal(t, "https://example.com/page/3", DiscoverNextPage(doc, base))
}

func TestDiscoverNextPageAbsences(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{
			name:   "no pagination bar",
			markup: `<html><body><p>last page</p></body></html>`,
		},
		{
			name:   "no next affordance",
			markup: `<html><body><div data-component="Pagination Links Bar"><a title="Previous" href="/page/1">←</a></div></body></html>`,
		},
		{
			name:   "next without target",
			markup: `<html><body><div data-component="Pagination Links Bar"><a title="Next">→</a></div></body></html>`,
		},
	}

	base := mustParseURL(t, "https://example.com/page/2")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "", DiscoverNextPage(parsePage(t, tt.markup), base))
		})
	}
}
