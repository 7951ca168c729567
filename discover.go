package main

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	postPathMarker     = "/blog/"
	paginationSelector = `div[data-component="Pagination Links Bar"]`
)

// nextPageLabels are the accepted labels of the "next" pagination affordance.
// The site has served both over time.
var nextPageLabels = []string{"next", "next page"}

// DiscoverPostLinks returns the absolute URLs of all post links on a listing
// page, deduplicated and sorted. The bare blog root and the listing page
// itself are never included.
func DiscoverPostLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, postPathMarker) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if isListingRoot(abs, base) {
			return
		}
		seen[abs.String()] = struct{}{}
	})

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// DiscoverNextPage returns the absolute URL of the next listing page, or an
// empty string when the pagination bar, the next affordance, or its target is
// absent. All three absences are expected on the last page.
func DiscoverNextPage(doc *goquery.Document, base *url.URL) string {
	pagination := doc.Find(paginationSelector).First()
	if pagination.Length() == 0 {
		return ""
	}

	var next string
	pagination.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !hasNextLabel(sel) {
			return true
		}
		href, ok := sel.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		next = base.ResolveReference(ref).String()
		return false
	})
	return next
}

func isListingRoot(u, base *url.URL) bool {
	path := strings.TrimRight(u.Path, "/")
	if path == strings.TrimRight(postPathMarker, "/") {
		return true
	}
	return u.Host == base.Host && path == strings.TrimRight(base.Path, "/")
}

func hasNextLabel(sel *goquery.Selection) bool {
	for _, attr := range []string{"title", "aria-label"} {
		val, ok := sel.Attr(attr)
		if !ok {
			continue
		}
		val = strings.ToLower(strings.TrimSpace(val))
		for _, label := range nextPageLabels {
			if val == label {
				return true
			}
		}
	}
	return false
}
