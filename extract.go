package main

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	contentSelector      = "div.txt-rich-long"
	maxDescriptionLength = 160
)

// dateFormats are tried in order against each date candidate.
var dateFormats = []string{
	"2006-01-02",
	"January 2, 2006",
	time.RFC3339,
}

// dateCandidates is the ordered list of places a publication date may appear.
// The last entry is the marker the site used before it adopted <time>.
var dateCandidates = []struct {
	selector string
	attr     string
}{
	{selector: "time[datetime]", attr: "datetime"},
	{selector: "article time, .post-card time"},
	{selector: `[class*="date"]`},
	{selector: "article p.txt-body-bold"},
}

// PostDocument is the in-memory result of extracting one post. Categories,
// keywords, and tags start empty and are curated by hand after the fact.
type PostDocument struct {
	Title        string
	Description  string
	PubDate      time.Time
	Slug         string
	CanonicalURL string
	Image        string
	Categories   []string
	Keywords     []string
	Tags         []string
	Draft        bool
	Body         string
}

// Extractor assembles a PostDocument from a fetched post page. Every field is
// best-effort: a missing title, date, or content region yields a default, not
// a failed extraction.
type Extractor struct {
	transformer *Transformer
	localizer   ImageLocalizer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExtractor creates a post extractor.
func NewExtractor(transformer *Transformer, localizer ImageLocalizer, logger *zap.Logger) *Extractor {
	return &Extractor{
		transformer: transformer,
		localizer:   localizer,
		logger:      logger,
		now:         time.Now,
	}
}

// Extract parses a post page and builds its document record.
func (e *Extractor) Extract(postURL string, markup []byte) (*PostDocument, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing post page: %w", err)
	}
	parsed, err := url.Parse(postURL)
	if err != nil {
		return nil, fmt.Errorf("parsing post url: %w", err)
	}

	slug := slugFromURL(postURL)

	body := ""
	if content := doc.Find(contentSelector).First(); content.Length() > 0 {
		body = e.transformer.Transform(content, parsed, slug)
	}

	return &PostDocument{
		Title:        strings.TrimSpace(doc.Find("h1").First().Text()),
		Description:  description(doc, body),
		PubDate:      e.publicationDate(doc, postURL),
		Slug:         slug,
		CanonicalURL: postURL,
		Image:        e.featuredImage(doc, parsed, slug),
		Categories:   []string{},
		Keywords:     []string{},
		Tags:         []string{},
		Body:         body,
	}, nil
}

// publicationDate tries each date candidate in order and returns the first
// value that parses. When nothing parses the current date stands in, by
// design rather than as an error.
func (e *Extractor) publicationDate(doc *goquery.Document, postURL string) time.Time {
	for _, candidate := range dateCandidates {
		sel := doc.Find(candidate.selector).First()
		if sel.Length() == 0 {
			continue
		}

		raw := sel.Text()
		if candidate.attr != "" {
			raw, _ = sel.Attr(candidate.attr)
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		for _, layout := range dateFormats {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed
			}
		}
		e.logger.Warn("unparseable publication date, defaulting to today",
			zap.String("url", postURL),
			zap.String("value", raw))
	}
	return e.now()
}

// description prefers page metadata and falls back to the body's first
// paragraph, truncated.
func description(doc *goquery.Document, body string) string {
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		return strings.TrimSpace(desc)
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok && strings.TrimSpace(desc) != "" {
		return strings.TrimSpace(desc)
	}
	if body == "" {
		return ""
	}

	first := strings.SplitN(body, "\n\n", 2)[0]
	if runes := []rune(first); len(runes) > maxDescriptionLength {
		return string(runes[:maxDescriptionLength]) + "..."
	}
	return first
}

func (e *Extractor) featuredImage(doc *goquery.Document, postURL *url.URL, slug string) string {
	src, ok := doc.Find(`meta[property="og:image"]`).Attr("content")
	if !ok || strings.TrimSpace(src) == "" {
		return ""
	}
	return e.localizer.Localize(resolveURL(postURL, src), slug, NamespaceFeatured)
}

// slugFromURL returns the final non-empty path segment of postURL.
func slugFromURL(postURL string) string {
	segment := postURL
	if parsed, err := url.Parse(postURL); err == nil && parsed.Path != "" {
		segment = parsed.Path
	}
	segment = strings.TrimRight(segment, "/")
	if idx := strings.LastIndex(segment, "/"); idx >= 0 {
		segment = segment[idx+1:]
	}
	return segment
}
