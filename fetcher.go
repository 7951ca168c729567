package main

import (
	"fmt"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// PageFetcher retrieves page markup for a URL.
type PageFetcher interface {
	Fetch(pageURL string) ([]byte, error)
}

// ResourceFetcher retrieves a raw resource along with its declared content type.
type ResourceFetcher interface {
	FetchResource(resourceURL string) ([]byte, string, error)
}

// Fetcher is a colly-backed HTTP client. The base collector holds the shared
// configuration; every request runs on a fresh clone so callbacks never leak
// between fetches.
type Fetcher struct {
	base       *colly.Collector
	maxRetries int
	logger     *zap.Logger
}

// NewFetcher creates a fetcher that retries each request up to maxRetries
// additional times before giving up.
func NewFetcher(maxRetries int, logger *zap.Logger) *Fetcher {
	collector := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)

	return &Fetcher{
		base:       collector,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Fetch returns the body of the page at pageURL.
func (f *Fetcher) Fetch(pageURL string) ([]byte, error) {
	body, _, err := f.get(pageURL)
	return body, err
}

// FetchResource returns the body and declared content type of the resource at
// resourceURL.
func (f *Fetcher) FetchResource(resourceURL string) ([]byte, string, error) {
	return f.get(resourceURL)
}

func (f *Fetcher) get(target string) ([]byte, string, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxRetries+1; attempt++ {
		body, contentType, err := f.getOnce(target)
		if err == nil {
			return body, contentType, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	return nil, "", fmt.Errorf("fetching %s: %w", target, lastErr)
}

func (f *Fetcher) getOnce(target string) ([]byte, string, error) {
	var (
		body        []byte
		contentType string
		fetchErr    error
	)

	collector := f.base.Clone()
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
		contentType = r.Headers.Get("Content-Type")
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(target); err != nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return nil, "", fetchErr
	}
	if body == nil {
		return nil, "", fmt.Errorf("no response received")
	}
	return body, contentType, nil
}
