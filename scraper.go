package main

import (
	"bytes"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Config carries the constructor-level settings for a crawl.
type Config struct {
	BaseURL    string
	OutputDir  string
	PageDelay  time.Duration
	PostDelay  time.Duration
	MaxRetries int
}

// CrawlSummary reports what a finished run accomplished.
type CrawlSummary struct {
	PagesVisited int
	PostsWritten int
	PostsSkipped int
	PostsFailed  int
}

// Scraper drives the paginated crawl: discover posts on the current listing
// page, process the ones the checkpoint hasn't seen, persist the checkpoint
// after every written post, then follow pagination. A single thread does
// everything; the configured delays keep the crawl polite.
type Scraper struct {
	cfg       Config
	fetcher   PageFetcher
	extractor *Extractor
	writer    *DocumentWriter
	store     CheckpointStore
	logger    *zap.Logger
}

// NewScraper wires the crawl state machine.
func NewScraper(cfg Config, fetcher PageFetcher, extractor *Extractor, writer *DocumentWriter, store CheckpointStore, logger *zap.Logger) *Scraper {
	return &Scraper{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		writer:    writer,
		store:     store,
		logger:    logger,
	}
}

// Run crawls from the last checkpoint, or from the configured base URL on a
// first run. A listing page that cannot be fetched or parsed ends the loop
// gracefully; failing posts are logged and skipped. The error return is
// reserved for checkpoint persistence failures, which must not be dropped.
func (s *Scraper) Run() (*CrawlSummary, error) {
	checkpoint, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading checkpoint: %w", err)
	}

	base, err := url.Parse(s.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	summary := &CrawlSummary{}
	current := checkpoint.CurrentPage
	if current == "" {
		current = s.cfg.BaseURL
	}

	for current != "" {
		s.logger.Info("scraping listing page", zap.String("url", current))
		doc, err := s.fetchDocument(current)
		if err != nil {
			s.logger.Warn("listing page unavailable, ending crawl",
				zap.String("url", current),
				zap.Error(err))
			break
		}
		summary.PagesVisited++

		links := DiscoverPostLinks(doc, base)
		s.logger.Info("discovered post links",
			zap.String("page", current),
			zap.Int("count", len(links)))

		for _, link := range links {
			if checkpoint.Processed(link) {
				summary.PostsSkipped++
				s.logger.Debug("skipping already processed post", zap.String("url", link))
				continue
			}

			time.Sleep(s.cfg.PostDelay)

			if err := s.processPost(link); err != nil {
				summary.PostsFailed++
				s.logger.Error("post processing failed", zap.String("url", link), zap.Error(err))
				continue
			}

			// The document is durably written before the checkpoint names it.
			checkpoint.MarkProcessed(link)
			if err := s.store.Save(checkpoint); err != nil {
				return summary, fmt.Errorf("saving checkpoint: %w", err)
			}
			summary.PostsWritten++
		}

		next := DiscoverNextPage(doc, base)
		if next == "" {
			s.logger.Info("no next page, crawl complete")
			break
		}

		time.Sleep(s.cfg.PageDelay)

		checkpoint.AdvancePage(next)
		if err := s.store.Save(checkpoint); err != nil {
			return summary, fmt.Errorf("saving checkpoint: %w", err)
		}
		current = next
	}

	return summary, nil
}

func (s *Scraper) fetchDocument(pageURL string) (*goquery.Document, error) {
	markup, err := s.fetcher.Fetch(pageURL)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(markup))
}

// processPost fetches, extracts, and writes a single post. Panics inside
// extraction are converted to errors at this boundary so one malformed post
// cannot abort the page.
func (s *Scraper) processPost(postURL string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing %s: %v", postURL, r)
		}
	}()

	markup, err := s.fetcher.Fetch(postURL)
	if err != nil {
		return fmt.Errorf("fetching post: %w", err)
	}

	doc, err := s.extractor.Extract(postURL, markup)
	if err != nil {
		return fmt.Errorf("extracting post: %w", err)
	}

	path, err := s.writer.Write(doc)
	if err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	s.logger.Info("saved post",
		zap.String("url", postURL),
		zap.String("slug", doc.Slug),
		zap.String("path", path))
	return nil
}
