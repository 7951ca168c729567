package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

const (
	defaultOutputDir = "output"
	defaultPostDelay = 2 * time.Second
	defaultPageDelay = 3 * time.Second
	defaultRetries   = 3
)

func main() {
	var (
		baseURL   = flag.String("url", "", "Blog listing URL to scrape (required)")
		outputDir = flag.String("o", defaultOutputDir, "Output directory for documents and assets")
		postDelay = flag.Duration("post-delay", defaultPostDelay, "Pause before each post fetch")
		pageDelay = flag.Duration("page-delay", defaultPageDelay, "Pause before each page transition")
		retries   = flag.Int("retries", defaultRetries, "Maximum additional fetch attempts")
		verbose   = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *baseURL == "" {
		fmt.Println("Usage: scrape-blogs -url=<listing URL> [-o=<output_dir>] [-post-delay=2s] [-page-delay=3s] [-retries=3] [-v]")
		fmt.Println("Example: scrape-blogs -url=https://snyk.io/contributors/liran-tal/")
		os.Exit(1)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := Config{
		BaseURL:    *baseURL,
		OutputDir:  *outputDir,
		PostDelay:  *postDelay,
		PageDelay:  *pageDelay,
		MaxRetries: *retries,
	}

	logInfo("Scraping %s into %s/", cfg.BaseURL, cfg.OutputDir)

	summary, err := run(cfg, logger)
	if err != nil {
		logError("Scrape failed: %v", err)
		os.Exit(1)
	}

	logSuccess("Scrape completed! %d posts written, %d skipped, %d failed across %d pages",
		summary.PostsWritten, summary.PostsSkipped, summary.PostsFailed, summary.PagesVisited)
}

// run wires the pipeline and drives it to completion.
func run(cfg Config, logger *zap.Logger) (*CrawlSummary, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	fetcher := NewFetcher(cfg.MaxRetries, logger)
	localizer := NewAssetLocalizer(fetcher, cfg.OutputDir, logger)
	transformer := NewTransformer(localizer)
	extractor := NewExtractor(transformer, localizer, logger)
	writer := NewDocumentWriter(cfg.OutputDir)
	store := NewFileCheckpointStore(cfg.OutputDir)

	scraper := NewScraper(cfg, fetcher, extractor, writer, store, logger)
	return scraper.Run()
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if verbose {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zapCfg.Build()
}
