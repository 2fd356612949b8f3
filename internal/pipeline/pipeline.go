package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/pharmscrape/internal/drugpage"
	"github.com/jmylchreest/pharmscrape/internal/logger"
	"github.com/jmylchreest/pharmscrape/internal/output"
	"github.com/jmylchreest/pharmscrape/internal/scraper"
	"github.com/jmylchreest/pharmscrape/internal/sitemap"
)

// Pipeline reads the sitemap hierarchy and scrapes product pages in order,
// one request at a time.
type Pipeline struct {
	config         Config
	sitemapFetcher scraper.Fetcher
	pageFetcher    scraper.Fetcher
	sleep          func(context.Context, time.Duration) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSitemapFetcher overrides the fetcher used for sitemap documents.
func WithSitemapFetcher(f scraper.Fetcher) Option {
	return func(p *Pipeline) {
		p.sitemapFetcher = f
	}
}

// WithPageFetcher overrides the fetcher used for product pages.
func WithPageFetcher(f scraper.Fetcher) Option {
	return func(p *Pipeline) {
		p.pageFetcher = f
	}
}

// New validates cfg and builds a Pipeline. Sitemaps are always fetched
// statically; pages use cfg.FetchMode.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config: cfg,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.sitemapFetcher == nil {
		p.sitemapFetcher = scraper.NewStatic(cfg.Fetch)
	}
	if p.pageFetcher == nil {
		f, err := scraper.NewFetcher(cfg.FetchMode, cfg.Fetch)
		if err != nil {
			return nil, err
		}
		p.pageFetcher = f
	}

	return p, nil
}

// Run executes a pipeline built from cfg and releases its fetchers.
func Run(ctx context.Context, cfg Config) (Summary, error) {
	p, err := New(cfg)
	if err != nil {
		return Summary{}, err
	}
	defer func() { _ = p.Close() }()
	return p.Run(ctx)
}

// Run crawls every drug sitemap and writes one record per scraped page.
//
// A failure to read the root index aborts before the output file is touched.
// A failing child sitemap aborts the run unless SkipBrokenSitemaps is set.
// Page failures are logged and skipped. The output file is truncated at the
// start and always holds the header.
func (p *Pipeline) Run(ctx context.Context) (sum Summary, err error) {
	start := time.Now()
	sum.OutputPath = p.config.OutputPath
	defer func() { sum.Duration = time.Since(start) }()

	index := sitemap.NewReader(p.sitemapFetcher, p.config.Marker)
	pages := drugpage.NewScraper(p.pageFetcher)

	sitemaps, err := index.DrugSitemaps(ctx, p.config.SitemapURL)
	if err != nil {
		return sum, fmt.Errorf("read sitemap index: %w", err)
	}
	sum.Sitemaps = len(sitemaps)
	logger.Info("found drug sitemaps", "count", len(sitemaps), "index", p.config.SitemapURL)

	w, err := output.Create(p.config.OutputPath, p.config.Format,
		output.WithHeader(drugpage.Record{}.Header()))
	if err != nil {
		return sum, err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close output: %w", cerr))
		}
	}()

	for i, sm := range sitemaps {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		logger.Info("processing sitemap", "url", sm, "n", i+1, "of", len(sitemaps))
		urls, err := index.PageURLs(ctx, sm)
		if err != nil {
			if p.config.SkipBrokenSitemaps && ctx.Err() == nil {
				logger.Warn("skipping sitemap", "url", sm, "error", err)
				sum.SitemapsSkipped++
				continue
			}
			return sum, fmt.Errorf("read sitemap %s: %w", sm, err)
		}
		sum.SitemapsProcessed++
		sum.PagesDiscovered += len(urls)

		if err := p.scrapePages(ctx, pages, limitURLs(urls, p.config.Limit), w, &sum); err != nil {
			return sum, err
		}
	}

	logger.Info("data saved", "path", p.config.OutputPath, "rows", sum.RowsWritten, "failed", sum.PagesFailed)
	return sum, nil
}

func (p *Pipeline) scrapePages(ctx context.Context, pages *drugpage.Scraper, urls []string, w output.Writer, sum *Summary) error {
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info("scraping", "url", u)
		sum.PagesAttempted++

		rec, err := pages.Scrape(ctx, u)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			sum.PagesFailed++
			logger.Warn("failed", "url", u, "error", err)
			continue
		}

		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record for %s: %w", u, err)
		}
		sum.RowsWritten++

		if err := p.sleep(ctx, p.config.Delay); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the fetchers.
func (p *Pipeline) Close() error {
	return errors.Join(p.sitemapFetcher.Close(), p.pageFetcher.Close())
}

// limitURLs returns at most n URLs; n <= 0 keeps all of them.
func limitURLs(urls []string, n int) []string {
	if n <= 0 || n >= len(urls) {
		return urls
	}
	return urls[:n]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
