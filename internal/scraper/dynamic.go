package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/pharmscrape/internal/logger"
)

// DynamicFetcher renders pages in headless Chrome before returning the HTML.
// Product pages that build their details client-side need this.
type DynamicFetcher struct {
	config    Config
	allocCtx  context.Context
	cancelCtx context.CancelFunc
}

// NewDynamic creates a dynamic fetcher backed by a shared browser allocator.
func NewDynamic(cfg Config) *DynamicFetcher {
	cfg = cfg.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	logger.Debug("dynamic fetcher browser allocator created", "user_agent", cfg.UserAgent)

	return &DynamicFetcher{
		config:    cfg,
		allocCtx:  allocCtx,
		cancelCtx: cancel,
	}
}

// Fetch navigates to the page and returns the rendered document.
// chromedp does not surface the HTTP status, so a loaded page reports 200.
func (f *DynamicFetcher) Fetch(ctx context.Context, targetURL string) (Response, error) {
	// Sitemap <loc> values are kept verbatim and may carry surrounding whitespace.
	targetURL = strings.TrimSpace(targetURL)
	logger.Debug("dynamic fetch starting", "url", targetURL)

	result := Response{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	browserCtx, cancelBrowser := chromedp.NewContext(f.allocCtx)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, f.config.Timeout)
	defer cancelTimeout()

	// Propagate cancellation from the caller into the browser tab.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var html string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		logger.Debug("dynamic fetch failed", "url", targetURL, "error", err)
		return result, &FetchError{URL: targetURL, Err: err}
	}

	result.StatusCode = 200
	result.ContentType = "text/html"
	result.Body = []byte(html)

	logger.Debug("dynamic fetch complete", "url", targetURL, "duration", time.Since(result.FetchedAt))
	return result, nil
}

// Close shuts down the browser.
func (f *DynamicFetcher) Close() error {
	if f.cancelCtx != nil {
		f.cancelCtx()
	}
	return nil
}

// Type returns the fetcher type.
func (f *DynamicFetcher) Type() string {
	return "dynamic"
}
