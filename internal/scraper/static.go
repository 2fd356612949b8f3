package scraper

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/pharmscrape/internal/logger"
)

// StaticFetcher uses Colly for plain HTTP GETs.
type StaticFetcher struct {
	config Config
}

// NewStatic creates a new static fetcher.
func NewStatic(cfg Config) *StaticFetcher {
	return &StaticFetcher{config: cfg.withDefaults()}
}

// Fetch retrieves the raw document using Colly. Any status outside 2xx
// becomes a *FetchError.
func (f *StaticFetcher) Fetch(ctx context.Context, targetURL string) (Response, error) {
	// Sitemap <loc> values are kept verbatim and may carry surrounding whitespace.
	targetURL = strings.TrimSpace(targetURL)
	logger.Debug("static fetch starting", "url", targetURL)

	result := Response{
		URL:       targetURL,
		FetchedAt: time.Now(),
	}

	// A fresh collector per request: colly refuses to revisit URLs.
	c := colly.NewCollector(
		colly.UserAgent(f.config.UserAgent),
		colly.MaxBodySize(f.config.MaxBodySize),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(f.config.Timeout)
	// Colly rejects 203 and up on its own; status checks happen in OnResponse.
	c.ParseHTTPErrorResponse = true

	if len(f.config.Headers) > 0 {
		c.OnRequest(func(r *colly.Request) {
			for k, v := range f.config.Headers {
				r.Headers.Set(k, v)
			}
		})
	}

	var fetchErr error

	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.ContentType = r.Headers.Get("Content-Type")
		result.Body = r.Body
		logger.Debug("static fetch response received",
			"status", r.StatusCode,
			"content_type", result.ContentType,
			"size", humanize.Bytes(uint64(len(r.Body))))

		if r.StatusCode < http.StatusOK || r.StatusCode >= http.StatusMultipleChoices {
			text := http.StatusText(r.StatusCode)
			if text == "" {
				text = "unexpected status"
			}
			fetchErr = errors.New(text)
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			result.StatusCode = r.StatusCode
		}
		fetchErr = err
		logger.Debug("static fetch error", "status", result.StatusCode, "error", err)
	})

	if err := c.Visit(targetURL); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if fetchErr != nil {
		return result, &FetchError{URL: targetURL, StatusCode: result.StatusCode, Err: fetchErr}
	}

	logger.Debug("static fetch complete", "url", targetURL, "duration", time.Since(result.FetchedAt))
	return result, nil
}

// Close releases resources.
func (f *StaticFetcher) Close() error {
	return nil
}

// Type returns the fetcher type.
func (f *StaticFetcher) Type() string {
	return "static"
}
