// Package scraper retrieves remote documents for the sitemap and page readers.
package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// DefaultTimeout bounds a single request.
const DefaultTimeout = 20 * time.Second

// DefaultMaxBodySize matches the sitemap protocol's 50MB ceiling for an
// uncompressed sitemap file.
const DefaultMaxBodySize = 50 * humanize.MByte

// Response is a fetched document.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// Fetcher abstracts page fetching strategies.
type Fetcher interface {
	// Fetch retrieves the document at url. Failures are reported as *FetchError.
	Fetch(ctx context.Context, url string) (Response, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns "static" or "dynamic".
	Type() string
}

// Config holds settings shared by all fetchers.
type Config struct {
	UserAgent   string            `validate:"required"`
	Timeout     time.Duration     `validate:"gte=0"`
	Headers     map[string]string // Extra request headers (static fetcher only)
	MaxBodySize int               `validate:"gte=0"` // 0 = unlimited
}

// DefaultConfig returns the fetch settings used against the pharmacy site.
func DefaultConfig() Config {
	return Config{
		UserAgent:   DefaultUserAgent,
		Timeout:     DefaultTimeout,
		MaxBodySize: DefaultMaxBodySize,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// FetchError reports a network, timeout, or HTTP status failure.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
