// Package pipeline drives the sitemap crawl and writes one record per
// scraped product page.
package pipeline

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/pharmscrape/internal/output"
	"github.com/jmylchreest/pharmscrape/internal/scraper"
	"github.com/jmylchreest/pharmscrape/internal/sitemap"
)

// DefaultSitemapURL is the pharmacy site's root sitemap index.
const DefaultSitemapURL = "https://www.1mg.com/sitemap.xml"

// DefaultOutputPath is where records are written when no path is given.
const DefaultOutputPath = "1mg_drugs.csv"

// Config holds pipeline configuration.
type Config struct {
	// Discovery
	SitemapURL string `validate:"required,url"`
	Marker     string // Substring selecting child sitemaps ("" = all)

	// Limits
	Limit int `validate:"gte=0"` // Pages scraped per sitemap (0 = all)

	// Politeness delay after each successful page
	Delay time.Duration `validate:"gte=0"`

	// Output
	OutputPath string        `validate:"required"`
	Format     output.Format `validate:"oneof=csv json jsonl yaml"`

	// Fetching
	FetchMode scraper.FetchMode `validate:"oneof=static dynamic auto"`
	Fetch     scraper.Config

	// SkipBrokenSitemaps logs and skips a child sitemap that cannot be
	// fetched or parsed instead of aborting the run.
	SkipBrokenSitemaps bool
}

// DefaultConfig returns the settings used for a standard run.
func DefaultConfig() Config {
	return Config{
		SitemapURL: DefaultSitemapURL,
		Marker:     sitemap.DefaultMarker,
		Limit:      1,
		Delay:      time.Second,
		OutputPath: DefaultOutputPath,
		Format:     output.FormatCSV,
		FetchMode:  scraper.FetchModeStatic,
		Fetch:      scraper.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks the configuration before any network access.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
