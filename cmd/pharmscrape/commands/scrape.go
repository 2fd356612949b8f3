package commands

import (
	"context"
	"fmt"
	"os"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/pharmscrape/internal/logger"
	"github.com/jmylchreest/pharmscrape/internal/output"
	"github.com/jmylchreest/pharmscrape/internal/pipeline"
	"github.com/jmylchreest/pharmscrape/internal/scraper"
	"github.com/jmylchreest/pharmscrape/internal/sitemap"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Crawl the drug sitemaps and write one row per product page",
	Long: `Read the sitemap index, keep the child sitemaps whose location contains
the marker, and scrape the first --limit pages of each.

A page that fails to load is logged and skipped. A child sitemap that fails
aborts the run unless --skip-broken-sitemaps is set. The output file is
overwritten on every run and always starts with the header row.

Every flag can also be set in .pharmscrape.yaml (e.g. sitemap_url, limit,
or a header: mapping) or through PHARMSCRAPE_* environment variables
(PHARMSCRAPE_HEADER takes a JSON object).`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	// Discovery
	flags.String("sitemap-url", pipeline.DefaultSitemapURL, "root sitemap index URL")
	flags.String("marker", sitemap.DefaultMarker, "substring selecting child sitemaps (empty = all)")
	flags.Int("limit", 1, "pages scraped per sitemap (0 scrapes every page, not none)")
	flags.Bool("skip-broken-sitemaps", false, "skip child sitemaps that cannot be read instead of aborting")

	// Output
	flags.StringP("output", "o", pipeline.DefaultOutputPath, "output file (overwritten)")
	flags.String("format", "", "output format: csv, json, jsonl, yaml (default: from output extension)")
	flags.Bool("summary", true, "print a run summary table to stderr")

	// Fetching
	flags.String("fetch-mode", string(scraper.FetchModeStatic), "page fetch mode: static, dynamic, auto")
	flags.Duration("delay", time.Second, "pause after each scraped page")
	flags.Duration("timeout", scraper.DefaultTimeout, "per-request timeout")
	flags.String("user-agent", scraper.DefaultUserAgent, "User-Agent header")
	flags.StringToString("header", nil, "extra request header as key=value (can be repeated)")
	flags.String("max-body-size", "50MB", "max response body size (e.g. 10MB, 0=unlimited)")

	bindScrapeFlags(viper.GetViper(), flags)
}

// bindScrapeFlags binds every scrape flag to v under its snake_case key.
func bindScrapeFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func runScrape(cmd *cobra.Command, args []string) error {
	// Initialize logger based on flags
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Debug("scrape command starting")

	cfg, err := configFrom(viper.GetViper())
	if err != nil {
		logger.Error("invalid flags", "error", err)
		return err
	}
	logger.Debug("configuration",
		"sitemap_url", cfg.SitemapURL,
		"marker", cfg.Marker,
		"limit", cfg.Limit,
		"delay", cfg.Delay,
		"output", cfg.OutputPath,
		"format", cfg.Format,
		"fetch_mode", cfg.FetchMode,
		"max_body_size", humanize.Bytes(uint64(cfg.Fetch.MaxBodySize)))

	sum, err := pipeline.Run(ctx, cfg)

	if viper.GetBool("summary") && !viper.GetBool("quiet") {
		sum.Render(os.Stderr)
	}
	if err != nil {
		logger.Error("scrape aborted", "error", err)
		return err
	}
	return nil
}

// configFrom builds the pipeline configuration from flags, the config file
// and the environment, in viper's usual precedence.
func configFrom(v *viper.Viper) (pipeline.Config, error) {
	cfg := pipeline.DefaultConfig()

	cfg.SitemapURL = v.GetString("sitemap_url")
	cfg.Marker = v.GetString("marker")
	cfg.Limit = v.GetInt("limit")
	cfg.SkipBrokenSitemaps = v.GetBool("skip_broken_sitemaps")
	cfg.Delay = v.GetDuration("delay")

	cfg.OutputPath = v.GetString("output")
	if format := v.GetString("format"); format != "" {
		cfg.Format = output.Format(strings.ToLower(format))
	} else {
		cfg.Format = output.FormatFromPath(cfg.OutputPath)
	}

	cfg.FetchMode = scraper.FetchMode(strings.ToLower(v.GetString("fetch_mode")))
	cfg.Fetch.Timeout = v.GetDuration("timeout")
	cfg.Fetch.UserAgent = v.GetString("user_agent")
	cfg.Fetch.Headers = headersFrom(v.GetStringMapString("header"))

	size, err := parseByteSize(v.GetString("max_body_size"))
	if err != nil {
		return cfg, fmt.Errorf("invalid max-body-size: %w", err)
	}
	cfg.Fetch.MaxBodySize = size

	return cfg, nil
}

// headersFrom canonicalizes header names; viper lowercases keys read from
// config files.
func headersFrom(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	headers := make(map[string]string, len(m))
	for k, val := range m {
		headers[http.CanonicalHeaderKey(k)] = val
	}
	return headers
}

// parseByteSize parses a human size such as "50MB". Empty or "0" means
// unlimited.
func parseByteSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
