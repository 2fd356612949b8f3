package scraper

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// FetchMode selects how product pages are fetched.
type FetchMode string

const (
	FetchModeStatic  FetchMode = "static"
	FetchModeDynamic FetchMode = "dynamic"
	FetchModeAuto    FetchMode = "auto"
)

// NewFetcher creates the fetcher for mode.
func NewFetcher(mode FetchMode, cfg Config) (Fetcher, error) {
	switch mode {
	case FetchModeStatic, "":
		return NewStatic(cfg), nil
	case FetchModeDynamic:
		return NewDynamic(cfg), nil
	case FetchModeAuto:
		return NewAuto(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s (use static, dynamic or auto)", mode)
	}
}

// AutoFetcher fetches statically and re-renders in a browser only when the
// response is an empty client-side application shell. The browser is started
// on first use.
type AutoFetcher struct {
	static *StaticFetcher
	config Config

	once    sync.Once
	dynamic Fetcher
	newDyn  func(Config) Fetcher
}

// NewAuto creates an auto-detecting fetcher.
func NewAuto(cfg Config) *AutoFetcher {
	return &AutoFetcher{
		static: NewStatic(cfg),
		config: cfg,
		newDyn: func(c Config) Fetcher { return NewDynamic(c) },
	}
}

// Fetch tries a static fetch first. HTTP and network failures are returned
// as-is; only a successful but unrendered page is retried dynamically.
func (f *AutoFetcher) Fetch(ctx context.Context, url string) (Response, error) {
	resp, err := f.static.Fetch(ctx, url)
	if err != nil || !NeedsJavaScript(resp.Body) {
		return resp, err
	}

	f.once.Do(func() { f.dynamic = f.newDyn(f.config) })
	return f.dynamic.Fetch(ctx, url)
}

// Close releases the browser if one was started.
func (f *AutoFetcher) Close() error {
	if f.dynamic != nil {
		return f.dynamic.Close()
	}
	return nil
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return "auto"
}

var spaShellMarkers = [][]byte{
	[]byte(`<div id="root"></div>`),
	[]byte(`<div id="app"></div>`),
	[]byte(`<div id="__next"></div>`),
	[]byte(`<app-root></app-root>`),
}

// NeedsJavaScript reports whether html looks like a client-side application
// shell with no server-rendered heading.
func NeedsJavaScript(html []byte) bool {
	lower := bytes.ToLower(html)
	if bytes.Contains(lower, []byte("<h1")) {
		return false
	}
	for _, marker := range spaShellMarkers {
		if bytes.Contains(lower, marker) {
			return true
		}
	}
	return false
}
