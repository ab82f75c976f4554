package models

import (
	"net/url"
	"strings"
)

// DefaultUserAgent is the browser identification string sent when a request
// does not carry its own.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

// WaitStrategy selects the page lifecycle point navigation waits for.
type WaitStrategy string

const (
	// WaitDOMReady waits for the initial document parse only.
	WaitDOMReady WaitStrategy = "domready"

	// WaitNetworkIdle waits until the page has had no in-flight network
	// activity for the browser's quiescence window.
	WaitNetworkIdle WaitStrategy = "networkidle"
)

// CrawlRequest describes one single-page extraction. It is built once per
// invocation and passed by value.
type CrawlRequest struct {
	URL     string
	Kind    ResourceKind
	Keyword string
	Wait    WaitStrategy
	Scroll  bool

	// UserAgent overrides the crawler's configured identification string.
	UserAgent string

	// Stealth injects anti-automation-detection evasions before navigation.
	Stealth bool

	// BlockAds additionally aborts requests to known ad and tracking hosts.
	BlockAds bool

	// Headers are extra HTTP headers sent with every page request.
	Headers map[string]string
}

// ValidateURL checks that raw is an absolute http(s) URL. The returned
// error is an INVALID_INPUT CrawlError.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return NewCrawlError(ErrCodeInvalidInput, "URL is required", nil)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewCrawlError(ErrCodeInvalidInput, "Invalid URL format", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewCrawlError(ErrCodeInvalidInput, "Invalid URL format", nil)
	}
	return nil
}
