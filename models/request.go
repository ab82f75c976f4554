package models

// CrawlPayload is the JSON body for POST /crawl and POST /crawlHtml.
//
// URL validation is done by the handler rather than by binding tags so the
// error messages stay stable ("URL is required", "Invalid URL format").
type CrawlPayload struct {
	// URL is the target page. Required.
	URL string `json:"url"`

	// Keyword restricts results to items whose source URL (media) or text
	// (text blocks) contains it, case-insensitively.
	Keyword string `json:"keyword,omitempty"`

	// Async waits for network idle instead of DOMContentLoaded.
	// Default: false.
	Async bool `json:"async,omitempty"`

	// Scroll auto-scrolls the page to trigger lazy-loaded content.
	// Default: false.
	Scroll bool `json:"scroll,omitempty"`

	// ResourceType is one of "image" (default), "video", "audio", "text".
	// Ignored by /crawlHtml, which always extracts text.
	ResourceType string `json:"resourceType,omitempty"`

	// UserAgent overrides the configured browser identification string.
	UserAgent string `json:"userAgent,omitempty"`

	// Stealth enables anti-bot-detection evasions (navigator.webdriver masking etc.).
	Stealth bool `json:"stealth,omitempty"`

	// BlockAds aborts requests to well-known ad and tracking domains.
	BlockAds bool `json:"blockAds,omitempty"`

	// Headers are extra HTTP headers sent with every page request.
	Headers map[string]string `json:"headers,omitempty" binding:"omitempty,max=32"`
}

// ToCrawlRequest converts the payload into the crawler's request value.
func (p *CrawlPayload) ToCrawlRequest() CrawlRequest {
	wait := WaitDOMReady
	if p.Async {
		wait = WaitNetworkIdle
	}
	return CrawlRequest{
		URL:       p.URL,
		Kind:      ParseResourceKind(p.ResourceType),
		Keyword:   p.Keyword,
		Wait:      wait,
		Scroll:    p.Scroll,
		UserAgent: p.UserAgent,
		Stealth:   p.Stealth,
		BlockAds:  p.BlockAds,
		Headers:   p.Headers,
	}
}
