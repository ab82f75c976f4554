package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/extract"
	"github.com/use-agent/pagegrab/models"
)

// PageErrorFunc receives uncaught exceptions thrown by the crawled page.
type PageErrorFunc func(sessionID, message string)

// Crawler runs crawl sessions. It is safe for concurrent use: each Execute
// call owns its browser, and the only shared state is a pair of counters.
type Crawler struct {
	launcher    Launcher
	cfg         config.CrawlConfig
	onPageError PageErrorFunc

	active atomic.Int32
	total  atomic.Int64
}

// New creates a crawler that launches browsers through l.
func New(l Launcher, cfg config.CrawlConfig) *Crawler {
	return &Crawler{
		launcher: l,
		cfg:      cfg,
		onPageError: func(sessionID, message string) {
			slog.Warn("page error", "session", sessionID, "message", message)
		},
	}
}

// SetPageErrorHandler replaces the default page error logger.
func (c *Crawler) SetPageErrorHandler(fn PageErrorFunc) {
	if fn != nil {
		c.onPageError = fn
	}
}

// Stats returns a snapshot of crawler activity.
func (c *Crawler) Stats() models.SessionStats {
	return models.SessionStats{
		ActiveSessions: int(c.active.Load()),
		TotalSessions:  c.total.Load(),
	}
}

// CrawlImages is the image-only entry point kept for callers that predate
// resource kinds.
func (c *Crawler) CrawlImages(ctx context.Context, pageURL, keyword string, networkIdle, scroll bool) ([]models.ImageRef, error) {
	wait := models.WaitDOMReady
	if networkIdle {
		wait = models.WaitNetworkIdle
	}
	items, err := c.Execute(ctx, models.CrawlRequest{
		URL:     pageURL,
		Kind:    models.KindImage,
		Keyword: keyword,
		Wait:    wait,
		Scroll:  scroll,
	})
	if err != nil {
		return nil, err
	}

	images := make([]models.ImageRef, 0, len(items))
	for _, item := range items {
		if img, ok := item.(models.ImageRef); ok {
			images = append(images, img)
		}
	}
	return images, nil
}

// Execute runs one crawl session end to end.
//
// Lifecycle (numbered steps match the inline comments):
//
//  0. Validate              – URL and resource kind, before any browser exists
//  1. Acquire               – launch a dedicated browser and open one page
//  2. DEFER: release        – close page and browser on every exit path
//  3. Configure             – user agent, viewport, timeouts, stealth, headers
//  4. Admission             – abort requests the kind does not need (before navigation!)
//  5. Navigate              – load the URL and wait for the selected lifecycle point
//  6. Scroll                – optional, triggers lazy-loaded content
//  7. Extract               – selector wait, DOM snapshot, strategy
//  8. Filter                – keyword match on the extracted items
//
// The result may be empty; that is not an error.
func (c *Crawler) Execute(ctx context.Context, req models.CrawlRequest) ([]models.ResourceItem, error) {
	// ── 0. Validate ───────────────────────────────────────────────────
	if err := models.ValidateURL(req.URL); err != nil {
		return nil, err
	}
	strategy, ok := extract.For(req.Kind)
	if !ok {
		return nil, models.NewCrawlError(
			models.ErrCodeUnsupportedKind,
			fmt.Sprintf("unsupported resource type %q", req.Kind),
			nil,
		)
	}
	if req.Wait == "" {
		req.Wait = models.WaitDOMReady
	}

	sessionID := uuid.NewString()
	log := slog.With("session", sessionID, "url", req.URL, "kind", req.Kind)
	start := time.Now()

	c.active.Add(1)
	defer c.active.Add(-1)
	c.total.Add(1)

	// ── 1. Acquire browser and page ───────────────────────────────────
	browser, err := c.launcher.Launch(ctx)
	if err != nil {
		log.Error("browser launch failed", "error", err)
		return nil, models.NewCrawlError(models.ErrCodeBrowserLaunch, "failed to launch browser", err)
	}

	// ── 2. DEFER: release ─────────────────────────────────────────────
	// Close failures are logged only; they never replace the session's
	// own result or error.
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.Warn("failed to close browser", "error", closeErr)
		}
		log.Debug("browser released", "duration", time.Since(start))
	}()

	page, err := browser.NewPage()
	if err != nil {
		log.Error("page creation failed", "error", err)
		return nil, models.NewCrawlError(models.ErrCodeBrowserLaunch, "failed to open page", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.Debug("failed to close page", "error", closeErr)
		}
	}()
	log.Debug("browser acquired")

	// ── 3. Configure ──────────────────────────────────────────────────
	if err := c.configure(page, req, sessionID, log); err != nil {
		return nil, err
	}

	// ── 4. Admission policy ───────────────────────────────────────────
	stop, err := page.InterceptRequests(admissionFor(req.Kind, req.BlockAds))
	if err != nil {
		log.Error("request interception failed", "error", err)
		return nil, models.NewCrawlError(models.ErrCodeBrowserLaunch, "failed to install request interception", err)
	}
	defer func() { _ = stop() }()

	// ── 5. Navigate ───────────────────────────────────────────────────
	log.Info("navigating", "wait", req.Wait)
	if err := navigate(ctx, page, req.URL, req.Wait, c.cfg.NavigationTimeout); err != nil {
		log.Error("navigation failed", "error", err)
		return nil, err
	}

	// ── 6. Scroll ─────────────────────────────────────────────────────
	if req.Scroll {
		steps := autoScroll(ctx, page, ScrollOptions{
			Distance: c.cfg.ScrollDistance,
			Interval: c.cfg.ScrollInterval,
			MaxSteps: c.cfg.ScrollMaxSteps,
		})
		log.Debug("auto-scroll finished", "steps", steps)
	}

	// ── 7. Extract ────────────────────────────────────────────────────
	items, err := c.extract(ctx, page, strategy, req.Keyword, log)
	if err != nil {
		log.Error("extraction failed", "error", err)
		return nil, err
	}

	// ── 8. Filter ─────────────────────────────────────────────────────
	items = extract.FilterByKeyword(items, req.Keyword)

	if len(items) == 0 {
		log.Info("no matching resources found", "keyword", req.Keyword, "duration", time.Since(start))
	} else {
		log.Info("crawl complete", "items", len(items), "duration", time.Since(start))
	}
	return items, nil
}

// configure applies per-session page settings. Only the user agent is
// mandatory; the rest degrade to a warning.
func (c *Crawler) configure(page Page, req models.CrawlRequest, sessionID string, log *slog.Logger) error {
	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.cfg.UserAgent
	}
	if userAgent == "" {
		userAgent = models.DefaultUserAgent
	}
	if err := page.SetUserAgent(userAgent); err != nil {
		log.Error("set user agent failed", "error", err)
		return models.NewCrawlError(models.ErrCodeBrowserLaunch, "failed to configure page", err)
	}

	if err := page.SetViewport(c.cfg.ViewportWidth, c.cfg.ViewportHeight); err != nil {
		log.Warn("set viewport failed, proceeding with browser default", "error", err)
	}
	page.SetDefaultTimeout(c.cfg.OperationTimeout)

	// Stealth only affects documents loaded after injection.
	if req.Stealth {
		if err := page.InjectStealth(); err != nil {
			log.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}
	if err := page.SetExtraHeaders(req.Headers); err != nil {
		log.Warn("set extra headers failed", "error", err)
	}

	page.OnPageError(func(message string) {
		c.onPageError(sessionID, message)
	})
	return nil
}

// extract waits for the strategy's selector, snapshots the rendered DOM and
// runs the strategy on it. A selector that never shows up is not an error:
// the page may simply have no resources of this kind.
func (c *Crawler) extract(ctx context.Context, page Page, strategy extract.Strategy, keyword string, log *slog.Logger) ([]models.ResourceItem, error) {
	if sel := strategy.WaitSelector(); sel != "" {
		waitCtx, cancel := context.WithTimeout(ctx, c.cfg.SelectorTimeout)
		err := page.WaitSelector(waitCtx, sel)
		cancel()
		if err != nil {
			log.Debug("selector wait ended without match, extracting current DOM", "selector", sel, "error", err)
		}
	}

	rawHTML, err := page.HTML(ctx)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeExtraction, "failed to read rendered page", err)
	}

	doc, err := extract.ParseDocument(rawHTML)
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeExtraction, "failed to parse rendered page", err)
	}

	return strategy.Extract(doc, keyword), nil
}
