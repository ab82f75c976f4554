// Package crawler runs single-page resource extraction sessions against a
// headless Chromium.
//
// Every Execute call owns one browser process and one page from launch to
// teardown. Nothing is pooled or shared between calls, so concurrent calls
// are isolated by construction.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagegrab/config"
	"github.com/use-agent/pagegrab/models"
)

// Launcher starts a fresh browser process.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser process.
type Browser interface {
	// NewPage opens a blank tab.
	NewPage() (Page, error)

	// Close terminates the process. It must be safe to call on a browser
	// whose pages failed.
	Close() error
}

// AdmissionFunc decides whether an outgoing request may proceed.
type AdmissionFunc func(category proto.NetworkResourceType, requestURL string) bool

// Page is the subset of page operations a crawl session needs.
type Page interface {
	SetUserAgent(userAgent string) error
	SetViewport(width, height int) error
	SetExtraHeaders(headers map[string]string) error
	InjectStealth() error

	// SetDefaultTimeout bounds every later operation that does not carry
	// a tighter deadline in its context.
	SetDefaultTimeout(d time.Duration)

	// InterceptRequests routes every request through admit. The returned
	// stop function detaches the interceptor.
	InterceptRequests(admit AdmissionFunc) (stop func() error, err error)

	// OnPageError registers a callback for uncaught page exceptions.
	OnPageError(fn func(message string))

	// Navigate loads url and blocks until the lifecycle point selected by
	// wait, or until ctx is done.
	Navigate(ctx context.Context, url string, wait models.WaitStrategy) error

	// ResponseStatus is the HTTP status of the main document, 0 if unknown.
	ResponseStatus(ctx context.Context) (int, error)

	ScrollBy(ctx context.Context, dy int) error
	ScrollHeight(ctx context.Context) (int, error)

	// WaitSelector blocks until at least one element matches selector.
	WaitSelector(ctx context.Context, selector string) error

	// HTML returns the rendered document.
	HTML(ctx context.Context) (string, error)

	Close() error
}

// RodLauncher launches a dedicated Chromium per crawl through rod.
type RodLauncher struct {
	cfg      config.BrowserConfig
	viewport string
}

// NewRodLauncher creates a launcher. The window size matches the crawl
// viewport so layout-dependent pages render the same way on every host.
func NewRodLauncher(browserCfg config.BrowserConfig, crawlCfg config.CrawlConfig) *RodLauncher {
	return &RodLauncher{
		cfg:      browserCfg,
		viewport: fmt.Sprintf("%d,%d", crawlCfg.ViewportWidth, crawlCfg.ViewportHeight),
	}
}

// Launch starts Chromium and connects to it. The process is not tied to
// ctx: teardown has to work even after the request context is gone.
func (r *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := launcher.New().
		Headless(r.cfg.Headless).
		NoSandbox(r.cfg.NoSandbox)

	if r.cfg.Bin != "" {
		l = l.Bin(r.cfg.Bin)
	}
	if r.cfg.Proxy != "" {
		l = l.Proxy(r.cfg.Proxy)
	}

	l.Set(flags.Flag("disable-setuid-sandbox"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("disable-web-security"))
	l.Set(flags.Flag("disable-features"), "IsolateOrigins,TranslateUI")
	l.Set(flags.Flag("window-size"), r.viewport)
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	if r.cfg.IgnoreCertErrors {
		l.Set(flags.Flag("ignore-certificate-errors"))
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	return &rodBrowser{browser: browser, launcher: l}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (b *rodBrowser) NewPage() (Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return newRodPage(page), nil
}

// Close asks the browser to exit, kills it if that fails, and removes its
// user data dir.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	if err != nil {
		b.launcher.Kill()
	}
	b.launcher.Cleanup()
	return err
}
