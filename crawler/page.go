package crawler

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/pagegrab/models"
	"github.com/ysmood/gson"
)

// rodPage adapts *rod.Page to Page.
//
// The base page is bound to its own cancelable context so event listeners
// started through it end when the page is closed. Per-call contexts are
// attached with bind and never leak into the base page.
type rodPage struct {
	page    *rod.Page
	cancel  context.CancelFunc
	timeout time.Duration
}

func newRodPage(page *rod.Page) *rodPage {
	ctx, cancel := context.WithCancel(context.Background())
	return &rodPage{page: page.Context(ctx), cancel: cancel}
}

// bind attaches ctx to the page, capped by the default operation timeout.
func (p *rodPage) bind(ctx context.Context) (*rod.Page, context.CancelFunc) {
	if p.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		return p.page.Context(ctx), cancel
	}
	ctx, cancel := context.WithCancel(ctx)
	return p.page.Context(ctx), cancel
}

func (p *rodPage) SetUserAgent(userAgent string) error {
	return p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent})
}

func (p *rodPage) SetViewport(width, height int) error {
	return p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  width,
		Height: height,
	})
}

func (p *rodPage) SetExtraHeaders(headers map[string]string) error {
	if len(headers) == 0 {
		return nil
	}
	return proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(p.page)
}

func (p *rodPage) InjectStealth() error {
	_, err := p.page.EvalOnNewDocument(stealth.JS)
	return err
}

func (p *rodPage) SetDefaultTimeout(d time.Duration) {
	p.timeout = d
}

// InterceptRequests mounts a catch-all hijack router. Pattern "*" with an
// empty resource type sees every request; admit decides per request.
func (p *rodPage) InterceptRequests(admit AdmissionFunc) (func() error, error) {
	router := p.page.HijackRequests()

	err := router.Add("*", "", func(h *rod.Hijack) {
		if !admit(h.Request.Type(), h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	if err != nil {
		return nil, err
	}

	// Run blocks until Stop.
	go router.Run()

	return router.Stop, nil
}

func (p *rodPage) OnPageError(fn func(message string)) {
	go p.page.EachEvent(func(e *proto.RuntimeExceptionThrown) {
		details := e.ExceptionDetails
		if details == nil {
			return
		}
		msg := details.Text
		if details.Exception != nil && details.Exception.Description != "" {
			msg = details.Exception.Description
		}
		fn(msg)
	})()
}

// Navigate registers the lifecycle waiter before navigating; registering
// it afterwards can miss an early event and hang until ctx expires.
func (p *rodPage) Navigate(ctx context.Context, url string, wait models.WaitStrategy) error {
	pg := p.page.Context(ctx)

	event := proto.PageLifecycleEventNameDOMContentLoaded
	if wait == models.WaitNetworkIdle {
		event = proto.PageLifecycleEventNameNetworkIdle
	}
	waitEvent := pg.WaitNavigation(event)

	if err := pg.Navigate(url); err != nil {
		return err
	}
	waitEvent()

	return ctx.Err()
}

// ResponseStatus reads the main document status from the Navigation Timing
// API. CDP response events conflict with the Fetch domain used by the
// hijack router on recent Chromium, so they are not used here.
func (p *rodPage) ResponseStatus(ctx context.Context) (int, error) {
	pg, cancel := p.bind(ctx)
	defer cancel()

	res, err := pg.Eval(`() => {
		try {
			const entries = performance.getEntriesByType("navigation");
			if (entries.length > 0) return entries[0].responseStatus || 0;
		} catch(e) {}
		return 0;
	}`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPage) ScrollBy(ctx context.Context, dy int) error {
	pg, cancel := p.bind(ctx)
	defer cancel()

	_, err := pg.Eval(`(dy) => window.scrollBy(0, dy)`, dy)
	return err
}

func (p *rodPage) ScrollHeight(ctx context.Context) (int, error) {
	pg, cancel := p.bind(ctx)
	defer cancel()

	res, err := pg.Eval(`() => document.documentElement.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (p *rodPage) WaitSelector(ctx context.Context, selector string) error {
	pg, cancel := p.bind(ctx)
	defer cancel()

	return pg.WaitElementsMoreThan(selector, 0)
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	pg, cancel := p.bind(ctx)
	defer cancel()

	return pg.HTML()
}

// Close closes the tab and stops any listeners bound to it.
func (p *rodPage) Close() error {
	defer p.cancel()
	return p.page.Close()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
