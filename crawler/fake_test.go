package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/pagegrab/models"
)

// fakeLauncher counts launches and hands out a prepared browser.
type fakeLauncher struct {
	mu       sync.Mutex
	launches int
	browser  *fakeBrowser
	err      error
}

func (l *fakeLauncher) Launch(ctx context.Context) (Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.browser, nil
}

func (l *fakeLauncher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

type fakeBrowser struct {
	page     *fakePage
	pageErr  error
	closeErr error
	closed   int
}

func (b *fakeBrowser) NewPage() (Page, error) {
	if b.pageErr != nil {
		return nil, b.pageErr
	}
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closed++
	return b.closeErr
}

// fakePage serves a fixed DOM and records the order of calls.
type fakePage struct {
	mu    sync.Mutex
	calls []string

	html         string
	status       int
	statusErr    error
	navErr       error
	navBlock     bool
	selectorErr  error
	scrollHeight int
	scrollErr    error
	uaErr        error
	pageErrors   []string

	userAgent string
	headers   map[string]string
	timeout   time.Duration
	admit     AdmissionFunc
	scrolled  int
	stopped   bool
	closed    bool
}

func (p *fakePage) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}

func (p *fakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) SetUserAgent(userAgent string) error {
	p.record("user-agent")
	p.userAgent = userAgent
	return p.uaErr
}

func (p *fakePage) SetViewport(width, height int) error {
	p.record("viewport")
	return nil
}

func (p *fakePage) SetExtraHeaders(headers map[string]string) error {
	p.headers = headers
	return nil
}

func (p *fakePage) InjectStealth() error {
	p.record("stealth")
	return nil
}

func (p *fakePage) SetDefaultTimeout(d time.Duration) {
	p.timeout = d
}

func (p *fakePage) InterceptRequests(admit AdmissionFunc) (func() error, error) {
	p.record("intercept")
	p.admit = admit
	return func() error {
		p.stopped = true
		return nil
	}, nil
}

func (p *fakePage) OnPageError(fn func(message string)) {
	for _, msg := range p.pageErrors {
		fn(msg)
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string, wait models.WaitStrategy) error {
	p.record("navigate:" + string(wait))
	if p.navBlock {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.navErr
}

func (p *fakePage) ResponseStatus(ctx context.Context) (int, error) {
	return p.status, p.statusErr
}

func (p *fakePage) ScrollBy(ctx context.Context, dy int) error {
	if p.scrollErr != nil {
		return p.scrollErr
	}
	p.mu.Lock()
	p.scrolled++
	p.mu.Unlock()
	return nil
}

func (p *fakePage) ScrollHeight(ctx context.Context) (int, error) {
	return p.scrollHeight, nil
}

func (p *fakePage) WaitSelector(ctx context.Context, selector string) error {
	p.record("wait:" + selector)
	return p.selectorErr
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	p.record("html")
	return p.html, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// newFakeSession wires a launcher, browser and page together.
func newFakeSession(page *fakePage) (*fakeLauncher, *fakeBrowser) {
	b := &fakeBrowser{page: page}
	return &fakeLauncher{browser: b}, b
}

var errBoom = errors.New("boom")

// admitOnly is a convenience for checking admission decisions.
func admitOnly(admit AdmissionFunc, category proto.NetworkResourceType) bool {
	return admit(category, "https://example.com/resource")
}
