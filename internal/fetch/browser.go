// Package fetch - browser.go provides headless browser rendering for JavaScript-driven listing pages.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// DefaultNavigateTimeout bounds a page navigation.
const DefaultNavigateTimeout = 30 * time.Second

// DefaultSelectorTimeout bounds waiting for a selector to appear.
const DefaultSelectorTimeout = 15 * time.Second

// htmlTimeout bounds reading the rendered markup of an already loaded page.
const htmlTimeout = 10 * time.Second

// Renderer opens browser sessions. Each session owns its browser process.
type Renderer interface {
	Open(ctx context.Context) (Page, error)
}

// Page is one browser tab. Close must be called on every path once the page
// is no longer needed; closing a session's first page ends the session.
type Page interface {
	// Navigate loads url; a non-2xx document status is returned as an *Error.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	HTML(ctx context.Context) (string, error)
	// NewPage opens an ephemeral tab in the same session.
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// BrowserOptions contains configuration for browser automation.
type BrowserOptions struct {
	Headless     bool
	UserAgent    string
	Headers      map[string]string
	WindowWidth  int
	WindowHeight int
}

// DefaultBrowserOptions returns standard browser options.
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		Headless:     true,
		UserAgent:    DefaultUserAgent,
		WindowWidth:  1366,
		WindowHeight: 900,
	}
}

// BuildAllocatorOptions creates Chrome allocator options from BrowserOptions.
func BuildAllocatorOptions(opts BrowserOptions) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	return allocOpts
}

// Browser is a chromedp-backed Renderer.
type Browser struct {
	opts BrowserOptions
}

// NewBrowser creates a Browser. Chrome/Chromium must be installed.
func NewBrowser(opts BrowserOptions) *Browser {
	return &Browser{opts: opts}
}

// Open launches a browser process and returns its first tab.
func (b *Browser) Open(ctx context.Context) (Page, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, BuildAllocatorOptions(b.opts)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx, headerActions(b.opts.Headers)...); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, &Error{URL: "about:blank", Message: "failed to start browser", Cause: err}
	}

	return &chromePage{
		ctx: tabCtx,
		cancel: func() {
			cancelTab()
			cancelAlloc()
		},
		headers: b.opts.Headers,
	}, nil
}

func headerActions(headers map[string]string) []chromedp.Action {
	if len(headers) == 0 {
		return nil
	}
	h := network.Headers{}
	for k, v := range headers {
		h[k] = v
	}
	return []chromedp.Action{network.Enable(), network.SetExtraHTTPHeaders(h)}
}

type chromePage struct {
	ctx     context.Context
	cancel  context.CancelFunc
	headers map[string]string
	closed  bool
}

// run executes actions bounded by timeout and by the caller's ctx.
func (p *chromePage) run(ctx context.Context, op string, timeout time.Duration, actions ...chromedp.Action) error {
	return p.do(ctx, op, timeout, func(runCtx context.Context) error {
		return chromedp.Run(runCtx, actions...)
	})
}

func (p *chromePage) do(ctx context.Context, op string, timeout time.Duration, fn func(context.Context) error) error {
	if p.closed {
		return fmt.Errorf("%s: page is closed", op)
	}
	runCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := fn(runCtx); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return &TimeoutError{Operation: op, Timeout: timeout, Err: err}
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	var resp *network.Response
	err := p.do(ctx, "navigate "+url, timeout, func(runCtx context.Context) error {
		var err error
		resp, err = chromedp.RunResponse(runCtx, chromedp.Navigate(url))
		return err
	})
	if err != nil {
		return err
	}
	if resp != nil {
		return CheckStatus(url, int(resp.Status))
	}
	return nil
}

func (p *chromePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, "wait for "+selector, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, "read html", htmlTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) NewPage(ctx context.Context) (Page, error) {
	if p.closed {
		return nil, errors.New("new page: parent page is closed")
	}
	tabCtx, cancelTab := chromedp.NewContext(p.ctx)
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	if err := chromedp.Run(tabCtx, headerActions(p.headers)...); err != nil {
		cancelTab()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &chromePage{ctx: tabCtx, cancel: cancelTab, headers: p.headers}, nil
}

func (p *chromePage) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
