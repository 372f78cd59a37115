package fetch

import (
	"context"
	"time"
)

// PageFetcher fetches pages by opening an ephemeral tab in an existing
// browser session. It is used when detail pages also need JavaScript.
type PageFetcher struct {
	Parent  Page
	Timeout time.Duration
}

// NewPageFetcher creates a PageFetcher bound to parent's session.
func NewPageFetcher(parent Page, timeout time.Duration) *PageFetcher {
	if timeout <= 0 {
		timeout = DefaultNavigateTimeout
	}
	return &PageFetcher{Parent: parent, Timeout: timeout}
}

// Fetch opens a tab, navigates, reads the markup and closes the tab. A non-2xx
// document status fails the fetch with the status code set.
func (f *PageFetcher) Fetch(ctx context.Context, urlStr string) (*Result, error) {
	tab, err := f.Parent.NewPage(ctx)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to open tab", Cause: err}
	}
	defer func() { _ = tab.Close() }()

	if err := tab.Navigate(ctx, urlStr, f.Timeout); err != nil {
		return nil, &Error{URL: urlStr, Message: "navigation failed", StatusCode: StatusCode(err), Cause: err}
	}

	html, err := tab.HTML(ctx)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "failed to read rendered HTML", Cause: err}
	}

	return &Result{URL: urlStr, HTML: html}, nil
}
