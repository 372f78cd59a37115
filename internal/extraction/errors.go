// Package extraction implements the two-level benefit extraction engine: listing pages are
// rendered and split into cards, each card is followed to its detail page, and both levels
// are merged into one normalized benefit record.
package extraction

import (
	"fmt"
	"time"
)

// UnknownStrategyError is returned when no extractor is registered under a name.
type UnknownStrategyError struct {
	Strategy string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown parser strategy %q", e.Strategy)
}

// RenderTimeoutError means the card selector never appeared on a listing page.
type RenderTimeoutError struct {
	URL      string
	Selector string
	Timeout  time.Duration
	Cause    error
}

func (e *RenderTimeoutError) Error() string {
	return fmt.Sprintf("no cards matching %q on %s after %s", e.Selector, e.URL, e.Timeout)
}

func (e *RenderTimeoutError) Unwrap() error {
	return e.Cause
}

// ListPageError is a listing-page failure other than a selector timeout
// (browser start, navigation, markup read).
type ListPageError struct {
	URL     string
	Message string
	Cause   error
}

func (e *ListPageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("list page %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("list page %s: %s", e.URL, e.Message)
}

func (e *ListPageError) Unwrap() error {
	return e.Cause
}

// DetailFetchError means a detail page could not be retrieved.
type DetailFetchError struct {
	URL   string
	Cause error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("detail fetch failed for %s: %v", e.URL, e.Cause)
}

func (e *DetailFetchError) Unwrap() error {
	return e.Cause
}

// CardExtractionError explains why one card was skipped.
type CardExtractionError struct {
	Index   int
	Message string
	Cause   error
}

func (e *CardExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("card %d skipped: %s: %v", e.Index+1, e.Message, e.Cause)
	}
	return fmt.Sprintf("card %d skipped: %s", e.Index+1, e.Message)
}

func (e *CardExtractionError) Unwrap() error {
	return e.Cause
}
