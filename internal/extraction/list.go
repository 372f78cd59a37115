package extraction

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/cerebro/internal/fetch"
	"github.com/jonathan/cerebro/internal/logger"
	"github.com/jonathan/cerebro/internal/selectors"
	"github.com/jonathan/cerebro/internal/types"
)

// ListOptions configures a ListExtractor.
type ListOptions struct {
	NavigateTimeout time.Duration
	SelectorTimeout time.Duration
	// DetailFetcher retrieves detail pages. When nil, each detail page is
	// opened in an ephemeral tab of the listing page's browser session.
	DetailFetcher fetch.Fetcher
	Detail        *DetailExtractor
	UIDs          *UIDGenerator
	Clock         Clock
	Logger        logger.Logger
}

// ListExtractor renders a listing page, enumerates its cards, follows each
// card to its detail page and emits one record per complete card. Cards are
// processed one at a time in document order.
type ListExtractor struct {
	strategy string
	renderer fetch.Renderer
	opts     ListOptions
}

// NewListExtractor creates a ListExtractor registered as strategy.
func NewListExtractor(strategy string, renderer fetch.Renderer, opts ListOptions) *ListExtractor {
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = fetch.DefaultNavigateTimeout
	}
	if opts.SelectorTimeout <= 0 {
		opts.SelectorTimeout = fetch.DefaultSelectorTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Detail == nil {
		opts.Detail = NewDetailExtractor(opts.Logger)
	}
	if opts.UIDs == nil {
		opts.UIDs = NewUIDGenerator(opts.Clock)
	}
	return &ListExtractor{strategy: strategy, renderer: renderer, opts: opts}
}

// Strategy returns the strategy name stamped into record provenance.
func (e *ListExtractor) Strategy() string {
	return e.strategy
}

// ExtractList implements Extractor. The browser session opened here is
// closed before returning on every path.
func (e *ListExtractor) ExtractList(ctx context.Context, req Request) ListResult {
	log := e.opts.Logger.With(
		logger.String("issuer_id", req.IssuerID),
		logger.String("source_id", req.SourceID),
		logger.String("strategy", e.strategy),
	)

	pattern, recognized := selectors.Resolve(req.SourceURL)
	if !recognized {
		log.Warn("unrecognized listing URL, using default selector pattern",
			logger.String("url", req.SourceURL),
			logger.String("pattern", pattern.Name),
		)
	}

	page, err := e.renderer.Open(ctx)
	if err != nil {
		return e.fail(log, &ListPageError{URL: req.SourceURL, Message: "failed to open browser", Cause: err})
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			log.Debug("browser close reported an error", logger.Error(cerr))
		}
	}()

	html, reason := e.render(ctx, page, req.SourceURL, pattern)
	if reason != nil {
		return e.fail(log, reason)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return e.fail(log, &ListPageError{URL: req.SourceURL, Message: "failed to parse HTML", Cause: err})
	}

	cards := doc.Find(pattern.Card)
	result := ListResult{CardsFound: cards.Length()}
	log.Info("cards found", logger.Int("cards", result.CardsFound), logger.String("pattern", pattern.Name))

	fetcher := e.opts.DetailFetcher
	if fetcher == nil {
		fetcher = fetch.NewPageFetcher(page, e.opts.Detail.Timeout)
	}

	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if ctx.Err() != nil {
			result.Reason = ctx.Err()
			return false
		}
		record, skip := e.processCard(ctx, req, pattern, i, card, fetcher)
		if skip != nil {
			log.Warn("card skipped", logger.Int("card", i+1), logger.Error(skip))
			result.Skipped = append(result.Skipped, skip)
			return true
		}
		result.Records = append(result.Records, *record)
		return true
	})

	log.Info("listing extracted",
		logger.Int("records", len(result.Records)),
		logger.Int("skipped", len(result.Skipped)),
	)
	return result
}

// render navigates to the listing and returns its markup once a card is present.
func (e *ListExtractor) render(ctx context.Context, page fetch.Page, sourceURL string, pattern selectors.Pattern) (string, error) {
	if err := page.Navigate(ctx, sourceURL, e.opts.NavigateTimeout); err != nil {
		return "", &ListPageError{URL: sourceURL, Message: "navigation failed", Cause: err}
	}

	if err := page.WaitForSelector(ctx, pattern.Card, e.opts.SelectorTimeout); err != nil {
		if fetch.IsTimeout(err) {
			return "", &RenderTimeoutError{URL: sourceURL, Selector: pattern.Card, Timeout: e.opts.SelectorTimeout, Cause: err}
		}
		return "", &ListPageError{URL: sourceURL, Message: "waiting for cards failed", Cause: err}
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return "", &ListPageError{URL: sourceURL, Message: "failed to read rendered HTML", Cause: err}
	}
	return html, nil
}

func (e *ListExtractor) fail(log logger.Logger, reason error) ListResult {
	log.Warn("listing yielded no cards", logger.Error(reason))
	return ListResult{Reason: reason}
}

// processCard builds the record for one card. Any panic is contained here so
// the remaining cards are still processed.
func (e *ListExtractor) processCard(ctx context.Context, req Request, pattern selectors.Pattern, index int, card *goquery.Selection, fetcher fetch.Fetcher) (record *types.BenefitRecord, skip *CardExtractionError) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			skip = &CardExtractionError{Index: index, Message: fmt.Sprintf("unexpected failure: %v", r)}
		}
	}()

	data := ReadCard(card, pattern)
	if data.Title == nil {
		return nil, &CardExtractionError{Index: index, Message: "missing title"}
	}
	if data.DetailURL == nil {
		return nil, &CardExtractionError{Index: index, Message: "missing detail link"}
	}

	detailURL, err := resolveLink(req.SourceURL, *data.DetailURL)
	if err != nil {
		return nil, &CardExtractionError{Index: index, Message: "unresolvable detail link", Cause: err}
	}
	data.DetailURL = &detailURL

	detail := e.opts.Detail.Extract(ctx, detailURL, pattern, fetcher)

	rec := Normalize(NormalizeInput{
		Card:         data,
		Detail:       detail.Data,
		IssuerID:     req.IssuerID,
		BenefitUID:   e.opts.UIDs.Next(req.IssuerID),
		CategoryHint: req.CategoryHint,
		SourceURL:    detailURL,
		ListURL:      req.SourceURL,
		Strategy:     e.strategy,
	}, e.opts.Clock)
	return &rec, nil
}

// ReadCard extracts the list-level fields of one card. DetailURL is the raw
// link attribute, not yet resolved.
func ReadCard(card *goquery.Selection, pattern selectors.Pattern) types.CardListData {
	var data types.CardListData

	if pattern.TextItems != "" {
		var texts []string
		card.Find(pattern.TextItems).Each(func(_ int, s *goquery.Selection) {
			if text := nodeText(s); text != "" {
				texts = append(texts, text)
			}
		})
		if len(texts) > 0 {
			data.Title = &texts[0]
		}
		if len(texts) > 1 {
			data.DiscountText = &texts[1]
		}
		if len(texts) > 2 {
			data.ShortDescription = &texts[2]
		}
	} else {
		data.Title = firstText(card, pattern.Title)
		data.DiscountText = firstText(card, pattern.Discount)
		data.ShortDescription = firstText(card, pattern.ShortDescription)
	}

	linkNode := card
	if pattern.Link != "" {
		linkNode = card.Find(pattern.Link).First()
	}
	attr := pattern.LinkAttr
	if attr == "" {
		attr = "href"
	}
	if href, ok := linkNode.Attr(attr); ok {
		data.DetailURL = optional(strings.TrimSpace(href))
	}

	return data
}

// resolveLink resolves href against the listing URL.
func resolveLink(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing URL: %w", err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}
	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("link %q is not an http(s) URL", href)
	}
	return resolved.String(), nil
}
