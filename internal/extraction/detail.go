package extraction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/cerebro/internal/fetch"
	"github.com/jonathan/cerebro/internal/logger"
	"github.com/jonathan/cerebro/internal/selectors"
	"github.com/jonathan/cerebro/internal/types"
)

// DefaultDetailDelay is the pause before every detail fetch.
const DefaultDetailDelay = 1 * time.Second

// DefaultDetailTimeout bounds one detail fetch.
const DefaultDetailTimeout = 30 * time.Second

// DetailExtractor reads the authoritative fields of a benefit detail page.
type DetailExtractor struct {
	Delay   time.Duration
	Timeout time.Duration
	Logger  logger.Logger
}

// NewDetailExtractor creates a DetailExtractor with the default delay and timeout.
func NewDetailExtractor(log logger.Logger) *DetailExtractor {
	if log == nil {
		log = logger.NewNop()
	}
	return &DetailExtractor{
		Delay:   DefaultDetailDelay,
		Timeout: DefaultDetailTimeout,
		Logger:  log,
	}
}

// Extract fetches detailURL once and reads its fields with pattern. It never
// returns an error: on any failure the result carries an empty DetailData and
// the reason.
func (d *DetailExtractor) Extract(ctx context.Context, detailURL string, pattern selectors.Pattern, fetcher fetch.Fetcher) DetailResult {
	log := d.Logger.With(logger.String("detail_url", detailURL))

	if err := sleep(ctx, d.Delay); err != nil {
		return DetailResult{Reason: &DetailFetchError{URL: detailURL, Cause: err}}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	page, err := fetcher.Fetch(fetchCtx, detailURL)
	if err != nil {
		reason := &DetailFetchError{URL: detailURL, Cause: err}
		log.Warn("detail page unavailable, using list data only", logger.Error(reason))
		return DetailResult{Reason: reason}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		reason := &DetailFetchError{URL: detailURL, Cause: fmt.Errorf("failed to parse HTML: %w", err)}
		log.Warn("detail page unparseable, using list data only", logger.Error(reason))
		return DetailResult{Reason: reason}
	}

	data := ParseDetail(doc.Selection, pattern, log)
	log.Debug("detail page parsed",
		logger.Int("rules", len(data.Rules)),
		logger.Int("locations", len(data.Locations)),
	)
	return DetailResult{Data: data}
}

// ParseDetail reads every detail field independently; a missing or broken
// selector for one field leaves the others intact.
func ParseDetail(root *goquery.Selection, pattern selectors.Pattern, log logger.Logger) types.DetailData {
	var data types.DetailData

	attempt(log, "title", func() {
		data.Title = firstText(root, pattern.DetailTitle)
	})
	attempt(log, "validity", func() {
		data.ValidityText = firstText(root, pattern.DetailValidity)
	})
	attempt(log, "rules", func() {
		data.Rules = parseRules(root, pattern)
	})
	attempt(log, "locations", func() {
		data.Locations = parseLocations(root, pattern)
	})

	return data
}

func parseRules(root *goquery.Selection, pattern selectors.Pattern) []string {
	if pattern.DetailRulesContainer == "" || pattern.DetailRuleItem == "" {
		return nil
	}
	var rules []string
	root.Find(pattern.DetailRulesContainer).ChildrenFiltered(pattern.DetailRuleItem).Each(func(_ int, s *goquery.Selection) {
		if text := nodeText(s); text != "" {
			rules = append(rules, text)
		}
	})
	return rules
}

func parseLocations(root *goquery.Selection, pattern selectors.Pattern) []types.Location {
	if pattern.DetailLocationCard == "" {
		return nil
	}
	var locations []types.Location
	root.Find(pattern.DetailLocationCard).Each(func(_ int, card *goquery.Selection) {
		var parts []string
		if addr := firstText(card, pattern.DetailLocationAddress); addr != nil {
			parts = append(parts, *addr)
		}
		if commune := firstText(card, pattern.DetailLocationCommune); commune != nil {
			parts = append(parts, *commune)
		}
		if len(parts) == 0 {
			return
		}
		locations = append(locations, types.Location{Address: strings.Join(parts, ", ")})
	})
	return locations
}

// attempt runs one field extraction, converting a panic into a warning.
func attempt(log logger.Logger, field string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("detail field extraction failed",
				logger.String("field", field),
				logger.Any("panic", r),
			)
		}
	}()
	fn()
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
