package main

import (
	"github.com/jonathan/cerebro/internal/config"
	"github.com/jonathan/cerebro/internal/extraction"
	"github.com/jonathan/cerebro/internal/fetch"
	"github.com/jonathan/cerebro/internal/logger"
)

// Registered parser strategies.
const (
	// StrategyBancoChile retrieves detail pages as configured by detail_mode:
	// a tab of the listing's browser session, or the HTTP client.
	StrategyBancoChile = "bancochile_v1"
	// StrategyBancoChileHTTP fetches detail pages with a plain HTTP client.
	StrategyBancoChileHTTP = "bancochile_v1_http"
)

// buildRegistry wires every parser strategy to a rendering session factory
// and detail fetcher configured from cfg. All strategies share one uid
// generator so uids stay unique across the run.
func buildRegistry(cfg config.Config, log logger.Logger) (*extraction.Registry, error) {
	headers := map[string]string{}
	if cfg.AcceptLanguage != "" {
		headers["Accept-Language"] = cfg.AcceptLanguage
	}

	browserOpts := fetch.DefaultBrowserOptions()
	browserOpts.Headless = cfg.IsHeadless()
	browserOpts.UserAgent = cfg.UserAgent
	browserOpts.Headers = headers
	renderer := fetch.NewBrowser(browserOpts)

	httpClient := fetch.NewClient(&fetch.Options{
		Timeout:   cfg.DetailTimeout.Std(),
		UserAgent: cfg.UserAgent,
		Headers:   headers,
	})

	detail := extraction.NewDetailExtractor(log)
	detail.Delay = cfg.DetailDelay.Std()
	detail.Timeout = cfg.DetailTimeout.Std()

	uids := extraction.NewUIDGenerator(nil)
	base := extraction.ListOptions{
		NavigateTimeout: cfg.NavigateTimeout.Std(),
		SelectorTimeout: cfg.SelectorTimeout.Std(),
		Detail:          detail,
		UIDs:            uids,
		Logger:          log,
	}

	withHTTP := base
	withHTTP.DetailFetcher = httpClient
	if cfg.DetailMode == config.DetailModeHTTP {
		base.DetailFetcher = httpClient
	}

	registry := extraction.NewRegistry()
	strategies := map[string]extraction.Extractor{
		StrategyBancoChile:     extraction.NewListExtractor(StrategyBancoChile, renderer, base),
		StrategyBancoChileHTTP: extraction.NewListExtractor(StrategyBancoChileHTTP, renderer, withHTTP),
	}
	for name, extractor := range strategies {
		if err := registry.Register(name, extractor); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
