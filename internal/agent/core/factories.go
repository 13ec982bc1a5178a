package core

import (
	"fmt"
	"log"

	"github.com/mohammad-safakhou/deepchat/config"
	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
	"github.com/mohammad-safakhou/deepchat/tools/web_fetch"
	"github.com/mohammad-safakhou/deepchat/tools/web_search"
)

// NewRouter wires the full agent pipeline from configuration: LLM
// provider + fallback chain, expander, searcher, optional page
// fetcher, summarizer, researcher and router.
func NewRouter(cfg *config.Config, tele *telemetry.Telemetry, logger *log.Logger) (*Router, error) {
	provider := NewLLMProvider(cfg.LLM)
	fb := NewFallbackCaller(cfg.LLM, provider, tele, logger)
	summarizer := NewSummarizer(fb, logger)
	expander := NewQueryExpander(cfg.LLM, fb)

	searcher, searchName, err := newSearcher(cfg.Search)
	if err != nil {
		return nil, err
	}

	var fetcher web_fetch.WebFetcher
	if cfg.Search.FetchPages {
		fetcher, err = web_fetch.NewWebFetcher(web_fetch.ReadabilityFetcherType, cfg.Search.Timeout, cfg.Search.FetchMaxChars)
		if err != nil {
			return nil, fmt.Errorf("web fetcher: %w", err)
		}
	}

	researcher := NewDeepResearcher(expander, searcher, searchName, fetcher, summarizer, cfg.Search.MaxResults, tele, logger)
	return NewRouterWith(researcher, searcher, searchName, summarizer, OfflineImageGenerator{}, cfg.Search.MaxResults, tele, logger), nil
}

func newSearcher(cfg config.SearchConfig) (web_search.WebSearcher, string, error) {
	provider := web_search.Provider(cfg.Provider)
	var key string
	switch provider {
	case web_search.TavilyProvider:
		key = cfg.TavilyAPIKey
	case web_search.SerperProvider:
		key = cfg.SerperAPIKey
	case web_search.OfflineProvider:
	default:
		return nil, "", fmt.Errorf("search provider %q: %w", cfg.Provider, web_search.ErrUnsupportedProvider)
	}

	name := cfg.Provider
	if key == "" {
		name = string(web_search.OfflineProvider)
	}
	searcher, err := web_search.NewWebSearcher(provider, key)
	if err != nil {
		return nil, "", err
	}
	return searcher, name, nil
}
