package web_search

import (
	"context"

	"github.com/mohammad-safakhou/deepchat/tools/web_search/models"
	"github.com/mohammad-safakhou/deepchat/tools/web_search/offline"
	"github.com/mohammad-safakhou/deepchat/tools/web_search/serper"
	"github.com/mohammad-safakhou/deepchat/tools/web_search/tavily"
)

type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	TavilyProvider  Provider = "tavily"
	SerperProvider  Provider = "serper"
	OfflineProvider Provider = "offline"
)

type Error struct{ Msg string }

func (e *Error) Error() string { return e.Msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

// NewWebSearcher selects a searcher implementation. An empty apiKey
// always yields the offline searcher, so no request leaves the process.
func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	if apiKey == "" {
		provider = OfflineProvider
	}
	switch provider {
	case TavilyProvider:
		return tavily.Search{ApiKey: apiKey}, nil
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	case OfflineProvider:
		return offline.Search{}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
