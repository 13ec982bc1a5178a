// Package offline provides the searcher used when no provider key is
// configured. Requests never leave the process.
package offline

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/deepchat/tools/web_search/models"
	"github.com/mohammad-safakhou/deepchat/utils"
)

const PlaceholderDomain = "example.com"

type Search struct{}

func (Search) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	return []models.Result{{
		Title:   fmt.Sprintf("Mock: %s", q),
		URL:     fmt.Sprintf("https://%s/search?q=%s", PlaceholderDomain, utils.UrlQuery(q)),
		Content: "This is a mock search result because no search API key is configured. Set search.tavily_api_key for real results.",
	}}, nil
}
