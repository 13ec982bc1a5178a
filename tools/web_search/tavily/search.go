package tavily

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mohammad-safakhou/deepchat/tools/web_search/models"
	"github.com/mohammad-safakhou/deepchat/utils"
)

type Search struct {
	ApiKey  string
	BaseURL string // override for tests
}

func (s Search) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://docs.tavily.com/ search endpoint
	payload := map[string]any{
		"api_key":        s.ApiKey,
		"query":          q,
		"search_depth":   "advanced",
		"include_answer": false,
		"include_images": false,
		"max_results":    k,
	}
	body, _ := json.Marshal(payload)

	url := s.BaseURL
	if url == "" {
		url = "https://api.tavily.com/search"
	}
	req, _ := http.NewRequestWithContext(ctx, "POST", url, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &models.ProviderError{Provider: "tavily", Status: resp.StatusCode, Body: string(b)}
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	if items, ok := raw["results"].([]any); ok {
		for i, it := range items {
			if i >= k {
				break
			}
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			r := models.Result{
				Title:   utils.Str(m["title"]),
				URL:     utils.Str(m["url"]),
				Content: utils.Str(m["content"]),
			}
			if r.Content == "" {
				r.Content = utils.Str(m["snippet"])
			}
			if r.Title == "" {
				r.Title = "Untitled"
			}
			out = append(out, r)
		}
	}
	return out, nil
}
