package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const notionVersion = "2022-06-28"

// Notion creates a page in a configured database.
type Notion struct {
	APIKey     string
	DatabaseID string
	BaseURL    string
	Client     *http.Client
}

func (n *Notion) Name() string { return "notion" }

func (n *Notion) Send(ctx context.Context, p Payload) error {
	if n.APIKey == "" || n.DatabaseID == "" {
		return fmt.Errorf("notion api key/database id: %w", ErrMissingCredential)
	}

	page := map[string]any{
		"parent": map[string]any{"database_id": n.DatabaseID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []any{
					map[string]any{"text": map[string]any{"content": p.Title}},
				},
			},
		},
		"children": []any{
			map[string]any{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]any{
					"rich_text": []any{
						map[string]any{"type": "text", "text": map[string]any{"content": p.Content}},
					},
				},
			},
		},
	}
	body, _ := json.Marshal(page)

	base := n.BaseURL
	if base == "" {
		base = "https://api.notion.com"
	}
	req, err := http.NewRequestWithContext(ctx, "POST", base+"/v1/pages", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+n.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notion api failed (%s): %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return nil
}
