package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Slack posts text to an incoming-webhook URL.
type Slack struct {
	WebhookURL string
	Client     *http.Client
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, p Payload) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook url: %w", ErrMissingCredential)
	}
	text := p.Text
	if text == "" {
		text = p.Content
	}

	body, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, "POST", s.WebhookURL, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("slack webhook failed: %s", resp.Status)
	}
	return nil
}
