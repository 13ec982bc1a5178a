package sink

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Drive uploads plain-text content as a file.
type Drive struct {
	AccessToken string
	BaseURL     string
	Client      *http.Client
}

func (d *Drive) Name() string { return "drive" }

func (d *Drive) Send(ctx context.Context, p Payload) error {
	if d.AccessToken == "" {
		return fmt.Errorf("drive access token: %w", ErrMissingCredential)
	}

	base := d.BaseURL
	if base == "" {
		base = "https://www.googleapis.com"
	}
	req, err := http.NewRequestWithContext(ctx, "POST", base+"/upload/drive/v3/files?uploadType=media", strings.NewReader(p.Content))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+d.AccessToken)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", p.Filename))

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("drive upload failed: %s", resp.Status)
	}
	return nil
}
