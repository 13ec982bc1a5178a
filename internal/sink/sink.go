// Package sink forwards agent output to external productivity tools.
// Each sink requires its own credential; a missing credential fails
// that sink only and never touches the agent pipeline.
package sink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/deepchat/config"
)

// Payload is the structured content forwarded to a sink. Sinks pick
// the fields they need.
type Payload struct {
	Title    string `json:"title,omitempty"`
	Content  string `json:"content,omitempty"`
	Text     string `json:"text,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type Sink interface {
	Name() string
	Send(ctx context.Context, p Payload) error
}

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrUnsupportedSink   = errors.New("unsupported integration")
)

// Registry holds the configured sinks and dispatches by app name.
type Registry struct {
	sinks map[string]Sink
}

// NewRegistry builds all sinks from config. Sinks without credentials
// are still registered; they fail with ErrMissingCredential on use.
func NewRegistry(cfg config.SinksConfig) *Registry {
	client := &http.Client{Timeout: 15 * time.Second}
	slack := &Slack{WebhookURL: cfg.Slack.WebhookURL, Client: client}
	notion := &Notion{APIKey: cfg.Notion.APIKey, DatabaseID: cfg.Notion.DatabaseID, Client: client}
	drive := &Drive{AccessToken: cfg.Drive.AccessToken, Client: client}
	return &Registry{sinks: map[string]Sink{
		"slack":       slack,
		"notion":      notion,
		"drive":       drive,
		"googledrive": drive,
	}}
}

// Run dispatches the payload to the named sink.
func (r *Registry) Run(ctx context.Context, app string, p Payload) error {
	s, ok := r.sinks[strings.ToLower(app)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedSink, app)
	}
	return s.Send(ctx, p)
}
