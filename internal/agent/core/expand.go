package core

import (
	"context"
	"regexp"
	"strings"

	"github.com/mohammad-safakhou/deepchat/config"
)

const maxSubQueries = 5

// QueryExpander decomposes a research prompt into focused sub-queries.
type QueryExpander interface {
	Expand(ctx context.Context, prompt string) ([]string, error)
}

// NewQueryExpander selects an expander implementation by
// configuration: LLM-backed when a key is present, deterministic
// otherwise.
func NewQueryExpander(cfg config.LLMConfig, fb *FallbackCaller) QueryExpander {
	if cfg.APIKey == "" {
		return staticExpander{}
	}
	return &llmExpander{fb: fb}
}

// staticExpander yields a deterministic 4-item expansion.
type staticExpander struct{}

func (staticExpander) Expand(ctx context.Context, prompt string) ([]string, error) {
	return []string{
		prompt,
		prompt + " funding and investors",
		prompt + " market size and trends",
		prompt + " key players and competitors",
	}, nil
}

var listMarker = regexp.MustCompile(`^\s*[-*\d.]+\s*`)

// llmExpander asks the model for 3-5 newline-separated sub-queries.
type llmExpander struct {
	fb *FallbackCaller
}

func (e *llmExpander) Expand(ctx context.Context, prompt string) ([]string, error) {
	messages := []Message{
		{Role: RoleSystem, Content: "You expand a research question into 3–5 highly specific sub-queries. Return one per line, no numbering."},
		{Role: RoleUser, Content: prompt},
	}
	out, err := e.fb.Complete(ctx, messages, CompletionOptions{Temperature: 0.4})
	if err != nil {
		return nil, err
	}

	var queries []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		queries = append(queries, line)
		if len(queries) == maxSubQueries {
			break
		}
	}
	if len(queries) == 0 {
		// the model produced no usable lines; keep the round going
		return []string{prompt, prompt + " recent", prompt + " key insights"}, nil
	}
	return queries, nil
}
