package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mohammad-safakhou/deepchat/config"
	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
	searchmodels "github.com/mohammad-safakhou/deepchat/tools/web_search/models"
)

// stubLLM fails for models listed in failing and answers with reply
// otherwise, recording every attempted model in order.
type stubLLM struct {
	failing map[string]bool
	reply   string
	calls   *[]string
}

func (s stubLLM) Complete(ctx context.Context, model string, messages []Message, opts CompletionOptions) (string, error) {
	if s.calls != nil {
		*s.calls = append(*s.calls, model)
	}
	if s.failing[model] {
		return "", fmt.Errorf("model %s unavailable", model)
	}
	return s.reply, nil
}

func (s stubLLM) Stream(ctx context.Context, model string, messages []Message, opts CompletionOptions, emit func(string) error) error {
	if s.calls != nil {
		*s.calls = append(*s.calls, model)
	}
	if s.failing[model] {
		return fmt.Errorf("model %s unavailable", model)
	}
	return emit(s.reply)
}

// stubSearcher returns fixed results per query, or fails queries
// listed in failing.
type stubSearcher struct {
	results map[string][]searchmodels.Result
	failing map[string]bool
}

func (s stubSearcher) Search(ctx context.Context, q string, k int) ([]searchmodels.Result, error) {
	if s.failing[q] {
		return nil, errors.New("search transport failure")
	}
	return s.results[q], nil
}

type stubExpander struct {
	queries []string
	err     error
}

func (s stubExpander) Expand(ctx context.Context, prompt string) ([]string, error) {
	return s.queries, s.err
}

func testFallback(provider LLMProvider, models ...string) *FallbackCaller {
	cfg := config.LLMConfig{Model: models[0]}
	if len(models) > 1 {
		cfg.Fallbacks = models[1:]
	}
	return NewFallbackCaller(cfg, provider, noTelemetry(), testLogger())
}

func noTelemetry() *telemetry.Telemetry {
	return telemetry.NewTelemetry(config.TelemetryConfig{}, nil)
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[TEST] ", 0)
}
