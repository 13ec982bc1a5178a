package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/deepchat/config"
)

func TestFallbackShortCircuitsOnFirstSuccess(t *testing.T) {
	var calls []string
	provider := stubLLM{failing: map[string]bool{"a": true, "b": true}, reply: "from-c", calls: &calls}
	fb := testFallback(provider, "a", "b", "c", "d")

	out, err := fb.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, CompletionOptions{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "from-c" {
		t.Fatalf("got %q, want from-c", out)
	}
	if len(calls) != 3 || calls[2] != "c" {
		t.Fatalf("expected attempts [a b c], got %v", calls)
	}
}

func TestFallbackExhaustedCarriesLastError(t *testing.T) {
	provider := stubLLM{failing: map[string]bool{"a": true, "b": true, "c": true}}
	fb := testFallback(provider, "a", "b", "c")

	_, err := fb.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, CompletionOptions{})
	var exhausted *ProviderExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ProviderExhaustedError, got %v", err)
	}
	if !strings.Contains(exhausted.Last.Error(), "model c") {
		t.Fatalf("last error should come from the most recently attempted candidate, got %v", exhausted.Last)
	}
}

func TestFallbackSkipsEmptyCandidates(t *testing.T) {
	var calls []string
	provider := stubLLM{reply: "ok", calls: &calls}
	cfg := config.LLMConfig{Model: "", Fallbacks: []string{"", "m1"}}
	fb := NewFallbackCaller(cfg, provider, noTelemetry(), testLogger())

	if _, err := fb.Complete(context.Background(), nil, CompletionOptions{}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(calls) != 1 || calls[0] != "m1" {
		t.Fatalf("expected only m1 attempted, got %v", calls)
	}
}

func TestFallbackStreamTriesNextBeforeFirstChunk(t *testing.T) {
	provider := stubLLM{failing: map[string]bool{"a": true}, reply: "chunk"}
	fb := testFallback(provider, "a", "b")

	var got strings.Builder
	err := fb.Stream(context.Background(), nil, CompletionOptions{}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got.String() != "chunk" {
		t.Fatalf("got %q, want chunk", got.String())
	}
}
