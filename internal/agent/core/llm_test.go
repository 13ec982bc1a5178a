package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/deepchat/config"
)

func newTestProvider(baseURL string) *OpenAIProvider {
	return NewOpenAIProvider(config.LLMConfig{APIKey: "key", BaseURL: baseURL})
}

func sseChunk(t *testing.T, content string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"choices": []map[string]any{{"delta": map[string]string{"content": content}}},
	})
	if err != nil {
		t.Fatalf("marshal chunk: %v", err)
	}
	return "data: " + string(b) + "\n"
}

func TestCompleteRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Fatalf("missing bearer token")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "m1" || req.Stream {
			t.Fatalf("unexpected request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "an answer"}}},
		})
	}))
	defer srv.Close()

	out, err := newTestProvider(srv.URL).Complete(context.Background(), "m1", []Message{{Role: RoleUser, Content: "hi"}}, CompletionOptions{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "an answer" {
		t.Fatalf("got %q, want an answer", out)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Complete(context.Background(), "m1", nil, CompletionOptions{})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("got %v, want a no-choices error", err)
	}
}

func TestCompleteNon200Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).Complete(context.Background(), "m1", nil, CompletionOptions{})
	if err == nil || !strings.Contains(err.Error(), "provider status 429") {
		t.Fatalf("got %v, want provider status error", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("error should carry the response body: %v", err)
	}
}

func TestStreamDeliversFragmentsInOrderAndStopsAtDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if !req.Stream {
			t.Fatalf("stream flag not set")
		}
		fmt.Fprint(w, sseChunk(t, "first "))
		fmt.Fprint(w, "\n")
		fmt.Fprint(w, ": keep-alive comment\n")
		fmt.Fprint(w, sseChunk(t, "second"))
		fmt.Fprint(w, "data: [DONE]\n")
		fmt.Fprint(w, sseChunk(t, "after done"))
	}))
	defer srv.Close()

	var got strings.Builder
	err := newTestProvider(srv.URL).Stream(context.Background(), "m1", []Message{{Role: RoleUser, Content: "hi"}}, CompletionOptions{}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got.String() != "first second" {
		t.Fatalf("got %q, want fragments in arrival order up to [DONE]", got.String())
	}
}

func TestStreamEndsWhenBodyCloses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseChunk(t, "only"))
	}))
	defer srv.Close()

	var got strings.Builder
	err := newTestProvider(srv.URL).Stream(context.Background(), "m1", nil, CompletionOptions{}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("body close without [DONE] should end the stream cleanly, got %v", err)
	}
	if got.String() != "only" {
		t.Fatalf("got %q, want only", got.String())
	}
}

func TestStreamHandlesOversizedFragment(t *testing.T) {
	big := strings.Repeat("x", 2<<20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseChunk(t, big))
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	var got strings.Builder
	err := newTestProvider(srv.URL).Stream(context.Background(), "m1", nil, CompletionOptions{}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got.String() != big {
		t.Fatalf("oversized fragment truncated: got %d chars, want %d", got.Len(), len(big))
	}
}

func TestStreamEmitErrorEndsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseChunk(t, "a"))
		fmt.Fprint(w, sseChunk(t, "b"))
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	calls := 0
	err := newTestProvider(srv.URL).Stream(context.Background(), "m1", nil, CompletionOptions{}, func(chunk string) error {
		calls++
		return fmt.Errorf("consumer gone")
	})
	if err == nil || !strings.Contains(err.Error(), "consumer gone") {
		t.Fatalf("got %v, want the emit error", err)
	}
	if calls != 1 {
		t.Fatalf("emit called %d times after failing, want 1", calls)
	}
}
