package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLLMCandidatesOverrideFirst(t *testing.T) {
	cfg := LLMConfig{Model: "override", Fallbacks: []string{"a", "", "b"}}
	got := cfg.Candidates()
	want := []string{"override", "a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLLMCandidatesEmptyOverride(t *testing.T) {
	cfg := LLMConfig{Fallbacks: []string{"a"}}
	got := cfg.Candidates()
	if !reflect.DeepEqual(got, []string{"a"}) {
		t.Fatalf("empty override should be skipped, got %v", got)
	}
}

func TestLLMNormalizeDefaults(t *testing.T) {
	cfg := LLMConfig{}.Normalize()
	if cfg.BaseURL != "https://api.groq.com/openai/v1" {
		t.Fatalf("base url default wrong: %s", cfg.BaseURL)
	}
	if len(cfg.Fallbacks) != 4 || cfg.Fallbacks[0] != "llama-3.3-70b-versatile" {
		t.Fatalf("fallback chain default wrong: %v", cfg.Fallbacks)
	}
	if cfg.Temperature != 0.7 || cfg.MaxTokens != 2000 || cfg.Timeout != 60*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLLMNormalizeKeepsExplicitValues(t *testing.T) {
	cfg := LLMConfig{Fallbacks: []string{"only"}, MaxTokens: 100}.Normalize()
	if !reflect.DeepEqual(cfg.Fallbacks, []string{"only"}) || cfg.MaxTokens != 100 {
		t.Fatalf("explicit values should survive Normalize: %+v", cfg)
	}
}

func TestSearchNormalize(t *testing.T) {
	cfg := SearchConfig{}.Normalize()
	if cfg.Provider != "tavily" || cfg.MaxResults != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	clamped := SearchConfig{MaxResults: 50}.Normalize()
	if clamped.MaxResults != 5 {
		t.Fatalf("out-of-range max_results should clamp to 5, got %d", clamped.MaxResults)
	}
}

func TestRedisAddr(t *testing.T) {
	if got := (RedisConfig{}).Addr(); got != "" {
		t.Fatalf("unset host should yield empty addr, got %q", got)
	}
	if got := (RedisConfig{Host: "redis"}).Addr(); got != "redis:6379" {
		t.Fatalf("got %q", got)
	}
	if got := (RedisConfig{Host: "redis", Port: "7000"}).Addr(); got != "redis:7000" {
		t.Fatalf("got %q", got)
	}
}

func TestPostgresDSN(t *testing.T) {
	if got := (PostgresConfig{}).DSN(); got != "" {
		t.Fatalf("unset config should yield empty dsn, got %q", got)
	}
	if got := (PostgresConfig{URL: "postgres://x"}).DSN(); got != "postgres://x" {
		t.Fatalf("url should win, got %q", got)
	}
	cfg := PostgresConfig{Host: "db", User: "u", Password: "p", DBName: "deepchat"}
	want := "postgres://u:p@db:5432/deepchat?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
