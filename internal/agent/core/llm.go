package core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/deepchat/config"
)

// LLMProvider is the chat-completion collaborator. Stream delivers
// text fragments in arrival order via emit until the provider signals
// completion.
type LLMProvider interface {
	Complete(ctx context.Context, model string, messages []Message, opts CompletionOptions) (string, error)
	Stream(ctx context.Context, model string, messages []Message, opts CompletionOptions, emit func(chunk string) error) error
}

// ErrLLMNotConfigured is returned by the offline provider on every
// call; callers degrade per their own policy.
var ErrLLMNotConfigured = errors.New("llm provider not configured")

// OpenAIProvider talks to an OpenAI-compatible chat completions API.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider creates a provider from the LLM config.
func NewOpenAIProvider(cfg config.LLMConfig) *OpenAIProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIProvider{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

func (p *OpenAIProvider) do(ctx context.Context, model string, messages []Message, opts CompletionOptions, stream bool) (*http.Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

// Complete runs one non-streaming chat completion.
func (p *OpenAIProvider) Complete(ctx context.Context, model string, messages []Message, opts CompletionOptions) (string, error) {
	resp, err := p.do(ctx, model, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

// Stream runs a streaming chat completion, emitting delta fragments as
// they arrive. The stream ends on [DONE] or when the body closes.
func (p *OpenAIProvider) Stream(ctx context.Context, model string, messages []Message, opts CompletionOptions, emit func(chunk string) error) error {
	resp, err := p.do(ctx, model, messages, opts, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// ReadString has no line-length cap; SSE events carry fragments of
	// arbitrary size.
	reader := bufio.NewReader(resp.Body)
	for {
		line, readErr := reader.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(trimmed, "data:"))
			if data == "[DONE]" {
				return nil
			}
			if data != "" {
				var chunk struct {
					Choices []struct {
						Delta struct {
							Content string `json:"content"`
						} `json:"delta"`
					} `json:"choices"`
				}
				if err := json.Unmarshal([]byte(data), &chunk); err == nil &&
					len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
					if err := emit(chunk.Choices[0].Delta.Content); err != nil {
						return err
					}
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

// OfflineProvider is selected when no API key is configured. Every
// call fails with ErrLLMNotConfigured so each layer applies its own
// fallback (sentinel summary, static expansion, mock chat reply).
type OfflineProvider struct{}

func (OfflineProvider) Complete(ctx context.Context, model string, messages []Message, opts CompletionOptions) (string, error) {
	return "", ErrLLMNotConfigured
}

func (OfflineProvider) Stream(ctx context.Context, model string, messages []Message, opts CompletionOptions, emit func(chunk string) error) error {
	return ErrLLMNotConfigured
}

// NewLLMProvider selects the provider implementation by configuration.
func NewLLMProvider(cfg config.LLMConfig) LLMProvider {
	if cfg.APIKey == "" {
		return OfflineProvider{}
	}
	return NewOpenAIProvider(cfg)
}
