package core

import (
	"fmt"
	"strings"

	searchmodels "github.com/mohammad-safakhou/deepchat/tools/web_search/models"
)

// Message roles in conversation order.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a conversation. Immutable once created.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolFlags is the caller's declarative tool selection. All false by
// default.
type ToolFlags struct {
	WebSearch       bool `json:"webSearch"`
	Summarization   bool `json:"summarization"`
	ImageGeneration bool `json:"imageGeneration"`
	DeepResearch    bool `json:"deepResearch"`
}

// File is an attachment on an agent request. Accepted but not
// processed by the agent pipeline.
type File struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    string `json:"size"`
	Content string `json:"content,omitempty"`
}

// AgentRequest is the single operation the core exposes.
type AgentRequest struct {
	Messages []Message `json:"messages"`
	Tools    ToolFlags `json:"tools"`
	Files    []File    `json:"files,omitempty"`
}

// LatestUserPrompt returns the content of the most recent user
// message, trimmed. Falls back to "Hello" when no user turn exists.
func (r AgentRequest) LatestUserPrompt() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			if p := strings.TrimSpace(r.Messages[i].Content); p != "" {
				return p
			}
		}
	}
	return "Hello"
}

// SearchBlock groups the results of one sub-query.
type SearchBlock struct {
	Query   string                `json:"query"`
	Results []searchmodels.Result `json:"results"`
}

// CompletionOptions tune a single LLM call.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// ProviderExhaustedError signals that every candidate model failed.
// Last holds the most recently attempted candidate's error.
type ProviderExhaustedError struct {
	Last error
}

func (e *ProviderExhaustedError) Error() string {
	return fmt.Sprintf("all candidate models failed: %v", e.Last)
}

func (e *ProviderExhaustedError) Unwrap() error { return e.Last }

// MalformedRequestError rejects invalid input before any provider call.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string { return e.Reason }
