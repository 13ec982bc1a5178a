package core

import (
	"context"
	"log"
	"strings"
)

// SummaryUnavailable is returned in place of a summary whenever the
// provider call fails. Summarization failures never propagate.
const SummaryUnavailable = "Summary unavailable due to an error."

// Summarizer produces a concise structured summary of arbitrary text.
type Summarizer struct {
	fb     *FallbackCaller
	logger *log.Logger
}

func NewSummarizer(fb *FallbackCaller, logger *log.Logger) *Summarizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SUMMARIZE] ", log.LstdFlags)
	}
	return &Summarizer{fb: fb, logger: logger}
}

// Summarize always returns text: either the generated summary or the
// SummaryUnavailable sentinel.
func (s *Summarizer) Summarize(ctx context.Context, text string) string {
	messages := []Message{
		{Role: RoleSystem, Content: "You are a concise summarizer. Provide a clear, short, structured summary of the content below."},
		{Role: RoleUser, Content: text},
	}
	out, err := s.fb.Complete(ctx, messages, CompletionOptions{Temperature: 0.6, MaxTokens: 400})
	if err != nil {
		s.logger.Printf("summarization failed: %v", err)
		return SummaryUnavailable
	}
	if strings.TrimSpace(out) == "" {
		return "No summary generated."
	}
	return out
}
