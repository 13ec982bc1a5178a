package core

import (
	"context"
	"log"

	"github.com/mohammad-safakhou/deepchat/config"
	"github.com/mohammad-safakhou/deepchat/internal/agent/telemetry"
)

// FallbackCaller tries candidate models in order against the LLM
// provider and short-circuits on the first success.
type FallbackCaller struct {
	provider   LLMProvider
	candidates []string
	telemetry  *telemetry.Telemetry
	logger     *log.Logger
}

// NewFallbackCaller builds a caller over the configured candidate
// chain: the caller-supplied override first, then the preference list.
func NewFallbackCaller(cfg config.LLMConfig, provider LLMProvider, tele *telemetry.Telemetry, logger *log.Logger) *FallbackCaller {
	if logger == nil {
		logger = log.New(log.Writer(), "[LLM] ", log.LstdFlags)
	}
	return &FallbackCaller{
		provider:   provider,
		candidates: cfg.Candidates(),
		telemetry:  tele,
		logger:     logger,
	}
}

// Complete returns the first successful candidate's output. When every
// candidate fails it returns a ProviderExhaustedError carrying the
// most recently attempted candidate's error.
func (f *FallbackCaller) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	var lastErr error
	for _, model := range f.candidates {
		out, err := f.provider.Complete(ctx, model, messages, opts)
		f.telemetry.RecordLLMAttempt(model, err)
		if err == nil {
			return out, nil
		}
		lastErr = err
		f.logger.Printf("model failed (%s): %v", model, err)
	}
	return "", &ProviderExhaustedError{Last: lastErr}
}

// Stream streams from the first candidate that starts producing
// output. A candidate that fails before emitting anything is skipped;
// once fragments have been emitted, an error ends the stream since a
// partially delivered answer cannot be retried on another model.
func (f *FallbackCaller) Stream(ctx context.Context, messages []Message, opts CompletionOptions, emit func(chunk string) error) error {
	var lastErr error
	for _, model := range f.candidates {
		emitted := false
		err := f.provider.Stream(ctx, model, messages, opts, func(chunk string) error {
			emitted = true
			return emit(chunk)
		})
		f.telemetry.RecordLLMAttempt(model, err)
		if err == nil {
			return nil
		}
		if emitted {
			return err
		}
		lastErr = err
		f.logger.Printf("model failed (%s): %v", model, err)
	}
	return &ProviderExhaustedError{Last: lastErr}
}
