// Package llm provides completion clients for the supported language
// model providers behind a single capability interface.
package llm

import (
	"context"
	"fmt"
)

// Provider name keys used in requests and configuration.
const (
	ProviderOpenAI      = "openai"
	ProviderAnthropic   = "anthropic"
	ProviderHuggingFace = "huggingface"
)

// Client is the capability every provider backend implements: one
// completion call carrying an optional system prompt and a user prompt,
// returning the response text. Clients never retry internally; retry
// policy belongs to the caller.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Completer is the provider-selecting surface consumed by the pipeline.
// *Registry is the production implementation; tests inject scripted
// fakes because real model output is not deterministically testable.
type Completer interface {
	Complete(ctx context.Context, provider, system, user string) (string, error)
}

// ProviderError wraps any transport, authentication, or response-shape
// failure from a provider, tagged with the provider name.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
