package service

import (
	"context"
	"fmt"

	"rentals/internal/config"
)

// Backend sends one prompt to a text-generation service and returns the raw
// model output. Implementations wrap retryable failures with Transient.
type Backend interface {
	Name() string
	Complete(ctx context.Context, prompt string, schema *Schema) (string, error)
}

// NewBackend builds the backend selected by cfg. Without credentials it
// returns a backend that fails every call with ErrBackendDisabled.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	if !cfg.GenerationEnabled() {
		return DisabledBackend{}, nil
	}

	gen := cfg.Generation
	switch gen.Provider {
	case config.ProviderGemini:
		return NewGeminiBackend(ctx, gen.Gemini, gen.Timeout)
	case config.ProviderOpenAI:
		return NewOpenAIBackend(gen.OpenAI, gen.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", gen.Provider)
	}
}

// DisabledBackend stands in when no provider is configured.
type DisabledBackend struct{}

func (DisabledBackend) Name() string { return "disabled" }

func (DisabledBackend) Complete(context.Context, string, *Schema) (string, error) {
	return "", ErrBackendDisabled
}
