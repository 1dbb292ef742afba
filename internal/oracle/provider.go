package oracle

import (
	"context"
	"fmt"
	"time"
)

// Provider names a chat-model backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Settings selects and configures a provider.
type Settings struct {
	Provider   Provider
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// NewCompleter builds the Completer for s.Provider.
func NewCompleter(ctx context.Context, s Settings) (Completer, error) {
	switch s.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:  s.APIKey,
			Model:   s.Model,
			Timeout: s.Timeout,
		})
	case ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			APIKey:     s.APIKey,
			BaseURL:    s.BaseURL,
			Model:      s.Model,
			Timeout:    s.Timeout,
			MaxRetries: s.MaxRetries,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, s.Provider)
	}
}
