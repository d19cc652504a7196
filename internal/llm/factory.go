package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/lernpath/internal/store"
)

// NewProvider builds the configured provider wrapped in the standard
// middleware chain: caller, then retry, then event logging, then the
// provider itself. Logging sits inside retry so every attempt is
// journaled, not just the last.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic, cfg.Timeout)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI, cfg.Timeout)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini, cfg.Timeout)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter, cfg.Timeout)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, cfg.Provider, eventRepo), cfg.Retry), nil
}
