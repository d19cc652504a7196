package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and tunes the provider stack.
type Config struct {
	// Provider picks the backend: "anthropic", "openai", "gemini",
	// "openrouter", or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one HTTP round trip to the provider. Retries each
	// get their own.
	Timeout time.Duration
}

// AnthropicConfig configures the Anthropic backend.
type AnthropicConfig struct {
	APIKey string
	Model  string // alias or exact model ID; default "claude-haiku"
}

// OpenAIConfig configures the OpenAI backend.
type OpenAIConfig struct {
	APIKey  string
	Model   string // alias or exact model ID; default "gpt-mini"
	BaseURL string // optional override for compatible endpoints
}

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey string
	Model  string // alias or exact model ID; default "gemini-flash"
}

// OpenRouterConfig configures the OpenRouter backend. Models there are
// namespaced ("google/...", "anthropic/..."), so no aliases apply.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // default "https://openrouter.ai/api/v1"
}

// RetryConfig tunes the backoff middleware.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the stock setup: Anthropic on the fast cheap
// model, three attempts with exponential backoff, 30s per request.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.5-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv overlays LERNPATH_* environment variables on the
// defaults. Unset variables leave the default in place.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("LERNPATH_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("LERNPATH_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("LERNPATH_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("LERNPATH_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("LERNPATH_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("LERNPATH_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("LERNPATH_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("LERNPATH_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if k := os.Getenv("LERNPATH_OPENROUTER_API_KEY"); k != "" {
		cfg.OpenRouter.APIKey = k
	}
	if m := os.Getenv("LERNPATH_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	return cfg
}

// DiscoverConfig probes the bare API key variables each vendor's own
// tooling sets (GEMINI_API_KEY, OPENAI_API_KEY, ...) and returns a
// config for the first one found. Lets the tutor run without any
// LERNPATH_* setup at all.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("LERNPATH_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("LERNPATH_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("LERNPATH_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("LERNPATH_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// Needs no key.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
