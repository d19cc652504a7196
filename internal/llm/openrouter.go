package llm

import (
	"fmt"
	"time"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider is the OpenAI implementation pointed at the
// OpenRouter endpoint. Model IDs there are already namespaced
// ("google/...", "anthropic/..."), so no alias table applies and the
// configured ID is used verbatim.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider for the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig, timeout time.Duration) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	return &OpenRouterProvider{
		OpenAIProvider: &OpenAIProvider{
			client: newOpenAIClient(cfg.APIKey, baseURL, timeout),
			model:  cfg.Model,
		},
	}, nil
}
