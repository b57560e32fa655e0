package llm

import (
	"fmt"
	"os"
)

// DefaultKeyEnv returns the conventional API key variable for a provider type.
func DefaultKeyEnv(providerType string) string {
	switch providerType {
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// NewProvider creates a new LLM provider based on the given provider type and model.
// The API key is read from keyEnv, or from DefaultKeyEnv when keyEnv is empty.
// Supported provider types: "openrouter", "openai".
func NewProvider(providerType string, model string, keyEnv string, opts ...Option) (Provider, error) {
	if keyEnv == "" {
		keyEnv = DefaultKeyEnv(providerType)
	}

	switch providerType {
	case "openrouter", "openai":
		apiKey := os.Getenv(keyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is not set", keyEnv)
		}
		if providerType == "openrouter" {
			return NewOpenRouterProvider(apiKey, model, opts...), nil
		}
		return NewOpenAIProvider(apiKey, model, opts...), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
