package provider

import (
	"context"
	"fmt"

	"spurchat/model"
)

// NewProvider creates a provider based on configuration.
//
// This is the centralized factory function for creating any provider type.
// It dispatches to the provider constructor named by Config.Type.
//
// Returns an error if:
//   - The provider type is unknown
//   - A cloud provider has no API key (wraps ErrMissingCredentials)
//   - The provider-specific constructor fails (e.g., invalid URL)
//
// Example:
//
//	p, err := provider.NewProvider(ctx, provider.Config{
//	    Type:   provider.ProviderTypeAnthropic,
//	    Model:  "claude-sonnet-4-5-20250929",
//	    APIKey: "sk-ant-...",
//	})
func NewProvider(ctx context.Context, cfg Config) (model.Provider, error) {
	switch cfg.Type {
	case ProviderTypeGemini:
		return NewGeminiProvider(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Model)
	case ProviderTypeOpenRouter:
		return NewOpenRouterProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeOpenAI:
		return NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case ProviderTypeAnthropic:
		return NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// MapProviderIDToType converts a config provider ID to a factory ProviderType.
//
// "google" is accepted as an alias for Gemini. For unknown IDs the ID is
// returned as-is and the factory reports the error.
func MapProviderIDToType(id string) ProviderType {
	switch id {
	case "gemini", "google":
		return ProviderTypeGemini
	case "ollama":
		return ProviderTypeOllama
	case "openrouter":
		return ProviderTypeOpenRouter
	case "openai":
		return ProviderTypeOpenAI
	case "anthropic":
		return ProviderTypeAnthropic
	default:
		return ProviderType(id)
	}
}

// RequiresAPIKey reports whether the provider type needs credentials.
func RequiresAPIKey(t ProviderType) bool {
	return t != ProviderTypeOllama
}
