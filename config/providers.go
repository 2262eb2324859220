package config

import (
	"fmt"
)

// ProviderConfig is one [[providers]] entry of the user config.
type ProviderConfig struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url,omitempty"`
	Enabled bool   `toml:"enabled"`
}

// KnownProviders lists every provider ID the factory can build.
var KnownProviders = []string{"gemini", "openai", "anthropic", "openrouter", "ollama"}

func DefaultProviders() []ProviderConfig {
	providers := make([]ProviderConfig, 0, len(KnownProviders))
	for _, id := range KnownProviders {
		providers = append(providers, ProviderConfig{
			ID:      id,
			Name:    getProviderDisplayName(id),
			BaseURL: getProviderDefaultBaseURL(id),
			Enabled: id == DefaultProvider,
		})
	}
	return providers
}

// Provider returns the configured entry for id, falling back to defaults
// when the user config does not list it.
func (c *Config) Provider(id string) ProviderConfig {
	id = NormalizeProviderID(id)
	for _, p := range c.Providers {
		if p.ID == id {
			if p.BaseURL == "" {
				p.BaseURL = getProviderDefaultBaseURL(id)
			}
			return p
		}
	}
	return ProviderConfig{
		ID:      id,
		Name:    getProviderDisplayName(id),
		BaseURL: getProviderDefaultBaseURL(id),
	}
}

// SetCredential stores an API key for a provider in credentials.toml.
func SetCredential(dataDir, providerID, apiKey string) error {
	if !isKnownProvider(providerID) {
		return fmt.Errorf("unknown provider: %s", providerID)
	}
	if providerID == "ollama" {
		return fmt.Errorf("ollama does not use an API key")
	}

	store := NewCredentialStore(dataDir)
	if err := store.Load(); err != nil {
		return err
	}
	if apiKey == "" {
		store.Delete(providerID)
	} else {
		store.Set(providerID, apiKey)
	}
	if err := store.Save(); err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}
	return nil
}

func isKnownProvider(id string) bool {
	for _, known := range KnownProviders {
		if known == id {
			return true
		}
	}
	return false
}

// getProviderDisplayName returns the display name for a provider
func getProviderDisplayName(providerID string) string {
	switch providerID {
	case "gemini":
		return "Google Gemini"
	case "ollama":
		return "Ollama"
	case "openrouter":
		return "OpenRouter"
	case "anthropic":
		return "Anthropic"
	case "openai":
		return "OpenAI"
	default:
		return providerID
	}
}

// getProviderDefaultBaseURL returns the default base URL for a provider
func getProviderDefaultBaseURL(providerID string) string {
	switch providerID {
	case "ollama":
		return "http://localhost:11434"
	case "openrouter":
		return "https://openrouter.ai/api/v1"
	case "anthropic":
		return "https://api.anthropic.com"
	case "openai":
		return "https://api.openai.com/v1"
	default:
		return ""
	}
}
