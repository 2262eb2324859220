package model

import "context"

// Provider abstracts the upstream LLM implementations (Gemini, OpenAI,
// OpenRouter, Anthropic, Ollama) behind provider-agnostic types.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: the gateway depends on model, and provider implementations
// import model without the gateway importing the provider package.
type Provider interface {
	// Name returns the provider ID ("gemini", "openai", ...).
	Name() string

	// DefaultModel returns the model used when a request does not name one.
	DefaultModel() string

	// Generate sends a single prompt and returns the complete response text.
	// Implementations return the raw SDK error so callers can classify it.
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ListModels returns models available for text generation.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Ping checks if the provider is reachable with the configured credentials.
	Ping(ctx context.Context) error
}

// GenerateRequest is one non-streaming generation call.
type GenerateRequest struct {
	Model  string
	Prompt string
	// MaxOutputTokens is advisory. Providers that require a limit use it,
	// others ignore it.
	MaxOutputTokens int
}

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	Name         string // Display name (vendor prefix stripped for OpenRouter, "models/" stripped for Gemini)
	Size         int64
	Provider     string // Provider ID: "gemini", "ollama", "openrouter", "openai", "anthropic"
	InternalName string // Full API name
}
