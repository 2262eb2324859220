// Package provider implements the upstream LLM adapters behind model.Provider.
//
// spurchat talks to one upstream model family at a time (Gemini by default)
// but keeps the adapter layer provider-agnostic so the gateway's retry and
// fallback policy works the same against every backend.
//
// # Responsibilities
//
//   - Build SDK clients from configuration (factory.go, init.go)
//   - Issue single, non-streaming generation calls (one file per provider)
//   - Translate SDK failures into an ErrorKind the gateway can act on
//     without inspecting error text (errors.go)
//   - Construct the shared client lazily, once credentials exist (handle.go)
//
// # Error Classification
//
// Every adapter returns the raw SDK error, wrapped with %w. Classify looks
// for a structured HTTP status first (openai.Error, anthropic.Error,
// genai.APIError, ollama api.StatusError, StatusError) and only falls back
// to message heuristics when no decisive status is available.
//
// # Usage
//
//	cfg := provider.Config{
//	    Type:   provider.ProviderTypeGemini,
//	    Model:  "gemini-flash-latest",
//	    APIKey: key,
//	}
//	p, err := provider.NewProvider(ctx, cfg)
//	if err != nil {
//	    // handle error
//	}
//	text, err := p.Generate(ctx, model.GenerateRequest{Prompt: prompt})
package provider

// Note: The Provider interface is defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeGemini     ProviderType = "gemini"
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // Unused for Ollama
}
