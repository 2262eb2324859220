package provider

import (
	"context"
	"fmt"

	"spurchat/model"
	"spurchat/ollama"
)

// OllamaProvider wraps the ollama.Client to implement the Provider interface.
//
// It lets the support bot run against a local model with no API key, which
// is handy for development and for exercising the gateway offline.
type OllamaProvider struct {
	client *ollama.Client
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (e.g., "http://localhost:11434").
//     If empty, defaults to "http://localhost:11434".
//   - model: The model name to use (e.g., "llama3.1:latest").
//     If empty, defaults to "llama3.1:latest".
//
// Returns an error if the baseURL is invalid.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	client, err := ollama.NewClient(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

func (p *OllamaProvider) Name() string { return string(ProviderTypeOllama) }

func (p *OllamaProvider) DefaultModel() string { return p.client.Model() }

// Generate implements Provider.Generate via /api/generate without streaming.
// Errors keep api.StatusError in their chain for classification.
func (p *OllamaProvider) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	text, err := p.client.Generate(ctx, req.Model, req.Prompt, req.MaxOutputTokens)
	if err != nil {
		return "", fmt.Errorf("Ollama generate: %w", err)
	}
	return text, nil
}

// ListModels implements Provider.ListModels.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	return ConvertOllamaModels(models), nil
}

// Ping implements Provider.Ping (direct passthrough).
//
// Checks if the Ollama server is reachable. Returns an error if the server
// is not reachable or does not answer within five seconds.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}
