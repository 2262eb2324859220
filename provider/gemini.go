package provider

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"spurchat/model"
)

const defaultGeminiModel = "gemini-flash-latest"

// GeminiProvider implements the Provider interface against the Gemini API
// using the official google.golang.org/genai SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider instance.
//
// Parameters:
//   - baseURL: optional API endpoint override (empty uses the SDK default)
//   - apiKey: Gemini API key (required)
//   - model: default model (default: "gemini-flash-latest")
func NewGeminiProvider(ctx context.Context, baseURL, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required: %w", ErrMissingCredentials)
	}
	if model == "" {
		model = defaultGeminiModel
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Name() string { return string(ProviderTypeGemini) }

func (p *GeminiProvider) DefaultModel() string { return p.model }

// Generate implements Provider.Generate with a single GenerateContent call.
// The output hint is not forwarded: replies are bounded by the prompt's
// "concise" guideline rather than truncated mid-sentence.
func (p *GeminiProvider) Generate(ctx context.Context, req model.GenerateRequest) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}

	res, err := p.client.Models.GenerateContent(ctx, modelName, genai.Text(req.Prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	return res.Text(), nil
}

// ListModels returns the models that support generateContent.
func (p *GeminiProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	var result []model.ModelInfo
	for m, err := range p.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to list Gemini models: %w", err)
		}
		if !supportsAction(m.SupportedActions, "generateContent") {
			continue
		}
		result = append(result, model.ModelInfo{
			Name:         stripGeminiPrefix(m.Name),
			InternalName: m.Name,
			Provider:     "gemini",
		})
	}
	return result, nil
}

// Ping implements Provider.Ping by fetching the default model's metadata.
func (p *GeminiProvider) Ping(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, p.model, nil); err != nil {
		return fmt.Errorf("Gemini ping failed: %w", err)
	}
	return nil
}

// stripGeminiPrefix turns "models/gemini-2.5-flash" into "gemini-2.5-flash".
func stripGeminiPrefix(name string) string {
	return strings.TrimPrefix(name, "models/")
}
