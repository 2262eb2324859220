package provider

import (
	"context"
	"errors"
	"testing"

	"spurchat/model"
)

// Compile-time interface checks.
var (
	_ model.Provider = (*GeminiProvider)(nil)
	_ model.Provider = (*OllamaProvider)(nil)
	_ model.Provider = (*OpenAIProvider)(nil)
	_ model.Provider = (*OpenRouterProvider)(nil)
	_ model.Provider = (*AnthropicProvider)(nil)
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		wantName    string
	}{
		{
			name:     "ollama provider with defaults",
			config:   Config{Type: ProviderTypeOllama},
			wantName: "ollama",
		},
		{
			name: "ollama provider with custom config",
			config: Config{
				Type:    ProviderTypeOllama,
				BaseURL: "http://localhost:11434",
				Model:   "llama3.1",
			},
			wantName: "ollama",
		},
		{
			name: "gemini provider",
			config: Config{
				Type:   ProviderTypeGemini,
				Model:  "gemini-flash-latest",
				APIKey: "test-key",
			},
			wantName: "gemini",
		},
		{
			name: "openai provider",
			config: Config{
				Type:    ProviderTypeOpenAI,
				BaseURL: "https://api.openai.com/v1",
				Model:   "gpt-4o-mini",
				APIKey:  "test-key",
			},
			wantName: "openai",
		},
		{
			name: "anthropic provider",
			config: Config{
				Type:    ProviderTypeAnthropic,
				BaseURL: "https://api.anthropic.com",
				APIKey:  "test-key",
			},
			wantName: "anthropic",
		},
		{
			name: "openrouter provider",
			config: Config{
				Type:   ProviderTypeOpenRouter,
				Model:  "google/gemini-flash-1.5",
				APIKey: "test-key",
			},
			wantName: "openrouter",
		},
		{
			name:        "unknown provider type",
			config:      Config{Type: ProviderType("unknown")},
			expectError: true,
		},
		{
			name:        "invalid ollama URL",
			config:      Config{Type: ProviderTypeOllama, BaseURL: "://bad"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.config)

			if (err != nil) != tt.expectError {
				t.Fatalf("NewProvider() error = %v, expectError %v", err, tt.expectError)
			}
			if tt.expectError {
				if p != nil {
					t.Error("NewProvider() should return nil provider on error")
				}
				return
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
			if p.DefaultModel() == "" {
				t.Error("DefaultModel() returned empty string")
			}
		})
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	for _, typ := range []ProviderType{
		ProviderTypeGemini,
		ProviderTypeOpenAI,
		ProviderTypeAnthropic,
		ProviderTypeOpenRouter,
	} {
		t.Run(string(typ), func(t *testing.T) {
			_, err := NewProvider(context.Background(), Config{Type: typ})
			if !errors.Is(err, ErrMissingCredentials) {
				t.Fatalf("NewProvider() error = %v, want ErrMissingCredentials", err)
			}
			if Classify(err) != KindAuth {
				t.Errorf("Classify() = %v, want auth", Classify(err))
			}
		})
	}
}

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"gemini", ProviderTypeGemini},
		{"google", ProviderTypeGemini},
		{"ollama", ProviderTypeOllama},
		{"openrouter", ProviderTypeOpenRouter},
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"custom", ProviderType("custom")},
	}

	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRequiresAPIKey(t *testing.T) {
	if RequiresAPIKey(ProviderTypeOllama) {
		t.Error("ollama should not require an API key")
	}
	if !RequiresAPIKey(ProviderTypeGemini) {
		t.Error("gemini should require an API key")
	}
}
