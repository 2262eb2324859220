package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"spurchat/config"
	"spurchat/model"
)

// ConfigFor assembles the factory Config for a provider ID from the
// application configuration. The model is only set for the active provider.
func ConfigFor(cfg *config.Config, providerID string) Config {
	pc := cfg.Provider(providerID)
	c := Config{
		Type:    MapProviderIDToType(providerID),
		BaseURL: pc.BaseURL,
		APIKey:  cfg.APIKey(providerID),
	}
	if providerID == cfg.LLM.Provider {
		c.Model = cfg.LLM.Model
		if cfg.LLM.BaseURL != "" {
			c.BaseURL = cfg.LLM.BaseURL
		}
	}
	return c
}

// NewActiveHandle returns the lazily built handle for the configured
// provider. Missing credentials surface on first use as an error wrapping
// ErrMissingCredentials, not at startup.
func NewActiveHandle(cfg *config.Config) *Handle {
	return NewHandle(func(ctx context.Context) (model.Provider, error) {
		pc := ConfigFor(cfg, cfg.LLM.Provider)
		if RequiresAPIKey(pc.Type) && pc.APIKey == "" {
			return nil, missingKeyError(cfg.LLM.Provider)
		}
		return NewProvider(ctx, pc)
	})
}

func missingKeyError(providerID string) error {
	vars := config.APIKeyEnvVars(providerID)
	switch len(vars) {
	case 0:
		return fmt.Errorf("%s API key not configured: %w", providerID, ErrMissingCredentials)
	case 1:
		return fmt.Errorf("%s API key not configured. Please set the %s environment variable: %w",
			providerID, vars[0], ErrMissingCredentials)
	default:
		return fmt.Errorf("%s API key not configured. Please set %s or %s environment variable: %w",
			providerID, vars[0], vars[1], ErrMissingCredentials)
	}
}

// InitializeProviders creates every enabled provider that has credentials.
//
// It backs the "models --all" listing. Providers that cannot be built are
// logged and skipped so one misconfigured backend does not hide the rest.
// The active provider is always attempted, even if not marked enabled.
func InitializeProviders(ctx context.Context, cfg *config.Config, logger zerolog.Logger) map[string]model.Provider {
	providers := make(map[string]model.Provider)

	ids := []string{cfg.LLM.Provider}
	for _, pc := range cfg.Providers {
		if pc.Enabled && pc.ID != cfg.LLM.Provider {
			ids = append(ids, pc.ID)
		}
	}

	for _, id := range ids {
		pc := ConfigFor(cfg, id)
		if RequiresAPIKey(pc.Type) && pc.APIKey == "" {
			logger.Debug().Str("provider", id).Msg("skipping provider without credentials")
			continue
		}

		p, err := NewProvider(ctx, pc)
		if err != nil {
			logger.Warn().Err(err).Str("provider", id).Msg("failed to initialize provider")
			continue
		}

		providers[id] = p
		logger.Debug().Str("provider", id).Str("type", string(pc.Type)).Msg("initialized provider")
	}

	return providers
}
