package config

import (
	"path/filepath"
	"time"
)

const (
	DefaultPort             = 3001
	DefaultEnvironment      = "production"
	DefaultProvider         = "gemini"
	DefaultModel            = "gemini-flash-latest"
	DefaultFallbackModel    = "gemini-flash-latest"
	DefaultFastTierMarker   = "flash"
	DefaultMaxHistory       = 50
	DefaultMaxTokens        = 500
	DefaultMaxAttempts      = 3
	DefaultRequestTimeout   = 30 * time.Second
	DefaultMaxMessageLength = 2000
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/spurchat",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Server: ServerConfig{
			Port:        DefaultPort,
			Environment: DefaultEnvironment,
		},
		LLM: LLMConfig{
			Provider:       DefaultProvider,
			Model:          DefaultModel,
			FallbackModel:  DefaultFallbackModel,
			FastTierMarker: DefaultFastTierMarker,
			MaxHistory:     DefaultMaxHistory,
			MaxTokens:      DefaultMaxTokens,
			MaxAttempts:    DefaultMaxAttempts,
			RequestTimeout: DefaultRequestTimeout.String(),
		},
		Chat: ChatConfig{
			MaxMessageLength: DefaultMaxMessageLength,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Providers: DefaultProviders(),
	}
}

// Defaults returns a fully populated Config without touching the filesystem.
func Defaults() *Config {
	u := DefaultUserConfig()
	return &Config{
		DataDirectory: DefaultSystemConfig().DataDirectory,
		Server:        u.Server,
		Database:      u.Database,
		LLM:           u.LLM,
		Chat:          u.Chat,
		Log:           u.Log,
		Providers:     u.Providers,
	}
}

func DefaultDatabasePath(dataDir string) string {
	return filepath.Join(dataDir, "chatbot.db")
}

func GenerateSystemConfigTemplate() string {
	return `# spurchat System Configuration
# Location: ~/.config/spurchat/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the database, credentials and user config are stored
data_directory = "~/.local/share/spurchat"
`
}

func GenerateUserConfigTemplate() string {
	return `# spurchat User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io
# Environment variables (PORT, GEMINI_MODEL, DATABASE_PATH, ...) override these values.

[server]
port = 3001
# Extra origin allowed by CORS (e.g. your deployed frontend)
frontend_url = ""
# "development" allows every origin; anything else uses the allow-list
environment = "production"

[database]
# Defaults to <data_directory>/chatbot.db
path = ""

[llm]
# One of: gemini, openai, anthropic, openrouter, ollama
provider = "gemini"
# Empty uses the provider's default model. The gemini defaults below are
# ignored when another provider is selected.
model = "gemini-flash-latest"
# Used once when the primary fast-tier model is missing or rate limited
fallback_model = "gemini-flash-latest"
fast_tier_marker = "flash"
# Most recent turns included in each prompt
max_history = 50
# Advisory output limit
max_tokens = 500
max_attempts = 3
request_timeout = "30s"

[chat]
max_message_length = 2000

[log]
# trace, debug, info, warn, error
level = "info"
# auto, console, json
format = "auto"

# API keys live in credentials.toml next to this file, or in
# GEMINI_API_KEY / OPENAI_API_KEY / ANTHROPIC_API_KEY / OPENROUTER_API_KEY.

[[providers]]
id = "gemini"
name = "Google Gemini"
enabled = true

[[providers]]
id = "openai"
name = "OpenAI"
base_url = "https://api.openai.com/v1"
enabled = false

[[providers]]
id = "anthropic"
name = "Anthropic"
base_url = "https://api.anthropic.com"
enabled = false

[[providers]]
id = "openrouter"
name = "OpenRouter"
base_url = "https://openrouter.ai/api/v1"
enabled = false

[[providers]]
id = "ollama"
name = "Ollama"
base_url = "http://localhost:11434"
enabled = false
`
}
