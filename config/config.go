package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ServerConfig struct {
	Port        int    `toml:"port"`
	FrontendURL string `toml:"frontend_url"`
	Environment string `toml:"environment"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	FallbackModel  string `toml:"fallback_model"`
	FastTierMarker string `toml:"fast_tier_marker"`
	BaseURL        string `toml:"base_url,omitempty"`
	MaxHistory     int    `toml:"max_history"`
	MaxTokens      int    `toml:"max_tokens"`
	MaxAttempts    int    `toml:"max_attempts"`
	RequestTimeout string `toml:"request_timeout"`
}

type ChatConfig struct {
	MaxMessageLength int `toml:"max_message_length"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type UserConfig struct {
	Server    ServerConfig     `toml:"server"`
	Database  DatabaseConfig   `toml:"database"`
	LLM       LLMConfig        `toml:"llm"`
	Chat      ChatConfig       `toml:"chat"`
	Log       LogConfig        `toml:"log"`
	Providers []ProviderConfig `toml:"providers"`
}

type Config struct {
	DataDirectory string
	Server        ServerConfig
	Database      DatabaseConfig
	LLM           LLMConfig
	Chat          ChatConfig
	Log           LogConfig
	Providers     []ProviderConfig

	CredentialStore *CredentialStore
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

// DatabasePath returns the SQLite file location, defaulting to chatbot.db
// inside the data directory.
func (c *Config) DatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath(c.DataDir())
	}
	return ExpandPath(c.Database.Path)
}

// RequestTimeout returns the per-attempt upstream timeout.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.RequestTimeout)
	if err != nil || d <= 0 {
		return DefaultRequestTimeout
	}
	return d
}

// IsDevelopment reports whether CORS should accept any origin.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// APIKey resolves the credential for a provider. Environment variables win
// over the credentials file.
func (c *Config) APIKey(providerID string) string {
	providerID = NormalizeProviderID(providerID)
	for _, name := range apiKeyEnvVars[providerID] {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	if c.CredentialStore != nil {
		return c.CredentialStore.Get(providerID)
	}
	return ""
}

// IsPlaceholderKey reports whether key looks like an unedited template value.
func IsPlaceholderKey(key string) bool {
	return strings.Contains(key, "your_")
}

var apiKeyEnvVars = map[string][]string{
	"gemini":     {"GEMINI_API_KEY", "GOOGLE_AI_API_KEY"},
	"openai":     {"OPENAI_API_KEY"},
	"anthropic":  {"ANTHROPIC_API_KEY"},
	"openrouter": {"OPENROUTER_API_KEY"},
}

// APIKeyEnvVars returns the environment variables consulted for a provider.
func APIKeyEnvVars(providerID string) []string {
	return apiKeyEnvVars[NormalizeProviderID(providerID)]
}

// NormalizeProviderID resolves provider aliases ("google" is gemini).
func NormalizeProviderID(providerID string) string {
	id := strings.ToLower(strings.TrimSpace(providerID))
	if id == "google" {
		return "gemini"
	}
	return id
}

// dropForeignModelDefaults clears the built-in gemini model names when
// another provider is active, so the provider's own default model is used.
func (c *Config) dropForeignModelDefaults() {
	if NormalizeProviderID(c.LLM.Provider) == DefaultProvider {
		return
	}
	if c.LLM.Model == DefaultModel {
		c.LLM.Model = ""
	}
	if c.LLM.FallbackModel == DefaultFallbackModel {
		c.LLM.FallbackModel = ""
	}
}

func (c *Config) applyEnvOverrides() error {
	if dataDir := os.Getenv("SPURCHAT_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Port = n
	}
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		c.Server.FrontendURL = url
	}
	if env := firstEnv("SPURCHAT_ENV", "NODE_ENV"); env != "" {
		c.Server.Environment = env
	}
	if path := os.Getenv("DATABASE_PATH"); path != "" {
		c.Database.Path = path
	}
	if p := os.Getenv("SPURCHAT_PROVIDER"); p != "" {
		c.LLM.Provider = p
	}
	if m := firstEnv("SPURCHAT_MODEL", "GEMINI_MODEL"); m != "" {
		c.LLM.Model = m
	}
	if m := os.Getenv("SPURCHAT_FALLBACK_MODEL"); m != "" {
		c.LLM.FallbackModel = m
	}
	if u := os.Getenv("SPURCHAT_BASE_URL"); u != "" {
		c.LLM.BaseURL = u
	}
	if err := envInt("MAX_MESSAGES_PER_CONVERSATION", &c.LLM.MaxHistory); err != nil {
		return err
	}
	if err := envInt("MAX_TOKENS", &c.LLM.MaxTokens); err != nil {
		return err
	}
	if lvl := os.Getenv("SPURCHAT_LOG_LEVEL"); lvl != "" {
		c.Log.Level = lvl
	}
	if CheckDebug() {
		c.Log.Level = "debug"
	}
	if f := os.Getenv("SPURCHAT_LOG_FORMAT"); f != "" {
		c.Log.Format = f
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid %s %q: must be a positive integer", name, v)
	}
	*dst = n
	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("SPURCHAT_DEBUG")
	return debug == "true" || debug == "1"
}

// Load builds the effective configuration: defaults, then settings.toml
// (data directory), then <data_dir>/config.toml, then environment
// variables. Missing files are created from templates.
func Load() (*Config, error) {
	cfg := Defaults()

	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	if systemCfg.DataDirectory != "" {
		cfg.DataDirectory = systemCfg.DataDirectory
	}
	if dataDir := os.Getenv("SPURCHAT_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.mergeUser(userCfg)

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.dropForeignModelDefaults()

	store := NewCredentialStore(cfg.DataDir())
	if err := store.Load(); err != nil {
		return nil, err
	}
	cfg.CredentialStore = store

	return cfg, nil
}

// mergeUser copies every non-zero user setting over the defaults.
func (c *Config) mergeUser(u *UserConfig) {
	if u.Server.Port != 0 {
		c.Server.Port = u.Server.Port
	}
	if u.Server.FrontendURL != "" {
		c.Server.FrontendURL = u.Server.FrontendURL
	}
	if u.Server.Environment != "" {
		c.Server.Environment = u.Server.Environment
	}
	if u.Database.Path != "" {
		c.Database.Path = u.Database.Path
	}
	mergeString(&c.LLM.Provider, u.LLM.Provider)
	mergeString(&c.LLM.Model, u.LLM.Model)
	mergeString(&c.LLM.FallbackModel, u.LLM.FallbackModel)
	mergeString(&c.LLM.FastTierMarker, u.LLM.FastTierMarker)
	mergeString(&c.LLM.BaseURL, u.LLM.BaseURL)
	mergeString(&c.LLM.RequestTimeout, u.LLM.RequestTimeout)
	mergeInt(&c.LLM.MaxHistory, u.LLM.MaxHistory)
	mergeInt(&c.LLM.MaxTokens, u.LLM.MaxTokens)
	mergeInt(&c.LLM.MaxAttempts, u.LLM.MaxAttempts)
	mergeInt(&c.Chat.MaxMessageLength, u.Chat.MaxMessageLength)
	mergeString(&c.Log.Level, u.Log.Level)
	mergeString(&c.Log.Format, u.Log.Format)
	if len(u.Providers) > 0 {
		c.Providers = u.Providers
	}
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
