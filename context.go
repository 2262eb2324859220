package main

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"spurchat/chat"
	"spurchat/config"
	"spurchat/gateway"
	"spurchat/provider"
	"spurchat/storage"
)

type commandContext struct {
	dataDirFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(dataDirFlag *string) *commandContext {
	return &commandContext{dataDirFlag: dataDirFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if c.dataDirFlag != nil {
			if dir := strings.TrimSpace(*c.dataDirFlag); dir != "" {
				if err := os.Setenv("SPURCHAT_DATA_DIR", dir); err != nil {
					c.configErr = err
					return
				}
			}
		}
		cfg, err := config.Load()
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the process logger on stderr, teeing to debug.log when
// SPURCHAT_DEBUG is set. The returned func closes the debug log.
func (c *commandContext) newLogger() (zerolog.Logger, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}

	debugFile, err := config.OpenDebugLog(cfg.DataDir())
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	if debugFile == nil {
		return config.NewLogger(cfg.Log, os.Stderr), func() {}, nil
	}

	logger := config.NewLogger(cfg.Log, os.Stderr, debugFile)
	return logger, func() { _ = debugFile.Close() }, nil
}

// withStore opens the SQLite store for the duration of fn.
func (c *commandContext) withStore(logger zerolog.Logger, fn func(*storage.SQLiteStore) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := storage.OpenSQLite(cfg.DatabasePath(), logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// newService wires store, provider handle, gateway and orchestrator the same
// way for the server and the one-shot chat command.
func (c *commandContext) newService(store storage.ConversationStore, handle *provider.Handle, logger zerolog.Logger) (*chat.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	gw := gateway.New(handle, append(gateway.OptionsFromConfig(cfg), gateway.WithLogger(logger))...)
	return chat.NewService(store, gw,
		chat.WithLogger(logger),
		chat.WithMaxMessageLength(cfg.Chat.MaxMessageLength),
	), nil
}

// warnCredentials logs when the active provider has no usable key. The
// server still starts; the first request reports the problem.
func warnCredentials(cfg *config.Config, logger zerolog.Logger) bool {
	providerID := cfg.LLM.Provider
	if !provider.RequiresAPIKey(provider.MapProviderIDToType(providerID)) {
		return true
	}
	key := cfg.APIKey(providerID)
	switch {
	case key == "":
		logger.Warn().
			Str("provider", providerID).
			Strs("env", config.APIKeyEnvVars(providerID)).
			Msg("API key not configured; replies will fail until one is set")
		return false
	case config.IsPlaceholderKey(key):
		logger.Warn().
			Str("provider", providerID).
			Msg("API key looks like a template placeholder; replace it with a real key")
		return false
	}
	return true
}

