package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"spurchat/provider"
	"spurchat/server"
	"spurchat/storage"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int
	var checkKey bool
	var storeKind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := ctx.newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			lock := storage.NewInstanceLock(cfg.DataDir())
			if err := lock.TryLock(); err != nil {
				return err
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					logger.Warn().Err(err).Msg("failed to release instance lock")
				}
			}()

			store, err := openStore(storeKind, cfg.DatabasePath(), logger)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handle := provider.NewActiveHandle(cfg)
			if warnCredentials(cfg, logger) && checkKey {
				p, err := handle.Get(runCtx)
				if err != nil {
					logger.Warn().Err(err).Msg("provider initialization failed")
				} else if res := provider.PingProvider(runCtx, cfg.LLM.Provider, p); !res.Valid {
					logger.Warn().
						Err(res.Err).
						Str("provider", res.ProviderID).
						Str("kind", res.Kind.String()).
						Msg("provider credential check failed")
				}
			}

			svc, err := ctx.newService(store, handle, logger)
			if err != nil {
				return err
			}

			opts := server.OptionsFromConfig(cfg, logger)
			if port > 0 {
				opts.Addr = fmt.Sprintf(":%d", port)
			}
			srv, err := server.New(svc, opts)
			if err != nil {
				return err
			}

			logger.Info().
				Str("version", Version).
				Str("store", storeKind).
				Str("provider", cfg.LLM.Provider).
				Str("model", cfg.LLM.Model).
				Str("environment", cfg.Server.Environment).
				Msg("starting spurchat")

			return srv.Run(runCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config and PORT)")
	cmd.Flags().BoolVar(&checkKey, "check-key", false, "Verify the provider API key at startup")
	cmd.Flags().StringVar(&storeKind, "store", storeSQLite, "Conversation store: sqlite or memory")
	return cmd
}

const (
	storeSQLite = "sqlite"
	storeMemory = "memory"
)

func openStore(kind, dbPath string, logger zerolog.Logger) (storage.Store, error) {
	switch kind {
	case storeSQLite:
		store, err := storage.OpenSQLite(dbPath, logger)
		if err != nil {
			return nil, err
		}
		version, err := store.SchemaVersion()
		if err != nil {
			store.Close()
			return nil, err
		}
		logger.Info().Str("database", store.Path()).Int64("schema_version", version).Msg("database ready")
		return store, nil
	case storeMemory:
		logger.Warn().Msg("using in-memory store; conversations are lost on exit")
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want %s or %s)", kind, storeSQLite, storeMemory)
	}
}
