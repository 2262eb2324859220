package main

import (
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"spurchat/config"
	"spurchat/model"
	"spurchat/provider"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List models offered by the configured provider",
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

			var results []provider.ProviderModels
			if all {
				providers := provider.InitializeProviders(cmd.Context(), cfg, logger)
				if len(providers) == 0 {
					return fmt.Errorf("no providers configured with credentials")
				}
				results = provider.FetchAllModels(cmd.Context(), providers)
			} else {
				p, err := provider.NewActiveHandle(cfg).Get(cmd.Context())
				if err != nil {
					return err
				}
				models, err := p.ListModels(cmd.Context())
				if err != nil {
					return fmt.Errorf("list %s models: %w", cfg.LLM.Provider, err)
				}
				results = []provider.ProviderModels{{ProviderID: cfg.LLM.Provider, Models: models}}
			}

			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.ProviderID, r.Err)
				}
			}
			rows := buildModelRows(results, cfg.LLM.Model)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No models")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"Provider", "Model", "Size", "Active"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List models from every provider with credentials")
	cmd.AddCommand(newModelsUseCommand(ctx))
	return cmd
}

func newModelsUseCommand(ctx *commandContext) *cobra.Command {
	var fallback string

	cmd := &cobra.Command{
		Use:   "use <provider> <model>",
		Short: "Make a provider and model the default in config.toml",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			providerID := provider.MapProviderIDToType(args[0])
			if !slices.Contains(config.KnownProviders, string(providerID)) {
				return fmt.Errorf("unknown provider: %s", args[0])
			}

			userCfg, err := config.LoadUserConfig(cfg.DataDir())
			if err != nil {
				return err
			}
			userCfg.LLM.Provider = string(providerID)
			userCfg.LLM.Model = args[1]
			if cmd.Flags().Changed("fallback") {
				userCfg.LLM.FallbackModel = fallback
			}
			if err := config.SaveUserConfig(userCfg, cfg.DataDir()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default model set to %s/%s\n", providerID, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&fallback, "fallback", "", "Fallback model tried when the primary is unavailable")
	return cmd
}

func buildModelRows(results []provider.ProviderModels, activeModel string) [][]string {
	var rows [][]string
	for _, r := range results {
		for _, m := range r.Models {
			rows = append(rows, []string{r.ProviderID, m.Name, formatSize(m), activeMark(m, activeModel)})
		}
	}
	return rows
}

func formatSize(m model.ModelInfo) string {
	if m.Size <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(m.Size))
}

func activeMark(m model.ModelInfo, activeModel string) string {
	if activeModel != "" && (m.Name == activeModel || m.InternalName == activeModel) {
		return "*"
	}
	return ""
}
