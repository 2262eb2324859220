package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spurchat/config"
)

func newCredentialsCommand(ctx *commandContext) *cobra.Command {
	credCmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage provider API keys stored in the data directory",
	}

	credCmd.AddCommand(&cobra.Command{
		Use:   "set <provider> <api-key>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := config.SetCredential(cfg.DataDir(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s API key\n", args[0])
			return nil
		},
	})

	credCmd.AddCommand(&cobra.Command{
		Use:   "unset <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := config.SetCredential(cfg.DataDir(), args[0], ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s API key\n", args[0])
			return nil
		},
	})

	return credCmd
}
