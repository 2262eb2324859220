package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spurchat/provider"
	"spurchat/storage"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Send one message through the support agent",
		Args:  cobra.MinimumNArgs(1),
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

			return ctx.withStore(logger, func(store *storage.SQLiteStore) error {
				svc, err := ctx.newService(store, provider.NewActiveHandle(cfg), logger)
				if err != nil {
					return err
				}

				result, err := svc.ProcessMessage(cmd.Context(), strings.Join(args, " "), sessionID)
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), result.Reply)
				fmt.Fprintf(cmd.ErrOrStderr(), "session: %s\n", result.SessionID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Continue an existing conversation")
	return cmd
}
