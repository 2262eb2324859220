package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spurchat/storage"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the conversation database",
	}

	dbCmd.AddCommand(newDBClearCommand(ctx))
	dbCmd.AddCommand(newDBMigrateCommand(ctx))

	return dbCmd
}

func newDBClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every conversation and message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the database without --yes")
			}
			logger, closeLog, err := ctx.newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			return ctx.withStore(logger, func(store *storage.SQLiteStore) error {
				stats, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d message(s) and %d conversation(s)\n", stats.Messages, stats.Conversations)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion")
	return cmd
}

func newDBMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and print the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := ctx.newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			// OpenSQLite migrates on open
			return ctx.withStore(logger, func(store *storage.SQLiteStore) error {
				version, err := store.SchemaVersion()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", store.Path(), version)
				return nil
			})
		},
	}
}
