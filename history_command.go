package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"spurchat/model"
	"spurchat/storage"
)

const exportAuto = "auto"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Print or export a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := ctx.newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			id := args[0]
			return ctx.withStore(logger, func(store *storage.SQLiteStore) error {
				if exportPath != "" {
					path := exportPath
					if path == exportAuto {
						path = storage.GenerateExportPath(id)
					}
					if err := storage.ExportJSON(cmd.Context(), store, id, path); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
					return nil
				}

				msgs, err := store.GetMessages(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(msgs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No messages")
					return nil
				}
				printTranscript(cmd.OutOrStdout(), msgs)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "Write the conversation as JSON (default path under ~/Downloads)")
	cmd.Flags().Lookup("export").NoOptDefVal = exportAuto
	return cmd
}

func printTranscript(w io.Writer, msgs []model.Message) {
	for _, m := range msgs {
		speaker := "Customer"
		if m.Sender == model.SenderAI {
			speaker = "Agent"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Local().Format(time.DateTime), speaker, m.Text)
	}
}
