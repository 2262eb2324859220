package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"spurchat/model"
	"spurchat/storage"
)

const previewWidth = 48

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := ctx.newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			return ctx.withStore(logger, func(store *storage.SQLiteStore) error {
				convs, err := store.ListConversations(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(convs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No conversations")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Messages", "Updated", "First message"},
					buildSessionRows(convs),
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum conversations to show (0 for all)")
	return cmd
}

func buildSessionRows(convs []model.ConversationSummary) [][]string {
	rows := make([][]string, 0, len(convs))
	for _, c := range convs {
		rows = append(rows, []string{
			c.ID,
			strconv.Itoa(c.MessageCount),
			c.UpdatedAt.Local().Format(time.DateTime),
			preview(c.FirstMessage, previewWidth),
		})
	}
	return rows
}
