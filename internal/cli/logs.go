package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewLogsCmd создаёт группу команд для журнала доставки.
func NewLogsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect the delivery log",
	}

	cmd.AddCommand(newLogsListCmd(clientFn, outputFn))

	return cmd
}

func newLogsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var userID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List delivery log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			logs, err := client.ListLogs(ListLogsOpts{
				UserID: userID,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "CLIENT", "PHONE", "SENT_AT", "STATUS", "ERROR"}
			rows := make([][]string, len(logs))
			for i, l := range logs {
				rows[i] = []string{
					strconv.FormatInt(l.ID, 10),
					strconv.FormatInt(l.ClientID, 10),
					l.RecipientPhone,
					l.SentAt,
					l.Status,
					l.Error,
				}
			}

			out.Print(headers, rows, logs)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "Filter by owner user ID")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries")

	return cmd
}
