package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewClientsCmd создаёт группу команд для работы с клиентами.
func NewClientsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage clients",
	}

	cmd.AddCommand(
		newClientsListCmd(clientFn, outputFn),
		newClientsShowCmd(clientFn, outputFn),
		newClientsRemindCmd(clientFn, outputFn),
	)

	return cmd
}

func clientRow(c *ClientResponse) []string {
	return []string{
		strconv.FormatInt(c.ID, 10),
		c.Name,
		c.PhoneNumber,
		c.PlanName,
		c.DueDate,
		c.Status,
	}
}

var clientHeaders = []string{"ID", "NAME", "PHONE", "PLAN", "DUE_DATE", "STATUS"}

func newClientsListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var userID int64
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			clients, err := client.ListClients(ListClientsOpts{
				UserID: userID,
				Status: status,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, len(clients))
			for i := range clients {
				rows[i] = clientRow(&clients[i])
			}

			out.Print(clientHeaders, rows, clients)
			return nil
		},
	}

	cmd.Flags().Int64Var(&userID, "user-id", 0, "Filter by owner user ID")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (active/inactive)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of clients")

	return cmd
}

func newClientsShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show client details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid client id: %s", args[0])
			}

			c, err := client.GetClient(id)
			if err != nil {
				return err
			}

			out.Print(clientHeaders, [][]string{clientRow(c)}, c)
			return nil
		},
	}
}

func newClientsRemindCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var templateType string

	cmd := &cobra.Command{
		Use:   "remind ID",
		Short: "Send a reminder to a client now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid client id: %s", args[0])
			}

			res, err := client.Remind(id, templateType)
			if err != nil {
				return err
			}

			if res.Sent > 0 {
				out.Success(fmt.Sprintf("Reminder sent to client %d", id))
			} else {
				out.Success("Nothing sent (already delivered today or no active template)")
			}
			out.Print([]string{"SENT"}, [][]string{{strconv.Itoa(res.Sent)}}, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&templateType, "template-type", "", "Template type (default reminder_due_date)")

	return cmd
}
