package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewWhatsAppCmd создаёт группу команд для WhatsApp-шлюза.
func NewWhatsAppCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whatsapp",
		Short: "Inspect and control WhatsApp gateway sessions",
	}

	cmd.AddCommand(
		newWhatsAppStatusCmd(clientFn, outputFn),
		newWhatsAppReconnectCmd(clientFn, outputFn),
	)

	return cmd
}

func newWhatsAppStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status SESSION_ID",
		Short: "Show gateway session status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			sessionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session id: %s", args[0])
			}

			st, err := client.WhatsAppStatus(sessionID)
			if err != nil {
				return err
			}

			out.Print(
				[]string{"CONNECTED", "STATE"},
				[][]string{{strconv.FormatBool(st.Connected), st.State}},
				st,
			)
			return nil
		},
	}
}

func newWhatsAppReconnectCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "reconnect SESSION_ID",
		Short: "Request a gateway session reconnect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			sessionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid session id: %s", args[0])
			}

			res, err := client.WhatsAppReconnect(sessionID)
			if err != nil {
				return err
			}

			if res.Accepted {
				out.Success(fmt.Sprintf("Reconnect requested for session %d", sessionID))
			} else {
				out.Success("Reconnect not accepted by gateway")
			}
			out.Print([]string{"ACCEPTED"}, [][]string{{strconv.FormatBool(res.Accepted)}}, res)
			return nil
		},
	}
}
