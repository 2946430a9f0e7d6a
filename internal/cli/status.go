package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewStatusCmd создаёт команду просмотра состояния планировщика.
func NewStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scheduler status and cadences",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			st, err := client.GetStatus()
			if err != nil {
				return err
			}

			headers := []string{"CADENCE", "NEXT_DUE"}
			rows := make([][]string, len(st.Cadences))
			for i, c := range st.Cadences {
				rows[i] = []string{c.Name, c.NextDue}
			}

			out.Success("Running: " + strconv.FormatBool(st.Running) + " (" + st.Timezone + ")")
			out.Print(headers, rows, st)
			return nil
		},
	}
}
