// Cobrador CLI — операторский инструмент командной строки для
// наблюдения за планировщиком и ручных действий через HTTP API.
//
// Использование:
//
//	cobrador [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	status    Состояние планировщика и каденций
//	clients   Клиенты: list, show, remind
//	logs      Журнал доставки
//	whatsapp  Сессии WhatsApp-шлюза
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/cobrador/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "cobrador",
		Short:         "Cobrador CLI — subscription bot operations tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewStatusCmd(clientFn, outputFn),
		cli.NewClientsCmd(clientFn, outputFn),
		cli.NewLogsCmd(clientFn, outputFn),
		cli.NewWhatsAppCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
