package cli

import (
	"github.com/spf13/cobra"

	mcpadapter "github.com/Vishnuvardhanvemula/FinanceYatra/internal/adapters/mcp"
)

func newMCPCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve ask_financial_question and rag_stats over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			e.logger.Info("mcp_server_starting", "transport", "stdio")
			return mcpadapter.NewServer(app.Query).ServeStdio()
		},
	}
}
