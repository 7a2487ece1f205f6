package main

import (
	"github.com/spf13/cobra"

	"github.com/contourai-mcp-server/internal/mcp"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Starts an MCP server over stdin/stdout for a single local client.
Logs go to stderr; stdout carries only protocol messages.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			server, err := mcp.NewServer(*a.config.GetMCPConfig(), a.service, a.logger)
			if err != nil {
				return err
			}
			return server.Start(cmd.Context())
		},
	}
}
