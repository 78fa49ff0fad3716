package commands

import (
	"github.com/spf13/cobra"

	"github.com/moasq/nanogen/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the generation tools as an MCP server",
	Long:  "Starts an MCP server over stdio exposing generate_plan, generate_marketing and generate_ui. The session API key is used for every call.",
	RunE: func(cmd *cobra.Command, args []string) error {
		current.logger.Info("mcp server starting")
		return mcpserver.Run(cmd.Context(), current.svc, Version)
	},
}
