// Package mcpserver exposes the three generation views as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moasq/nanogen/internal/service"
)

// NewServer registers the generation tools backed by svc.
func NewServer(svc *service.Service, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "nanogen",
			Version: "v" + version,
		},
		nil,
	)
	h := &handlers{svc: svc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_plan",
		Description: "Generate a weekly fitness plan with Gemini. Omitted fields use their default value. Example: generate_plan(age: \"34\", goal: \"lose fat\", days: \"4\")",
	}, h.generatePlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_marketing",
		Description: "Generate marketing copy for a product with Gemini. Omitted fields use their default value.",
	}, h.generateMarketing)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_ui",
		Description: "Generate a UI section document (JSON with sections of cards) from a free-text instruction. If the model output is not a valid document, the raw text is returned with a warning.",
	}, h.generateUI)

	return server
}

// Run serves the tools over stdio until the client disconnects or ctx is
// cancelled.
func Run(ctx context.Context, svc *service.Service, version string) error {
	return NewServer(svc, version).Run(ctx, &mcp.StdioTransport{})
}
