package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reveal-cli/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reveal to MCP clients",
	Long: `Serve the query pipeline over the Model Context Protocol.

Tools: query, batch, list_schemes, describe_scheme.
Resources: reveal://schemes and reveal://schemes/{scheme}.

Without --listen the server speaks JSON-RPC on stdin and stdout, which is
what desktop assistants launch. With --listen it serves streamable HTTP.

Examples:
  reveal mcp serve
  reveal mcp serve --listen 127.0.0.1:8080

Assistant configuration:
  {"mcpServers": {"reveal": {"command": "reveal", "args": ["mcp", "serve"]}}}`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringP("listen", "l", "", "serve streamable HTTP on this address instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	listen, _ := cmd.Flags().GetString("listen")

	svc, err := engine()
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(&mcp.Ports{
		Query:   svc.Query,
		Batch:   svc.Batch,
		Schemes: svc.Schemes,
	}, version)
	if err != nil {
		return err
	}

	if listen == "" {
		return server.Run(cmd.Context())
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on %s\n", listen)
	return server.RunHTTP(cmd.Context(), listen)
}
