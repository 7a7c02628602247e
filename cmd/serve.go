package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/nodegraph/modelresolver/internal/mcp"
	"github.com/nodegraph/modelresolver/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the resolver's HTTP API or MCP server",
	Long:  `Starts the resolver as a long-running service: by default an HTTP/WebSocket API for analyze/match/plan/search/downloads, or an MCP server on stdio with --mcp for AI agent integration.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("mcp", false, "serve over MCP (stdio) instead of HTTP")
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := loadCore()
	if err != nil {
		return err
	}
	defer c.Close()

	useMCP, _ := cmd.Flags().GetBool("mcp")
	if useMCP {
		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "modelresolver MCP server started on stdio (models_root=%s)\n", c.Config.Paths.ModelsRoot)
		srv := mcpserver.NewServer(c)
		return srv.Serve()
	}

	allowAll, _ := cmd.Flags().GetBool("allow-all-origins")
	srv := server.New(server.Config{
		Addr:           c.Config.Server.Addr,
		AllowedOrigins: c.Config.Server.AllowedOrigins,
		AllowAll:       allowAll,
	}, c)
	return srv.Start()
}
