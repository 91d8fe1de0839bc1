package cmd

import (
	"fmt"

	"github.com/simplybook-mcp/sbmcp/pkg/mcpserver"
	"github.com/spf13/cobra"
)

var (
	transport  string
	listenAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the SimplyBook MCP server",
	Long:  "Runs the MCP server exposing the booking tools, over stdio by default or streamable HTTP with --transport http.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mcpserver.New(cfg, logger)

		switch transport {
		case "stdio":
			return s.ServeStdio()
		case "http":
			return s.ServeHTTP(listenAddr)
		default:
			return fmt.Errorf("unknown transport %q, expected stdio or http", transport)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&transport, "transport", "stdio", "MCP transport to serve (stdio or http)")
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8000", "listen address for the http transport")

	rootCmd.AddCommand(serveCmd)
}
