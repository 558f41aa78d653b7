package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/docchat/docchat/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search and question answering tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		app, err := openComponents(cfg)
		if err != nil {
			return err
		}
		defer app.database.Close()

		engine, err := newEngine(cfg, app)
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		// Stdout carries the MCP protocol; status goes to stderr.
		fmt.Fprintf(os.Stderr, "docchat MCP server started on stdio (chunks=%d)\n", app.vectors.Count())

		srv := mcpserver.NewServer(engine, app.registry)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
