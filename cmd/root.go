// Package cmd implements the docchat CLI.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat ingests documents (PDF, Word, PowerPoint, CSV, plain text),
indexes them in a local vector database, and answers questions about
them with a streaming, retrieval-grounded chat API. It also exposes
the document index to AI agents via MCP.`,
}

func Execute() error {
	// Credentials such as OPENAI_API_KEY may live in a local .env file.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".docchat.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
