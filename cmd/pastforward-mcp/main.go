// Command pastforward-mcp exposes decade styling as an MCP tool over stdio,
// so assistants can restyle local photos without running the relay.
package main

import (
	"context"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/past-forward/internal/cli"
	"github.com/fpang/past-forward/internal/config"
	"github.com/fpang/past-forward/internal/logging"
	"github.com/fpang/past-forward/internal/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

var modelFlag string

var rootCmd = &cobra.Command{
	Use:   "pastforward-mcp",
	Short: "MCP server for Past Forward",
	Long: `Past Forward MCP serves the generate_decade_image tool over stdio.

Logs go to stderr; stdout carries the MCP protocol.`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (overrides GEMINI_MODEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	// stdout carries the protocol.
	metrics.SetOutput(os.Stderr)
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	ctx := context.Background()
	gen := cli.InitGenerator(ctx, cfg, false)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "past-forward",
		Version: version,
	}, nil)
	newTool(gen).register(server)

	log.Info().Str("model", cfg.Model).Msg("MCP server listening on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal().Err(err).Msg("MCP server stopped")
	}
}
