// Command pastforward-web runs the Past Forward relay as a local HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/past-forward/internal/cli"
	"github.com/fpang/past-forward/internal/config"
	"github.com/fpang/past-forward/internal/logging"
	"github.com/fpang/past-forward/internal/relay"
)

// version is set at build time via -ldflags.
var version = "dev"

// CLI flags
var (
	portFlag        int
	modelFlag       string
	distFlag        string
	envFileFlag     string
	validateKeyFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "pastforward-web",
	Short: "Local web server for Past Forward",
	Long: `Past Forward Web starts a local HTTP server that relays photos and
decade prompts to the Gemini image model and serves the frontend bundle.

Examples:
  pastforward-web
  pastforward-web --port 9090
  pastforward-web --dist ./web/dist --validate-key`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on (overrides PORT)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (overrides GEMINI_MODEL)")
	rootCmd.Flags().StringVar(&distFlag, "dist", "", "Frontend bundle directory (overrides DIST_DIR)")
	rootCmd.Flags().StringVar(&envFileFlag, "env-file", ".env", "Optional .env file")
	rootCmd.Flags().BoolVar(&validateKeyFlag, "validate-key", false, "Validate the API key with a test request at startup")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	initStart := time.Now()

	if err := config.LoadDotEnv(envFileFlag); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", envFileFlag, err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	if cmd.Flags().Changed("port") {
		cfg.Port = portFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if distFlag != "" {
		cfg.DistDir = distFlag
	}

	ctx := context.Background()
	gen := cli.InitGenerator(ctx, cfg, validateKeyFlag)

	server := relay.New(gen, relay.Options{
		DistDir:   cfg.DistDir,
		BodyLimit: cfg.BodyLimitBytes,
		LocalCORS: true,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout*time.Duration(2*cfg.MaxRetries) + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	logging.NewStartupLogger("pastforward-web").
		Version(version).
		Config("model", cfg.Model).
		Config("backend", cfg.Backend).
		Config("addr", cfg.Addr()).
		Config("bodyLimit", cfg.RequestBodyLimit).
		Config("maxRetries", fmt.Sprint(cfg.MaxRetries)).
		Feature("static", server.StaticEnabled()).
		Feature("validateKey", validateKeyFlag).
		InitDuration(time.Since(initStart)).
		Log()

	fmt.Printf("\n  Past Forward: http://localhost:%d\n\n", cfg.Port)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
