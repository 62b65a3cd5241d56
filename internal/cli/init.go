package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/auth"
	"github.com/fpang/past-forward/internal/config"
	"github.com/fpang/past-forward/internal/generate"
)

// InitGenerator resolves the API key, optionally validates it, and returns a
// generation client for the configured backend. Exits fatally on failure.
func InitGenerator(ctx context.Context, cfg *config.Config, validate bool) *generate.Client {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		var err error
		apiKey, err = auth.GetAPIKey()
		if err != nil {
			HandleValidationError(err)
		}
	}

	if validate {
		client, err := generate.NewGeminiClient(ctx, apiKey, cfg.GeminiBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create Gemini client")
		}
		if err := auth.ValidateAPIKey(ctx, client); err != nil {
			HandleValidationError(err)
		}
		log.Info().Msg("API key validation complete")
	}

	gen, err := generate.NewClientFromConfig(ctx, cfg, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generation client")
	}
	log.Info().
		Str("model", cfg.Model).
		Str("backend", cfg.Backend).
		Msg("Generation client initialized")
	return gen
}
