package generate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/config"
)

// NewModelFromConfig builds the backend selected by GEMINI_BACKEND.
func NewModelFromConfig(ctx context.Context, cfg *config.Config, apiKey string) (Model, error) {
	switch cfg.Backend {
	case config.BackendREST:
		log.Debug().Str("model", cfg.Model).Msg("Using Gemini REST backend")
		return NewRESTModel(apiKey, cfg.Model, cfg.GeminiBaseURL, &http.Client{Timeout: cfg.UpstreamTimeout}), nil
	case config.BackendSDK, "":
		client, err := NewGeminiClient(ctx, apiKey, cfg.GeminiBaseURL)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("model", cfg.Model).Msg("Using Gemini SDK backend")
		return NewGeminiModel(client, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown Gemini backend %q", cfg.Backend)
	}
}

// NewClientFromConfig wires a Client with the configured backend, retry
// policy and per-call timeout.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, apiKey string) (*Client, error) {
	model, err := NewModelFromConfig(ctx, cfg, apiKey)
	if err != nil {
		return nil, err
	}
	return NewClient(model,
		WithModelName(cfg.Model),
		WithMaxRetries(cfg.MaxRetries),
		WithInitialDelay(cfg.InitialDelay),
		WithCallTimeout(cfg.UpstreamTimeout),
	)
}
