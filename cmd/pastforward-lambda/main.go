// Package main provides the Lambda entry point for the Past Forward relay.
//
// The same handler as pastforward-web runs behind API Gateway (HTTP API, v2
// payload) through httpadapter. The static bundle is served by CloudFront,
// so only the API routes are live here.
//
// Endpoints:
//
//	POST /api/generate  - style a photo for a decade
//	GET  /healthz       - liveness probe
//
// The Gemini API key comes from GEMINI_API_KEY / API_KEY, or from the SSM
// parameter named by SSM_API_KEY_PARAM at cold start.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/config"
	"github.com/fpang/past-forward/internal/generate"
	"github.com/fpang/past-forward/internal/lambdaboot"
	"github.com/fpang/past-forward/internal/logging"
	"github.com/fpang/past-forward/internal/relay"
)

// version is set at build time via -ldflags.
var version = "dev"

var server *relay.Server

func init() {
	initStart := time.Now()
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(cfg.LogLevel, "json")

	startup := lambdaboot.StartupLog("pastforward-lambda", initStart)

	var apiKey string
	if cfg.APIKey() == "" {
		clients := lambdaboot.InitAWS(ctx)
		startup.SSMParam("geminiApiKey", cfg.SSMAPIKeyParam)
		apiKey, err = lambdaboot.LoadGeminiKey(ctx, clients.SSM, cfg)
	} else {
		apiKey, err = lambdaboot.LoadGeminiKey(ctx, nil, cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load Gemini API key")
	}

	gen, err := generate.NewClientFromConfig(ctx, cfg, apiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create generation client")
	}
	server = relay.New(gen, relay.Options{BodyLimit: cfg.BodyLimitBytes})

	startup.
		Version(version).
		Config("model", cfg.Model).
		Config("backend", cfg.Backend).
		Config("bodyLimit", cfg.RequestBodyLimit).
		Config("maxRetries", fmt.Sprint(cfg.MaxRetries)).
		Config("upstreamTimeout", cfg.UpstreamTimeout.String()).
		InitDuration(time.Since(initStart)).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(server.Handler())
	lambda.Start(adapter.ProxyWithContext)
}
