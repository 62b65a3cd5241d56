// Package lambdaboot holds the Lambda cold-start bootstrap: AWS config, the
// Gemini key from SSM Parameter Store, and the startup log.
package lambdaboot

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/config"
	"github.com/fpang/past-forward/internal/logging"
)

// ParameterGetter is the part of the SSM client used at startup.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// AWSClients holds the AWS SDK clients used by the Lambda.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// InitAWS loads the default AWS config and returns it along with an SSM client.
func InitAWS(ctx context.Context) AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// LoadGeminiKey returns the key from the environment when set, otherwise
// fetches cfg.SSMAPIKeyParam from SSM with decryption. The value is stored
// back on cfg so later reads see it.
func LoadGeminiKey(ctx context.Context, getter ParameterGetter, cfg *config.Config) (string, error) {
	if key := cfg.APIKey(); key != "" {
		log.Debug().Msg("Gemini API key taken from environment")
		return key, nil
	}
	if getter == nil {
		return "", config.ErrNoAPIKey
	}

	paramName := cfg.SSMAPIKeyParam
	ssmStart := time.Now()
	result, err := getter.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("read API key from SSM %s: %w", paramName, err)
	}
	if result.Parameter == nil || aws.ToString(result.Parameter.Value) == "" {
		return "", fmt.Errorf("SSM parameter %s is empty", paramName)
	}

	cfg.GeminiAPIKey = aws.ToString(result.Parameter.Value)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
	return cfg.GeminiAPIKey, nil
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
