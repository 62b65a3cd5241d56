// Package config loads the relay configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
)

// Backends accepted by GEMINI_BACKEND.
const (
	BackendSDK  = "sdk"
	BackendREST = "rest"
)

// DefaultProxyTarget is where the requester sends calls when no base URL is
// configured; it matches the local relay's default port.
const DefaultProxyTarget = "http://localhost:8080"

// ErrNoAPIKey is returned by RequireAPIKey when neither key variable is set.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY (or API_KEY) environment variable not set")

// Config holds the environment driven configuration for every binary.
type Config struct {
	// Credentials
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	LegacyAPIKey string `env:"API_KEY"`

	// Relay
	Port             int    `env:"PORT" envDefault:"8080"`
	RequestBodyLimit string `env:"REQUEST_BODY_LIMIT" envDefault:"15MiB"`
	DistDir          string `env:"DIST_DIR" envDefault:"dist"`

	// Requester
	APIBaseURL     string `env:"API_BASE_URL"`
	APIProxyTarget string `env:"API_PROXY_TARGET" envDefault:"http://localhost:8080"`

	// Model
	Model           string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-image"`
	Backend         string        `env:"GEMINI_BACKEND" envDefault:"sdk"` // Options: "sdk" or "rest"
	GeminiBaseURL   string        `env:"GEMINI_BASE_URL"`
	MaxRetries      int           `env:"GENERATE_MAX_RETRIES" envDefault:"3"`
	InitialDelay    time.Duration `env:"GENERATE_INITIAL_DELAY" envDefault:"1s"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"120s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Lambda
	SSMAPIKeyParam string `env:"SSM_API_KEY_PARAM" envDefault:"/past-forward/prod/gemini-api-key"`

	// BodyLimitBytes is RequestBodyLimit parsed by Load.
	BodyLimitBytes int64
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Load parses environment variables into Config and validates them.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.GeminiAPIKey = strings.TrimSpace(cfg.GeminiAPIKey)
	cfg.LegacyAPIKey = strings.TrimSpace(cfg.LegacyAPIKey)
	cfg.APIBaseURL = strings.TrimSpace(cfg.APIBaseURL)
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))

	limit, err := humanize.ParseBytes(cfg.RequestBodyLimit)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_BODY_LIMIT %q: %w", cfg.RequestBodyLimit, err)
	}
	if limit == 0 {
		return nil, fmt.Errorf("REQUEST_BODY_LIMIT must be positive")
	}
	cfg.BodyLimitBytes = int64(limit)

	switch cfg.Backend {
	case BackendSDK, BackendREST:
	default:
		return nil, fmt.Errorf("invalid GEMINI_BACKEND %q: must be %q or %q", cfg.Backend, BackendSDK, BackendREST)
	}
	if cfg.MaxRetries < 1 {
		return nil, fmt.Errorf("GENERATE_MAX_RETRIES must be at least 1, got %d", cfg.MaxRetries)
	}
	if cfg.InitialDelay < 0 {
		return nil, fmt.Errorf("GENERATE_INITIAL_DELAY must not be negative")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	return cfg, nil
}

// APIKey returns GEMINI_API_KEY, falling back to API_KEY.
func (c *Config) APIKey() string {
	if c.GeminiAPIKey != "" {
		return c.GeminiAPIKey
	}
	return c.LegacyAPIKey
}

// RequireAPIKey is APIKey for binaries that cannot start without a key.
func (c *Config) RequireAPIKey() (string, error) {
	if key := c.APIKey(); key != "" {
		return key, nil
	}
	return "", ErrNoAPIKey
}

// RequesterBaseURL is the base URL the requester posts to: API_BASE_URL,
// else API_PROXY_TARGET, else the local relay.
func (c *Config) RequesterBaseURL() string {
	switch {
	case c.APIBaseURL != "":
		return strings.TrimRight(c.APIBaseURL, "/")
	case c.APIProxyTarget != "":
		return strings.TrimRight(c.APIProxyTarget, "/")
	default:
		return DefaultProxyTarget
	}
}

// Addr is the listen address for the local relay.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
