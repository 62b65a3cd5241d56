package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/past-forward/internal/metrics"
)

// ValidationModel is the cheap text model used to check a key.
const ValidationModel = "gemini-2.5-flash"

// ValidationErrorType categorizes key failures.
type ValidationErrorType int

const (
	ErrTypeNoKey ValidationErrorType = iota
	ErrTypeInvalidKey
	ErrTypeNetworkError
	ErrTypeQuotaExceeded
	ErrTypeUnknown
)

var typeNames = map[ValidationErrorType]string{
	ErrTypeNoKey:         "no_key",
	ErrTypeInvalidKey:    "invalid",
	ErrTypeNetworkError:  "network_error",
	ErrTypeQuotaExceeded: "quota",
}

var typeHints = map[ValidationErrorType]string{
	ErrTypeNoKey:         "No API key configured. Set GEMINI_API_KEY (or API_KEY)",
	ErrTypeInvalidKey:    "Invalid API key. Check the key and try again",
	ErrTypeNetworkError:  "Could not reach Gemini. Check your connection",
	ErrTypeQuotaExceeded: "Gemini quota exceeded. Try again later",
}

func (t ValidationErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Hint is a one-line user-facing explanation.
func (t ValidationErrorType) Hint() string {
	if hint, ok := typeHints[t]; ok {
		return hint
	}
	return "API key validation failed"
}

// ValidationError says why a key could not be used.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Generator is the part of the genai models service used for validation.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ValidateAPIKey verifies the key behind client with a one-word prompt.
func ValidateAPIKey(ctx context.Context, client *genai.Client) error {
	return Validate(ctx, client.Models)
}

// Validate is ValidateAPIKey against any Generator. Failures are returned as
// *ValidationError.
func Validate(ctx context.Context, models Generator) error {
	log.Debug().Str("model", ValidationModel).Msg("Validating API key")

	start := time.Now()
	resp, err := models.GenerateContent(ctx, ValidationModel, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	var valErr *ValidationError
	switch {
	case err != nil:
		valErr = classifyError(err)
	case resp == nil || len(resp.Candidates) == 0:
		valErr = &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
	}

	result := "success"
	if valErr != nil {
		result = valErr.Type.String()
	}
	metrics.New(metrics.Namespace).
		Dimension("Result", result).
		Duration("ApiKeyValidationMs", elapsed).
		Count("ApiKeyValidationResult").
		Flush()

	if valErr != nil {
		log.Error().Err(valErr).Str("result", result).Msg("API key validation failed")
		return valErr
	}
	log.Info().Dur("duration", elapsed).Msg("API key validated")
	return nil
}

var statusTypes = map[int]ValidationErrorType{
	400: ErrTypeInvalidKey,
	401: ErrTypeInvalidKey,
	403: ErrTypeInvalidKey,
	429: ErrTypeQuotaExceeded,
	500: ErrTypeNetworkError,
	502: ErrTypeNetworkError,
	503: ErrTypeNetworkError,
	504: ErrTypeNetworkError,
}

// Checked in order; the first type with a matching marker wins.
var messageMarkers = []struct {
	typ     ValidationErrorType
	markers []string
}{
	{ErrTypeInvalidKey, []string{"api key not valid", "invalid api key", "api_key_invalid", "permission denied"}},
	{ErrTypeQuotaExceeded, []string{"quota", "resource exhausted", "rate limit"}},
	{ErrTypeNetworkError, []string{"connection", "network", "timeout", "dial", "no such host", "unreachable"}},
}

func classifyError(err error) *ValidationError {
	if apiErr, ok := asAPIError(err); ok {
		typ, known := statusTypes[apiErr.Code]
		if !known {
			return &ValidationError{Type: ErrTypeUnknown, Message: apiErr.Message, Err: err}
		}
		return &ValidationError{Type: typ, Message: typ.Hint(), Err: err}
	}

	lower := strings.ToLower(err.Error())
	for _, m := range messageMarkers {
		for _, marker := range m.markers {
			if strings.Contains(lower, marker) {
				return &ValidationError{Type: m.typ, Message: m.typ.Hint(), Err: err}
			}
		}
	}
	return &ValidationError{Type: ErrTypeUnknown, Message: "Failed to validate API key", Err: err}
}

func asAPIError(err error) (genai.APIError, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue, true
	}
	var byPtr *genai.APIError
	if errors.As(err, &byPtr) && byPtr != nil {
		return *byPtr, true
	}
	return genai.APIError{}, false
}
