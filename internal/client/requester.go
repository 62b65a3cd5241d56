// Package client calls a Past Forward relay and saves the images it returns.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// GeneratePath is the relay route for image generation.
const GeneratePath = "/api/generate"

// DefaultBaseURL is the local relay used when no base URL is given.
const DefaultBaseURL = "http://localhost:8080"

// ErrNoImage is returned when the relay answers 2xx without an image.
var ErrNoImage = errors.New("The API did not return an imageDataUrl.")

// StatusError is a non-2xx relay response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Requester posts generation requests to a relay.
type Requester struct {
	baseURL    string
	httpClient *http.Client
}

// NewRequester creates a Requester. The base URL's trailing slash is
// trimmed; empty selects DefaultBaseURL. A nil httpClient gets a timeout
// long enough for the relay's retries and fallback.
func NewRequester(baseURL string, httpClient *http.Client) *Requester {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Requester{baseURL: baseURL, httpClient: httpClient}
}

// URL is the full generation endpoint.
func (r *Requester) URL() string {
	return r.baseURL + GeneratePath
}

type generateRequest struct {
	ImageDataURL string `json:"imageDataUrl"`
	Prompt       string `json:"prompt"`
}

type generateResponse struct {
	ImageDataURL string `json:"imageDataUrl"`
	Error        string `json:"error"`
}

// Generate sends the photo and prompt to the relay and returns the styled
// image data URL.
func (r *Requester) Generate(ctx context.Context, imageDataURL, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{ImageDataURL: imageDataURL, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Failed to connect to the Past Forward API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("Failed to connect to the Past Forward API: %w", err)
	}

	var parsed generateResponse
	jsonErr := json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("Image generation failed with status %d", resp.StatusCode)
		if jsonErr == nil && parsed.Error != "" {
			msg = parsed.Error
		}
		log.Debug().Int("status", resp.StatusCode).Str("error", msg).Msg("Relay returned error")
		return "", &StatusError{StatusCode: resp.StatusCode, Message: msg}
	}

	if jsonErr != nil || parsed.ImageDataURL == "" {
		return "", ErrNoImage
	}

	log.Debug().
		Int("bytes", len(parsed.ImageDataURL)).
		Dur("duration", time.Since(start)).
		Msg("Relay returned image")
	return parsed.ImageDataURL, nil
}
