package generate

// rest.go calls generateContent over plain HTTP. It exists for deployments
// that route the model call through a proxy, and it documents the exact wire
// shape: an inlineData part for the photo and a text part for the prompt.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/past-forward/internal/dataurl"
)

// DefaultBaseURL is the Gemini REST API base URL.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// RESTModel calls the Gemini generateContent REST endpoint.
type RESTModel struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewRESTModel creates a REST backend. Empty model and baseURL select the
// defaults; a nil httpClient gets a 120s timeout.
func NewRESTModel(apiKey, model, baseURL string, httpClient *http.Client) *RESTModel {
	if model == "" {
		model = DefaultModelName
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 120 * time.Second, // Image generation can take 10-30s
		}
	}
	return &RESTModel{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// --- REST API request/response types ---

type restRequest struct {
	Contents         []restContent         `json:"contents"`
	GenerationConfig *restGenerationConfig `json:"generationConfig,omitempty"`
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restPart struct {
	Text       string    `json:"text,omitempty"`
	InlineData *restBlob `json:"inlineData,omitempty"`
}

type restGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type restBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type restResponse struct {
	Candidates []restCandidate  `json:"candidates"`
	Error      *genai.APIError `json:"error,omitempty"`
}

type restCandidate struct {
	Content restContent `json:"content"`
}

type restErrorEnvelope struct {
	Error *genai.APIError `json:"error"`
}

// GenerateImage posts the photo and prompt and returns the first image part.
// Non-200 responses become genai.APIError values so Classify treats both
// backends alike.
func (m *RESTModel) GenerateImage(ctx context.Context, img dataurl.Image, prompt string) (*Response, error) {
	startTime := time.Now()

	req := restRequest{
		Contents: []restContent{{
			Role: "user",
			Parts: []restPart{
				{InlineData: &restBlob{
					MIMEType: img.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(img.Data),
				}},
				{Text: prompt},
			},
		}},
		GenerationConfig: &restGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", m.baseURL, m.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", m.apiKey)

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini generateContent returned error")
		return nil, decodeRESTError(resp.StatusCode, respBody)
	}

	var parsed restResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return nil, *parsed.Error
	}

	out := &Response{}
	if len(parsed.Candidates) > 0 {
		var text strings.Builder
		for _, part := range parsed.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(out.ImageData) == 0 {
				decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return nil, fmt.Errorf("failed to decode image data: %w", err)
				}
				out.ImageData = decoded
				out.MIMEType = part.InlineData.MIMEType
			}
			text.WriteString(part.Text)
		}
		out.Text = text.String()
	}

	log.Debug().
		Str("model", m.model).
		Bool("has_image", out.HasImage()).
		Int("output_bytes", len(out.ImageData)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini REST response received")

	return out, nil
}

// decodeRESTError turns an error body into a genai.APIError, keeping the HTTP
// status when the body is not the usual {"error": {...}} envelope.
func decodeRESTError(status int, body []byte) error {
	var env restErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		if env.Error.Code == 0 {
			env.Error.Code = status
		}
		return *env.Error
	}
	return genai.APIError{
		Code:    status,
		Message: truncateString(string(body), 200),
	}
}
