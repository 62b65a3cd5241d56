package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/past-forward/internal/dataurl"
)

// NewGeminiClient creates a Gemini API client for the given key. baseURL is
// optional and overrides the public endpoint.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// GeminiModel calls an image-capable Gemini model through the Go SDK.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel wraps an SDK client. An empty model name selects
// DefaultModelName.
func NewGeminiModel(client *genai.Client, model string) *GeminiModel {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiModel{client: client, model: model}
}

// GenerateImage sends the photo followed by the prompt and returns the first
// inline image plus any text the model produced.
func (m *GeminiModel) GenerateImage(ctx context.Context, img dataurl.Image, prompt string) (*Response, error) {
	startTime := time.Now()
	log.Debug().
		Str("model", m.model).
		Int("image_bytes", len(img.Data)).
		Str("image_mime", img.MIMEType).
		Int("prompt_length", len(prompt)).
		Msg("Sending image to Gemini")

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}},
			{Text: prompt},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, config)
	if err != nil {
		return nil, err
	}

	out := parseSDKResponse(resp)
	log.Debug().
		Bool("has_image", out.HasImage()).
		Int("output_bytes", len(out.ImageData)).
		Int("text_length", len(out.Text)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini response received")
	return out, nil
}

// parseSDKResponse takes the first inline image of the first candidate and
// concatenates its text parts.
func parseSDKResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(out.ImageData) == 0 {
			out.ImageData = part.InlineData.Data
			out.MIMEType = part.InlineData.MIMEType
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	out.Text = text.String()
	return out
}
