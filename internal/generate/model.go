package generate

import (
	"context"

	"github.com/fpang/past-forward/internal/dataurl"
)

// DefaultModelName is the Gemini model used for decade styling.
// Can be overridden via GEMINI_MODEL.
const DefaultModelName = "gemini-2.5-flash-image"

// Model is a single call to an image model. Implementations do not retry.
type Model interface {
	GenerateImage(ctx context.Context, img dataurl.Image, prompt string) (*Response, error)
}

// Response is what the model sent back. ImageData is empty when the model
// answered with text only.
type Response struct {
	ImageData []byte
	MIMEType  string
	Text      string
}

// HasImage reports whether the response carries inline image data.
func (r *Response) HasImage() bool {
	return r != nil && len(r.ImageData) > 0
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
