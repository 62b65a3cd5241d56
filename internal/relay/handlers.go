package relay

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fpang/past-forward/internal/generate"
)

// msgMissingFields is returned when the body lacks either string field.
const msgMissingFields = "Both imageDataUrl and prompt must be provided as strings."

// generateRequest keeps fields raw so a non-string value is reported as a
// missing field rather than a JSON error.
type generateRequest struct {
	ImageDataURL json.RawMessage `json:"imageDataUrl"`
	Prompt       json.RawMessage `json:"prompt"`
}

type generateResponse struct {
	ImageDataURL string `json:"imageDataUrl"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.bodyLimit)
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			logger.Warn().Int64("limit", maxErr.Limit).Msg("Request body too large")
			httpError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	imageDataURL, ok1 := stringField(req.ImageDataURL)
	prompt, ok2 := stringField(req.Prompt)
	if !ok1 || !ok2 {
		httpError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	result, err := s.gen.Generate(r.Context(), imageDataURL, prompt)
	if err != nil {
		logger.Error().
			Err(err).
			Str("kind", generate.KindOf(err).String()).
			Msg("Image generation failed")
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, generateResponse{ImageDataURL: result})
}

// stringField decodes raw as a non-empty JSON string.
func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
