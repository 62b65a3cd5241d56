package generate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/fpang/past-forward/internal/dataurl"
)

type sdkRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

func newTestGeminiModel(t *testing.T, handler http.HandlerFunc) *GeminiModel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGeminiClient(context.Background(), "secret", srv.URL+"/")
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	return NewGeminiModel(client, "test-model")
}

func TestGeminiModel_GenerateImage(t *testing.T) {
	var got sdkRequest
	m := newTestGeminiModel(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{map[string]interface{}{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []interface{}{
						map[string]interface{}{"inlineData": map[string]string{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString(pngBytes),
						}},
					},
				},
			}},
		})
	})

	img := dataurl.Image{MIMEType: "image/jpeg", Data: []byte("jpeg")}
	resp, err := m.GenerateImage(context.Background(), img, "Reimagine me in the 1960s")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if !resp.HasImage() || resp.MIMEType != "image/png" || string(resp.ImageData) != string(pngBytes) {
		t.Errorf("unexpected response: %+v", resp)
	}

	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %+v", got)
	}
	parts := got.Contents[0].Parts
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/jpeg" {
		t.Errorf("first part should be the image, got %+v", parts[0])
	} else if parts[0].InlineData.Data != base64.StdEncoding.EncodeToString([]byte("jpeg")) {
		t.Errorf("image data = %q", parts[0].InlineData.Data)
	}
	if parts[1].Text != "Reimagine me in the 1960s" {
		t.Errorf("second part should be the prompt, got %+v", parts[1])
	}
	modalities := strings.Join(got.GenerationConfig.ResponseModalities, ",")
	if modalities != "TEXT,IMAGE" {
		t.Errorf("responseModalities = %q", modalities)
	}
}

func TestGeminiModel_TextOnly(t *testing.T) {
	m := newTestGeminiModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []interface{}{map[string]interface{}{
				"content": map[string]interface{}{
					"parts": []interface{}{map[string]string{"text": "I can't edit this photo."}},
				},
			}},
		})
	})

	resp, err := m.GenerateImage(context.Background(), dataurl.Image{MIMEType: "image/png", Data: pngBytes}, "1970s")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if resp.HasImage() {
		t.Error("expected no image")
	}
	if resp.Text != "I can't edit this photo." {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestGeminiModel_ServerErrorIsTransient(t *testing.T) {
	m := newTestGeminiModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"An internal error has occurred.","status":"INTERNAL"}}`))
	})

	_, err := m.GenerateImage(context.Background(), dataurl.Image{MIMEType: "image/png", Data: pngBytes}, "1970s")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 500 {
		t.Errorf("expected genai.APIError 500, got %T: %v", err, err)
	}
	if got := Classify(err); got != Transient {
		t.Errorf("Classify = %s, want transient", got)
	}
}

func TestGeminiModel_BadRequestIsPermanent(t *testing.T) {
	m := newTestGeminiModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"Unable to process input image.","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := m.GenerateImage(context.Background(), dataurl.Image{MIMEType: "image/png", Data: pngBytes}, "1970s")
	if got := Classify(err); got != Permanent {
		t.Errorf("Classify = %s, want permanent", got)
	}
}
