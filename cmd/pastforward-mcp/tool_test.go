package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpang/past-forward/internal/dataurl"
	"github.com/fpang/past-forward/internal/prompt"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type stubGenerator struct {
	prompt string
	image  string
	result string
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, imageDataURL, text string) (string, error) {
	s.image = imageDataURL
	s.prompt = text
	return s.result, s.err
}

func writePhoto(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0600))
	return path
}

func TestHandle_DecadePrompt(t *testing.T) {
	gen := &stubGenerator{result: dataurl.Encode("image/png", pngBytes)}
	out := filepath.Join(t.TempDir(), "styled")

	res, payload, err := newTool(gen).handle(context.Background(), nil, generateArgs{
		ImagePath:  writePhoto(t),
		Decade:     "1970s",
		OutputPath: out,
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	assert.Equal(t, prompt.Primary("1970s"), gen.prompt)
	assert.Equal(t, dataurl.Encode("image/png", pngBytes), gen.image)
	assert.Equal(t, "image/png", payload.MIMEType)
	assert.Equal(t, len(pngBytes), payload.Bytes)
	assert.Equal(t, out+".png", payload.SavedPath)

	require.Len(t, res.Content, 2)
	img, ok := res.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, pngBytes, img.Data)
}

func TestHandle_CustomPrompt(t *testing.T) {
	gen := &stubGenerator{result: dataurl.Encode("image/png", pngBytes)}

	_, payload, err := newTool(gen).handle(context.Background(), nil, generateArgs{
		ImagePath: writePhoto(t),
		Prompt:    "Me as a 1920s flapper",
	})
	require.NoError(t, err)
	assert.Equal(t, "Me as a 1920s flapper", gen.prompt)
	assert.Empty(t, payload.SavedPath)
}

func TestHandle_GenerationFailureIsToolError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("The AI model failed to generate an image. Details: boom")}

	res, _, err := newTool(gen).handle(context.Background(), nil, generateArgs{
		ImagePath: writePhoto(t),
		Decade:    "1980s",
	})
	require.NoError(t, err)
	require.True(t, res.IsError)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "boom")
}

func TestHandle_InvalidArgs(t *testing.T) {
	photo := writePhoto(t)
	notImage := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(notImage, []byte("hello world"), 0600))

	tests := map[string]generateArgs{
		"no decade or prompt": {ImagePath: photo},
		"no image":            {Decade: "1970s"},
		"missing file":        {ImagePath: filepath.Join(t.TempDir(), "gone.png"), Decade: "1970s"},
		"not an image":        {ImagePath: notImage, Decade: "1970s"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			gen := &stubGenerator{}
			_, _, err := newTool(gen).handle(context.Background(), nil, args)
			assert.Error(t, err)
			assert.Empty(t, gen.prompt, "generator must not be called")
		})
	}
}
