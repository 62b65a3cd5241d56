package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/client"
	"github.com/fpang/past-forward/internal/dataurl"
	"github.com/fpang/past-forward/internal/prompt"
)

const toolName = "generate_decade_image"

// generator is satisfied by *generate.Client.
type generator interface {
	Generate(ctx context.Context, imageDataURL, prompt string) (string, error)
}

type generateArgs struct {
	ImagePath  string `json:"image_path" jsonschema:"Path to the portrait photo on local disk"`
	Decade     string `json:"decade,omitempty" jsonschema:"Decade to style for such as 1970s"`
	Prompt     string `json:"prompt,omitempty" jsonschema:"Custom prompt that replaces the built-in decade prompt"`
	OutputPath string `json:"output_path,omitempty" jsonschema:"Where to save the result; the extension is added from the image type when omitted"`
}

type generateResult struct {
	MIMEType  string `json:"mime_type"`
	Bytes     int    `json:"bytes"`
	SavedPath string `json:"saved_path,omitempty"`
	Prompt    string `json:"prompt"`
}

type decadeTool struct {
	gen generator
}

func newTool(gen generator) *decadeTool {
	return &decadeTool{gen: gen}
}

func (t *decadeTool) register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        toolName,
		Description: "Restyle a portrait photo as if it were taken in another decade (1950s-2000s). Returns the generated image.",
	}, t.handle)
}

func (t *decadeTool) handle(ctx context.Context, req *mcp.CallToolRequest, args generateArgs) (*mcp.CallToolResult, generateResult, error) {
	start := time.Now()
	log.Info().Str("tool", toolName).Str("decade", args.Decade).Msg("MCP tool call received")

	text, err := buildPrompt(args)
	if err != nil {
		return nil, generateResult{}, err
	}
	if strings.TrimSpace(args.ImagePath) == "" {
		return nil, generateResult{}, fmt.Errorf("image_path is required")
	}
	data, err := os.ReadFile(args.ImagePath)
	if err != nil {
		return nil, generateResult{}, fmt.Errorf("failed to read image: %w", err)
	}
	mimeType := dataurl.Sniff(data)
	if !dataurl.IsImage(mimeType) {
		return nil, generateResult{}, fmt.Errorf("%s is not an image (detected %s)", args.ImagePath, mimeType)
	}

	resultURL, err := t.gen.Generate(ctx, dataurl.Encode(mimeType, data), text)
	if err != nil {
		// Model failures are reported to the caller as a tool error, not a
		// protocol error.
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, generateResult{}, nil
	}

	img, err := dataurl.Decode(resultURL)
	if err != nil {
		return nil, generateResult{}, fmt.Errorf("model returned an unusable image: %w", err)
	}
	out := generateResult{MIMEType: img.MIMEType, Bytes: len(img.Data), Prompt: text}

	if args.OutputPath != "" {
		path, _, err := client.Save(resultURL, args.OutputPath)
		if err != nil {
			return nil, generateResult{}, err
		}
		out.SavedPath = path
	}

	log.Info().
		Str("tool", toolName).
		Int("bytes", out.Bytes).
		Dur("duration", time.Since(start)).
		Msg("MCP tool call complete")

	summary := fmt.Sprintf("Generated %s image (%d bytes)", out.MIMEType, out.Bytes)
	if out.SavedPath != "" {
		summary += " saved to " + out.SavedPath
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.ImageContent{Data: img.Data, MIMEType: img.MIMEType},
			&mcp.TextContent{Text: summary},
		},
	}, out, nil
}

// buildPrompt prefers a custom prompt, otherwise renders the decade prompt.
func buildPrompt(args generateArgs) (string, error) {
	if p := strings.TrimSpace(args.Prompt); p != "" {
		return p, nil
	}
	decade, ok := prompt.ExtractDecade(args.Decade)
	if !ok {
		return "", fmt.Errorf("either prompt or a decade such as 1970s is required")
	}
	return prompt.Primary(decade), nil
}
