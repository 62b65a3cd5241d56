// Command pastforward sends a photo to a Past Forward relay and saves the
// decade-styled result.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/past-forward/internal/cli"
	"github.com/fpang/past-forward/internal/client"
	"github.com/fpang/past-forward/internal/config"
	"github.com/fpang/past-forward/internal/dataurl"
	"github.com/fpang/past-forward/internal/logging"
	"github.com/fpang/past-forward/internal/prompt"
)

// CLI flags
var (
	imageFlag   string
	pickFlag    bool
	decadeFlag  string
	promptFlag  string
	outFlag     string
	apiFlag     string
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "pastforward",
	Short: "See yourself in another decade",
	Long: `Past Forward restyles a portrait as if it were taken in another decade.
It talks to a running Past Forward relay (pastforward-web or the Lambda).`,
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Style a photo for a decade",
	Long: `Send a photo and a decade prompt to the relay and save the styled image.

Examples:
  pastforward generate --image me.jpg --decade 1970s
  pastforward generate --pick --decade 1980s --out ~/Pictures/me-1980s
  pastforward generate --image me.jpg --prompt "Me as a 1950s jazz singer"
  pastforward generate --image me.jpg   # Interactive decade menu`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var decadesCmd = &cobra.Command{
	Use:   "decades",
	Short: "List the built-in decades",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, d := range prompt.Decades() {
			fmt.Fprintln(cmd.OutOrStdout(), d)
		}
	},
}

func init() {
	generateCmd.Flags().StringVarP(&imageFlag, "image", "i", "", "Photo to restyle")
	generateCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the photo with a native file dialog")
	generateCmd.Flags().StringVarP(&decadeFlag, "decade", "d", "", "Decade to style for (e.g. 1970s)")
	generateCmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "Custom prompt (overrides --decade)")
	generateCmd.Flags().StringVarP(&outFlag, "out", "o", "", "Output file (extension chosen from the image type when omitted)")
	generateCmd.Flags().StringVar(&apiFlag, "api", "", "Relay base URL (overrides API_BASE_URL / API_PROXY_TARGET)")
	generateCmd.Flags().DurationVar(&timeoutFlag, "timeout", 5*time.Minute, "Overall request timeout")
	generateCmd.MarkFlagsMutuallyExclusive("image", "pick")

	rootCmd.AddCommand(generateCmd, decadesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env")
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	imagePath, err := resolveImage()
	if err != nil {
		return err
	}
	imageURL, err := readImage(imagePath)
	if err != nil {
		return err
	}

	text, decade, err := buildPrompt(cmd.InOrStdin(), cmd.OutOrStdout(), promptFlag, decadeFlag)
	if err != nil {
		return err
	}
	out := outFlag
	if out == "" {
		out = defaultOutput(decade)
	}

	baseURL := apiFlag
	if baseURL == "" {
		baseURL = cfg.RequesterBaseURL()
	}
	requester := client.NewRequester(baseURL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	log.Info().Str("image", imagePath).Str("api", requester.URL()).Msg("Generating image")
	start := time.Now()
	result, err := requester.Generate(ctx, imageURL, text)
	if err != nil {
		return err
	}

	path, size, err := client.Save(result, out)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatResult(path, size, time.Since(start)))
	return nil
}

func resolveImage() (string, error) {
	path := imageFlag
	if pickFlag || path == "" {
		picked, err := cli.PickImage()
		if err != nil {
			if errors.Is(err, cli.ErrCanceled) {
				return "", fmt.Errorf("no photo selected")
			}
			return "", fmt.Errorf("no --image given and picker unavailable: %w", err)
		}
		path = picked
	}
	return cli.ResolveImageFile(path)
}

// readImage loads a photo and encodes it as a data URL. The mime type is
// sniffed from the bytes, not taken from the file name.
func readImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	mimeType := dataurl.Sniff(data)
	if !dataurl.IsImage(mimeType) {
		return "", fmt.Errorf("%s is not an image (detected %s)", path, mimeType)
	}
	return dataurl.Encode(mimeType, data), nil
}

// buildPrompt returns the prompt text and the decade it names. A custom
// prompt wins; with neither set the decade is asked for interactively.
func buildPrompt(in io.Reader, out io.Writer, custom, decade string) (string, string, error) {
	if custom != "" {
		d, _ := prompt.ExtractDecade(custom)
		return custom, d, nil
	}
	if decade == "" {
		decade = cli.PromptForDecade(in, out, prompt.Decades()[0])
		return prompt.Primary(decade), decade, nil
	}
	d, ok := prompt.ExtractDecade(decade)
	if !ok {
		return "", "", fmt.Errorf("unrecognized decade %q: use a decade such as 1970s", decade)
	}
	return prompt.Primary(d), d, nil
}

func defaultOutput(decade string) string {
	if decade == "" {
		return "past-forward"
	}
	return "past-forward-" + strings.ToLower(decade)
}
