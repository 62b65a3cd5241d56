package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/prompt"
)

// ErrCanceled is returned when the user dismisses the photo picker.
var ErrCanceled = errors.New("photo selection canceled")

// imagePatterns are the file types the picker offers.
var imagePatterns = []string{"*.jpg", "*.jpeg", "*.png", "*.gif", "*.webp", "*.heic", "*.heif"}

// PickImage opens the native file dialog and returns the chosen photo.
func PickImage() (string, error) {
	selected, err := zenity.SelectFile(
		zenity.Title("Select a photo"),
		zenity.FileFilters{
			{Name: "Images", Patterns: imagePatterns},
		},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrCanceled
		}
		log.Error().Err(err).Msg("File picker failed")
		return "", fmt.Errorf("file picker failed: %w", err)
	}
	log.Debug().Str("path", selected).Msg("Photo picked via native dialog")
	return selected, nil
}

// PromptForDecade lists the built-in decades and reads a choice from in.
// Enter accepts the default; a number or a decade such as "1970s" selects one.
func PromptForDecade(in io.Reader, out io.Writer, def string) string {
	decades := prompt.Decades()
	for i, d := range decades {
		fmt.Fprintf(out, "  %d) %s\n", i+1, d)
	}
	fmt.Fprintf(out, "Decade [%s]: ", def)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		log.Warn().Err(err).Msg("Failed to read input, using default decade")
		return def
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(input, "%d", &n); err == nil && n >= 1 && n <= len(decades) && fmt.Sprint(n) == input {
		return decades[n-1]
	}
	if d, ok := prompt.ExtractDecade(input); ok {
		return d
	}
	log.Warn().Str("input", input).Msg("Unrecognized decade, using default")
	return def
}
