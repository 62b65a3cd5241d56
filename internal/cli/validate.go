package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/auth"
)

// ResolveImageFile returns the absolute path of an existing regular file.
func ResolveImageFile(path string) (string, error) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return "", fmt.Errorf("image not found: %s", path)
	case err != nil:
		return "", fmt.Errorf("failed to access image %s: %w", path, err)
	case info.IsDir():
		return "", fmt.Errorf("path is a directory, not an image: %s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// HandleValidationError logs a key failure with its hint and exits.
func HandleValidationError(err error) {
	var valErr *auth.ValidationError
	if !errors.As(err, &valErr) {
		log.Fatal().Err(err).Msg("Unexpected error while checking the API key")
		return
	}
	event := log.Fatal().Str("reason", valErr.Type.String())
	if valErr.Type != auth.ErrTypeNoKey {
		event = event.Err(err)
	}
	event.Msg(valErr.Type.Hint())
}
