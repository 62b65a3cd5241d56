package client

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fpang/past-forward/internal/dataurl"
)

// Save decodes dataURL and writes it to path. When path has no extension one
// is chosen from the mime type. It returns the path written and the size.
func Save(dataURL, path string) (string, int, error) {
	img, err := dataurl.Parse(dataURL)
	if err != nil {
		return "", 0, err
	}

	if filepath.Ext(path) == "" {
		path += extensionFor(img.MIMEType, img.Data)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, img.Data, 0644); err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, len(img.Data), nil
}

// extensionFor maps a mime type to a file extension, sniffing the bytes when
// the declared type is unknown.
func extensionFor(mimeType string, data []byte) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	if ext := mimetype.Detect(data).Extension(); ext != "" {
		return ext
	}
	return ".bin"
}
