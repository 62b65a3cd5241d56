// Package dataurl converts images between data URLs
// (data:<mime>;base64,<payload>) and raw bytes.
//
// The relay only ever transports images; it never decodes pixels. Decode
// checks the envelope and the base64 payload, nothing more.
package dataurl

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// imagePattern matches data:image/<subtype>;base64,<payload>.
var imagePattern = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,(.*)$`)

// anyPattern matches data:<mime>;base64,<payload> for any mime type.
var anyPattern = regexp.MustCompile(`^data:([^;,]+);base64,(.*)$`)

// Image is a decoded data URL.
type Image struct {
	MIMEType string
	Data     []byte
}

// FormatError reports a string that is not a usable data URL.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return "invalid image data URL: " + e.Reason + ": " + e.Err.Error()
	}
	return "invalid image data URL: " + e.Reason
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Decode parses an image data URL. The mime type must start with "image/".
func Decode(dataURL string) (Image, error) {
	if err := checkEnvelope(dataURL); err != nil {
		return Image{}, err
	}
	m := imagePattern.FindStringSubmatch(dataURL)
	if m == nil {
		return Image{}, &FormatError{Reason: "mime type is not image/*"}
	}
	return decodePayload(m[1], m[2])
}

// Parse is like Decode but accepts any mime type.
func Parse(dataURL string) (Image, error) {
	if err := checkEnvelope(dataURL); err != nil {
		return Image{}, err
	}
	m := anyPattern.FindStringSubmatch(dataURL)
	if m == nil {
		return Image{}, &FormatError{Reason: "expected 'data:<mime>;base64,<data>'"}
	}
	return decodePayload(m[1], m[2])
}

// Encode wraps raw bytes in a data URL.
func Encode(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Sniff detects the mime type of raw bytes from their content.
func Sniff(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsImage reports whether mimeType names an image type.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func checkEnvelope(dataURL string) error {
	if !strings.HasPrefix(dataURL, "data:") {
		return &FormatError{Reason: "missing 'data:' prefix"}
	}
	if !strings.Contains(dataURL, ";base64,") {
		return &FormatError{Reason: "missing ';base64,' separator"}
	}
	return nil
}

func decodePayload(mimeType, payload string) (Image, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, &FormatError{Reason: fmt.Sprintf("payload for %s is not valid base64", mimeType), Err: err}
	}
	return Image{MIMEType: mimeType, Data: data}, nil
}
