package generate

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// Class says whether a failed model call is worth repeating.
type Class int

const (
	Permanent Class = iota
	Transient
)

func (c Class) String() string {
	if c == Transient {
		return "transient"
	}
	return "permanent"
}

// Classify decides whether err is a transient upstream failure.
//
// Typed API errors are inspected first. Errors without a status fall back to
// matching the internal-error markers in the message ("500", "internal"),
// which is how the upstream service has historically reported server faults.
func Classify(err error) Class {
	if err == nil {
		return Permanent
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Permanent
	}

	if apiErr, ok := asAPIError(err); ok {
		switch {
		case apiErr.Code >= 500:
			return Transient
		case apiErr.Status == "INTERNAL" || apiErr.Status == "UNAVAILABLE":
			return Transient
		case apiErr.Code != 0:
			return Permanent
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "500") || strings.Contains(strings.ToLower(msg), "internal") {
		return Transient
	}
	return Permanent
}

// asAPIError extracts a genai.APIError whether it was returned by value or
// by pointer.
func asAPIError(err error) (genai.APIError, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue, true
	}
	var byPtr *genai.APIError
	if errors.As(err, &byPtr) && byPtr != nil {
		return *byPtr, true
	}
	return genai.APIError{}, false
}
