package generate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, Permanent},
		{"api 500", genai.APIError{Code: 500, Status: "INTERNAL"}, Transient},
		{"api 503", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, Transient},
		{"api pointer 502", &genai.APIError{Code: 502}, Transient},
		{"api status only", genai.APIError{Status: "UNAVAILABLE"}, Transient},
		{"api 400", genai.APIError{Code: 400, Message: "internal looking text", Status: "INVALID_ARGUMENT"}, Permanent},
		{"api 429", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, Permanent},
		{"wrapped api 500", fmt.Errorf("call failed: %w", genai.APIError{Code: 500}), Transient},
		{"marker 500", errors.New(`{"error":{"code":500}}`), Transient},
		{"marker internal", errors.New("Internal error encountered."), Transient},
		{"plain", errors.New("connection refused"), Permanent},
		{"canceled", context.Canceled, Permanent},
		{"deadline", fmt.Errorf("timeout: %w", context.DeadlineExceeded), Permanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	for kind, want := range map[Kind]string{
		KindUpstream: "upstream",
		KindFormat:   "format",
		KindRefusal:  "refusal",
	} {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestKindOf_ForeignError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUpstream {
		t.Errorf("KindOf(foreign) = %s, want upstream", got)
	}
	wrapped := fmt.Errorf("relay: %w", &Error{Kind: KindFormat, Message: "bad"})
	if got := KindOf(wrapped); got != KindFormat {
		t.Errorf("KindOf(wrapped) = %s, want format", got)
	}
}
