package generate

import "errors"

// Kind categorizes generation failures.
type Kind int

const (
	// KindUpstream covers non-retryable model errors, exhausted retries and
	// failures of the fallback prompt.
	KindUpstream Kind = iota
	// KindFormat indicates the input image was not a valid image data URL.
	KindFormat
	// KindRefusal indicates the model answered with text and no fallback
	// prompt could be derived.
	KindRefusal
)

func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindRefusal:
		return "refusal"
	default:
		return "upstream"
	}
}

// Error is returned by Client.Generate for every failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUpstream if err is not an *Error.
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindUpstream
}
