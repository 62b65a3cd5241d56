package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/fpang/past-forward/internal/dataurl"
	"github.com/fpang/past-forward/internal/metrics"
	"github.com/fpang/past-forward/internal/prompt"
)

// Retry defaults: three attempts per prompt, 1s then 2s between them.
const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
)

// Client turns an image data URL and a prompt into a styled image data URL.
// It is safe for concurrent use; every Generate call owns its retry state.
type Client struct {
	model        Model
	modelName    string
	maxRetries   int
	initialDelay time.Duration
	callTimeout  time.Duration
	newTimer     func() backoff.Timer
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRetries sets the number of attempts per prompt. Values below 1 are
// treated as 1.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.maxRetries = n
	}
}

// WithInitialDelay sets the wait before the second attempt. Later waits
// double.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Client) { c.initialDelay = d }
}

// WithCallTimeout bounds each individual model call. Zero means no bound
// beyond the caller's context.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) { c.callTimeout = d }
}

// WithModelName labels logs and metrics.
func WithModelName(name string) Option {
	return func(c *Client) { c.modelName = name }
}

// WithTimer replaces the backoff timer, mainly for tests.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(c *Client) { c.newTimer = newTimer }
}

// NewClient creates a Client around model.
func NewClient(model Model, opts ...Option) (*Client, error) {
	if model == nil {
		return nil, errors.New("generate: model is required")
	}
	c := &Client{
		model:        model,
		modelName:    DefaultModelName,
		maxRetries:   DefaultMaxRetries,
		initialDelay: DefaultInitialDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// attemptStats is shared by the primary and fallback sequences of one call.
type attemptStats struct {
	attempts int
	fallback bool
}

// Generate decodes imageDataURL, asks the model to restyle it with prompt and
// returns the result as a data URL. A text-only answer is treated as a
// refusal; if the prompt names a decade the call is repeated once with the
// neutral fallback prompt. Every failure is an *Error.
func (c *Client) Generate(ctx context.Context, imageDataURL, userPrompt string) (string, error) {
	startTime := time.Now()
	stats := &attemptStats{}

	result, err := c.generate(ctx, imageDataURL, userPrompt, stats)

	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	metrics.RecordGeneration(metrics.Generation{
		Outcome:      outcome,
		Attempts:     stats.attempts,
		FallbackUsed: stats.fallback,
		Model:        c.modelName,
		Latency:      time.Since(startTime),
	})
	return result, err
}

func (c *Client) generate(ctx context.Context, imageDataURL, userPrompt string, stats *attemptStats) (string, error) {
	img, err := dataurl.Decode(imageDataURL)
	if err != nil {
		return "", &Error{
			Kind:    KindFormat,
			Message: "Invalid image data URL format. Expected 'data:image/...;base64,...': " + formatReason(err),
			Err:     err,
		}
	}

	resp, err := c.callWithRetry(ctx, img, userPrompt, stats)
	if err != nil {
		return "", &Error{
			Kind:    KindUpstream,
			Message: fmt.Sprintf("The AI model failed to generate an image. Details: %v", err),
			Err:     err,
		}
	}
	if resp.HasImage() {
		return c.encode(resp), nil
	}

	refusal := refusalError(resp)
	decade, ok := prompt.ExtractDecade(userPrompt)
	if !ok {
		log.Warn().
			Str("text", truncateString(resp.Text, 200)).
			Msg("Model refused and prompt has no decade; no fallback possible")
		return "", &Error{Kind: KindRefusal, Message: refusal.Error(), Err: refusal}
	}

	log.Info().
		Str("decade", decade).
		Str("text", truncateString(resp.Text, 200)).
		Msg("Model refused primary prompt, trying fallback")
	stats.fallback = true

	resp, err = c.callWithRetry(ctx, img, prompt.Fallback(decade), stats)
	if err == nil && !resp.HasImage() {
		err = refusalError(resp)
	}
	if err != nil {
		return "", &Error{
			Kind:    KindUpstream,
			Message: fmt.Sprintf("The AI model failed with both original and fallback prompts. Last error: %v", err),
			Err:     err,
		}
	}
	return c.encode(resp), nil
}

// callWithRetry runs one attempt sequence. Transient failures are retried with
// exponential backoff; permanent ones end the sequence at once. A refusal is
// a successful call and is returned to the caller.
func (c *Client) callWithRetry(ctx context.Context, img dataurl.Image, text string, stats *attemptStats) (*Response, error) {
	attempt := 0
	op := func() (*Response, error) {
		attempt++
		stats.attempts++
		log.Debug().
			Int("attempt", attempt).
			Int("max_attempts", c.maxRetries).
			Str("model", c.modelName).
			Msg("Calling image model")

		resp, err := c.callModel(ctx, img, text)
		if err == nil {
			return resp, nil
		}
		if Classify(err) == Permanent {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Permanent model error, not retrying")
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	notify := func(err error, delay time.Duration) {
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Transient model error, retrying")
	}

	var timer backoff.Timer
	if c.newTimer != nil {
		timer = c.newTimer()
	}
	resp, err := backoff.RetryNotifyWithTimerAndData(op, c.policy(ctx), notify, timer)
	if err != nil {
		if attempt >= c.maxRetries && Classify(err) == Transient {
			return nil, fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}
		return nil, err
	}
	return resp, nil
}

func (c *Client) callModel(ctx context.Context, img dataurl.Image, text string) (*Response, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	return c.model.GenerateImage(ctx, img, text)
}

// policy builds a fresh backoff for one attempt sequence: no jitter, factor
// 2, at most maxRetries attempts, stopped by ctx.
func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.initialDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         c.initialDelay << uint(c.maxRetries),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries-1)), ctx)
}

func (c *Client) encode(resp *Response) string {
	mimeType := resp.MIMEType
	if mimeType == "" {
		mimeType = dataurl.Sniff(resp.ImageData)
	}
	return dataurl.Encode(mimeType, resp.ImageData)
}

func refusalError(resp *Response) error {
	text := resp.Text
	if text == "" {
		text = "No text response received."
	}
	return fmt.Errorf("The AI model responded with text instead of an image: \"%s\"", text)
}

// formatReason strips the codec's own prefix so the message reads once.
func formatReason(err error) string {
	var fe *dataurl.FormatError
	if !errors.As(err, &fe) {
		return err.Error()
	}
	if fe.Err != nil {
		return fe.Reason + ": " + fe.Err.Error()
	}
	return fe.Reason
}
