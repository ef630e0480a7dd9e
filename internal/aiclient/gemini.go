package aiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/expense-tracker/internal/logging"

	"github.com/avast/retry-go"
	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiOptions configures GeminiCompleter.
type GeminiOptions struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// GeminiCompleter implements Completer with the Google Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	opts   GeminiOptions
	logger logging.Logger
}

// NewGeminiCompleter creates the API client. The key never leaves this
// struct.
func NewGeminiCompleter(ctx context.Context, opts GeminiOptions, logger logging.Logger) (*GeminiCompleter, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if opts.Model == "" {
		opts.Model = "gemini-2.0-flash"
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCompleter{
		client: client,
		opts:   opts,
		logger: logger.WithFields(logging.F(logging.FieldComponent, "gemini"), logging.F(logging.FieldModel, opts.Model)),
	}, nil
}

// Client exposes the underlying API client so the recognizer and the
// transcriber can share one connection.
func (g *GeminiCompleter) Client() *genai.Client {
	return g.client
}

// Options returns the settings the completer was built with.
func (g *GeminiCompleter) Options() GeminiOptions {
	return g.opts
}

func (g *GeminiCompleter) Complete(ctx context.Context, p Prompt) (string, error) {
	model := g.client.GenerativeModel(g.opts.Model)
	model.SetTemperature(p.Temperature)

	parts := []genai.Part{}
	if p.System != "" {
		parts = append(parts, genai.Text(p.System))
	}
	parts = append(parts, genai.Text(p.User))

	var text string
	err := Do(ctx, g.opts, g.logger, func(ctx context.Context) error {
		resp, err := model.GenerateContent(ctx, parts...)
		if err != nil {
			return err
		}
		text = ResponseText(resp)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close releases the API client.
func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}

// Do runs call with the per-attempt timeout and retries throttling and
// server errors.
func Do(ctx context.Context, opts GeminiOptions, logger logging.Logger, call func(ctx context.Context) error) error {
	requestID := uuid.NewString()
	attempt := 0
	return retry.Do(
		func() error {
			attempt++
			callCtx := ctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
			start := time.Now()
			err := call(callCtx)
			logger.Debug("Remote call finished",
				logging.F(logging.FieldRequestID, requestID),
				logging.F(logging.FieldAttempt, attempt),
				logging.F(logging.FieldDuration, time.Since(start).Milliseconds()),
				logging.F("ok", err == nil))
			return err
		},
		retry.Context(ctx),
		retry.RetryIf(Retryable),
		retry.Attempts(uint(max(opts.MaxRetries, 1))),
		retry.Delay(opts.RetryDelay),
		retry.LastErrorOnly(true),
	)
}

// Retryable reports whether err is worth another attempt: rate limiting or
// a transient server failure.
func Retryable(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == 429 || statusErr.Code >= 500
	}
	return false
}

// ResponseText concatenates the text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
