package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fjacquet/expense-tracker/internal/logging"

	"github.com/google/uuid"
)

// Relay endpoint paths.
const (
	PathComplete   = "/v1/complete"
	PathRecognize  = "/v1/recognize"
	PathTranscribe = "/v1/transcribe"
	PathHealth     = "/healthz"

	HeaderRequestID = "X-Request-ID"
)

// StatusError is a non-2xx reply from the relay.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.Code, e.Message)
}

// CompletionResponse is the relay's reply body for completions.
type CompletionResponse struct {
	Text string `json:"text"`
}

// ErrorResponse is the relay's error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RelayClient calls a relay server, which holds the model credential on
// behalf of this process.
type RelayClient struct {
	baseURL string
	http    *http.Client
	opts    GeminiOptions
	logger  logging.Logger
}

// NewRelayClient targets baseURL (e.g. http://127.0.0.1:8787). Retry and
// timeout settings come from opts; the key in opts is ignored.
func NewRelayClient(baseURL string, opts GeminiOptions, logger logging.Logger) *RelayClient {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	opts.APIKey = ""
	return &RelayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: opts.Timeout + 5*time.Second},
		opts:    opts,
		logger:  logger.WithFields(logging.F(logging.FieldComponent, "relay-client")),
	}
}

// BaseURL returns the relay root.
func (r *RelayClient) BaseURL() string {
	return r.baseURL
}

func (r *RelayClient) Complete(ctx context.Context, p Prompt) (string, error) {
	var out CompletionResponse
	if err := r.PostJSON(ctx, PathComplete, p, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", ErrEmptyResponse
	}
	return out.Text, nil
}

// PostJSON sends in as JSON to path and decodes the reply into out, with
// the same retry policy as direct model calls.
func (r *RelayClient) PostJSON(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode relay request: %w", err)
	}

	return Do(ctx, r.opts, r.logger, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(HeaderRequestID, uuid.NewString())

		resp, err := r.http.Do(req)
		if err != nil {
			return fmt.Errorf("relay request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode/100 != 2 {
			var e ErrorResponse
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			if json.Unmarshal(raw, &e) != nil || e.Error == "" {
				e.Error = strings.TrimSpace(string(raw))
			}
			return &StatusError{Code: resp.StatusCode, Message: e.Error}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode relay response: %w", err)
		}
		return nil
	})
}
