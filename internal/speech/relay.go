package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// QueryMIMEType carries the audio MIME type on the websocket URL.
const QueryMIMEType = "mime"

// RelayTranscriber streams audio through a relay's websocket endpoint: one
// binary message up, fragment JSON messages down.
type RelayTranscriber struct {
	baseURL string
	dialer  *websocket.Dialer
	logger  logging.Logger
}

func NewRelayTranscriber(baseURL string, logger logging.Logger) *RelayTranscriber {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &RelayTranscriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		dialer:  websocket.DefaultDialer,
		logger:  logger.WithFields(logging.F(logging.FieldComponent, "relay-speech")),
	}
}

// WebsocketURL maps the relay base URL onto the transcription endpoint.
func WebsocketURL(baseURL, mimeType string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + aiclient.PathTranscribe)
	if err != nil {
		return "", fmt.Errorf("invalid relay url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set(QueryMIMEType, mimeType)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r *RelayTranscriber) Transcribe(ctx context.Context, audio Audio) (<-chan Fragment, error) {
	target, err := WebsocketURL(r.baseURL, audio.MIMEType)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	requestID := uuid.NewString()
	header.Set(aiclient.HeaderRequestID, requestID)

	conn, _, err := r.dialer.DialContext(ctx, target, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, audio.Data); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send audio: %w", err)
	}

	out := make(chan Fragment)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			// unblocks ReadMessage below
			conn.Close()
		case <-done:
		}
	}()
	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					r.logger.WithError(err).Debug("Transcription stream closed",
						logging.F(logging.FieldRequestID, requestID))
				}
				return
			}
			var f Fragment
			if err := json.Unmarshal(msg, &f); err != nil {
				r.logger.WithError(err).Warn("Skipping malformed fragment")
				continue
			}
			if !send(ctx, out, f) || f.Final {
				return
			}
		}
	}()
	return out, nil
}
