// Package relay is the credential-holding intermediary. It exposes text
// completion, receipt recognition and streaming transcription over HTTP so
// that client processes never carry the model key.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"fjacquet/expense-tracker/internal/aiclient"
	"fjacquet/expense-tracker/internal/logging"
	"fjacquet/expense-tracker/internal/ocr"
	"fjacquet/expense-tracker/internal/speech"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Options configures a Server.
type Options struct {
	MaxUploadBytes int64
	// AllowedOrigin is echoed in CORS headers and checked on websocket
	// upgrades. Empty allows same-origin only, "*" allows any.
	AllowedOrigin string
}

// Server serves the relay endpoints.
type Server struct {
	completer   aiclient.Completer
	recognizer  ocr.TextRecognizer
	transcriber speech.Transcriber
	opts        Options
	upgrader    websocket.Upgrader
	logger      logging.Logger
}

// NewServer creates a relay over the given collaborators. recognizer and
// transcriber may be nil, which disables their endpoints.
func NewServer(completer aiclient.Completer, recognizer ocr.TextRecognizer, transcriber speech.Transcriber, opts Options, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	s := &Server{
		completer:   completer,
		recognizer:  recognizer,
		transcriber: transcriber,
		opts:        opts,
		logger:      logger.WithFields(logging.F(logging.FieldComponent, "relay")),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the routed endpoints wrapped in request-id, CORS and
// logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(aiclient.PathHealth, s.handleHealth)
	mux.Handle(aiclient.PathComplete, s.cors(http.HandlerFunc(s.handleComplete)))
	mux.Handle(aiclient.PathRecognize, s.cors(http.HandlerFunc(s.handleRecognize)))
	mux.HandleFunc(aiclient.PathTranscribe, s.handleTranscribe)
	return s.withRequestID(mux)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Relay listening", logging.F(logging.FieldAddress, addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Relay shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type requestIDKey struct{}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(aiclient.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(aiclient.HeaderRequestID, id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		s.logger.Debug("Relay request",
			logging.F(logging.FieldRequestID, id),
			logging.F("path", r.URL.Path),
			logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AllowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.opts.AllowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+aiclient.HeaderRequestID)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.opts.AllowedOrigin == "*" {
		return true
	}
	if s.opts.AllowedOrigin != "" {
		return origin == s.opts.AllowedOrigin
	}
	return strings.EqualFold(strings.TrimPrefix(strings.TrimPrefix(origin, "http://"), "https://"), r.Host)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var p aiclient.Prompt
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(p.User) == "" {
		writeError(w, http.StatusBadRequest, "prompt has no user content")
		return
	}

	text, err := s.completer.Complete(r.Context(), p)
	if err != nil && !errors.Is(err, aiclient.ErrEmptyResponse) {
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, aiclient.CompletionResponse{Text: text})
}

func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if s.recognizer == nil {
		writeError(w, http.StatusNotImplemented, "recognition not configured")
		return
	}
	var doc ocr.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)).Decode(&doc); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid or oversized document")
		return
	}
	if doc.MIMEType == "" {
		doc.MIMEType = ocr.DetectMIMEType(doc.Name, doc.Data)
	}

	text, err := s.recognizer.Recognize(r.Context(), doc)
	switch {
	case errors.Is(err, ocr.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	case errors.Is(err, ocr.ErrNoText):
		text = ""
	case err != nil:
		s.upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ocr.RecognizeResponse{Text: text})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusNotImplemented, "transcription not configured")
		return
	}
	mimeType := r.URL.Query().Get(speech.QueryMIMEType)
	if !strings.HasPrefix(mimeType, "audio/") {
		writeError(w, http.StatusBadRequest, "missing or invalid audio mime type")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.opts.MaxUploadBytes)

	kind, data, err := conn.ReadMessage()
	if err != nil || kind != websocket.BinaryMessage {
		s.closeWith(conn, websocket.CloseUnsupportedData, "expected one binary audio message")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// The client closing the socket stops the transcription.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	fragments, err := s.transcriber.Transcribe(ctx, speech.Audio{MIMEType: mimeType, Data: data})
	if err != nil {
		s.writeFragment(conn, speech.Fragment{Error: err.Error()})
		s.closeWith(conn, websocket.CloseInternalServerErr, "transcription failed")
		return
	}
	for f := range fragments {
		if err := s.writeFragment(conn, f); err != nil {
			return
		}
		if f.Final || f.Error != "" {
			break
		}
	}
	s.logger.Debug("Transcription streamed", logging.F(logging.FieldRequestID, requestID(r.Context())))
	s.closeWith(conn, websocket.CloseNormalClosure, "")
}

func (s *Server) writeFragment(conn *websocket.Conn, f speech.Fragment) error {
	msg, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, msg)
}

func (s *Server) closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(time.Second))
}

func (s *Server) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithError(err).Warn("Upstream call failed",
		logging.F(logging.FieldRequestID, requestID(r.Context())))
	status := http.StatusBadGateway
	if aiclient.Retryable(err) || errors.Is(err, aiclient.ErrUnavailable) {
		status = http.StatusServiceUnavailable
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, aiclient.ErrorResponse{Error: msg})
}
