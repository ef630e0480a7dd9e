package aiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fjacquet/expense-tracker/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "rate limited", err: &googleapi.Error{Code: 429}, want: true},
		{name: "unavailable", err: &googleapi.Error{Code: 503}, want: true},
		{name: "bad request", err: &googleapi.Error{Code: 400}, want: false},
		{name: "wrapped relay 502", err: errors.Join(errors.New("ctx"), &StatusError{Code: 502}), want: true},
		{name: "relay 404", err: &StatusError{Code: 404}, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), GeminiOptions{MaxRetries: 3, RetryDelay: time.Millisecond}, logging.NewMockLogger(),
		func(context.Context) error {
			calls++
			if calls < 3 {
				return &googleapi.Error{Code: 429}
			}
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), GeminiOptions{MaxRetries: 5, RetryDelay: time.Millisecond}, logging.NewMockLogger(),
		func(context.Context) error {
			calls++
			return &googleapi.Error{Code: 400, Message: "bad"}
		})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_AppliesTimeout(t *testing.T) {
	err := Do(context.Background(), GeminiOptions{MaxRetries: 1, Timeout: 10 * time.Millisecond}, logging.NewMockLogger(),
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResponseText(t *testing.T) {
	assert.Equal(t, "", ResponseText(nil))
	assert.Equal(t, "", ResponseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"category":`), genai.Text(`"food"}`)}},
		}},
	}
	assert.Equal(t, `{"category":"food"}`, ResponseText(resp))
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Complete(context.Background(), Prompt{User: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRelayClient_Complete(t *testing.T) {
	var received Prompt
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathComplete, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(CompletionResponse{Text: "42"})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL+"/", GeminiOptions{APIKey: "must-not-travel", MaxRetries: 1, Timeout: time.Second}, nil)
	got, err := client.Complete(context.Background(), Prompt{System: "sys", User: "user", Temperature: 0.3})
	require.NoError(t, err)

	assert.Equal(t, "42", got)
	assert.Equal(t, "sys", received.System)
	assert.InDelta(t, 0.3, received.Temperature, 1e-6)
}

func TestRelayClient_RetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "warming up"})
			return
		}
		_ = json.NewEncoder(w).Encode(CompletionResponse{Text: "ok"})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, GeminiOptions{MaxRetries: 2, RetryDelay: time.Millisecond, Timeout: time.Second}, nil)
	got, err := client.Complete(context.Background(), Prompt{User: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRelayClient_EmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(CompletionResponse{Text: "  "})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, GeminiOptions{MaxRetries: 3, RetryDelay: time.Millisecond, Timeout: time.Second}, nil)
	_, err := client.Complete(context.Background(), Prompt{User: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRelayClient_ClientErrorNotRetried(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "user content required"})
	}))
	defer srv.Close()

	client := NewRelayClient(srv.URL, GeminiOptions{MaxRetries: 3, RetryDelay: time.Millisecond, Timeout: time.Second}, nil)
	_, err := client.Complete(context.Background(), Prompt{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Equal(t, "user content required", statusErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestMockCompleter(t *testing.T) {
	m := &MockCompleter{Response: "hi"}
	got, err := m.Complete(context.Background(), Prompt{User: "a"})
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, "a", m.Prompts()[0].User)
}
