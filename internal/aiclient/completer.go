// Package aiclient talks to the remote text-completion model. Pipelines
// depend on the Completer interface only; the credential lives in whichever
// implementation is wired by the container.
package aiclient

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no remote model is configured.
var ErrUnavailable = errors.New("remote model unavailable: no credential or relay configured")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from remote model")

// Prompt is one completion request: a fixed role instruction plus the user
// content.
type Prompt struct {
	System      string  `json:"system"`
	User        string  `json:"user"`
	Temperature float32 `json:"temperature"`
}

// Completer returns the model's raw text for a prompt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Unavailable is the Completer used when the tracker runs without a remote
// model. Every call fails, which sends the pipelines down their fallbacks.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, Prompt) (string, error) {
	return "", ErrUnavailable
}
