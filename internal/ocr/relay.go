package ocr

import (
	"context"

	"fjacquet/expense-tracker/internal/aiclient"
)

// RecognizeResponse is the relay's reply to a recognition request.
type RecognizeResponse struct {
	Text string `json:"text"`
}

// RelayRecognizer forwards documents to a relay server.
type RelayRecognizer struct {
	client *aiclient.RelayClient
}

func NewRelayRecognizer(client *aiclient.RelayClient) *RelayRecognizer {
	return &RelayRecognizer{client: client}
}

func (r *RelayRecognizer) Recognize(ctx context.Context, doc Document) (string, error) {
	var out RecognizeResponse
	if err := r.client.PostJSON(ctx, aiclient.PathRecognize, doc, &out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", ErrNoText
	}
	return out.Text, nil
}
